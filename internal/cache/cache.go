// Package cache stores encoded calculation responses keyed by loan terms.
package cache

import (
	"context"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
)

// Cache is a byte store for computed responses. A miss, including a backend
// failure, reports false rather than an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
}

// Key derives a stable cache key for a response kind and its loan terms.
func Key(kind string, terms amortization.LoanTerms) string {
	d := xxhash.New()
	_, _ = d.WriteString(strconv.FormatFloat(terms.Principal, 'g', -1, 64))
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.FormatFloat(terms.AnnualRatePercent, 'g', -1, 64))
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.Itoa(terms.Years))
	return "loan-calculator:" + kind + ":" + strconv.FormatUint(d.Sum64(), 16)
}
