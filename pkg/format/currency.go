// Package format renders amounts for people to read.
package format

import (
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with the given symbol and thousands
// separators (e.g., "-₹1,234.56").
func Currency(amount float64, symbol string) string {
	rounded := mathutil.Round(amount)
	if rounded < 0 {
		return "-" + symbol + formatPositive(-rounded)
	}
	return symbol + formatPositive(rounded)
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return Currency(amount, "")
}

func formatPositive(value float64) string {
	return printer.Sprintf("%.2f", value)
}
