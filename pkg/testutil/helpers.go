// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
)

// FindResult finds a scenario result by name in the report.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(report calculator.Report, name string) *calculator.Result {
	for i := range report.Results {
		if report.Results[i].Name == name {
			return &report.Results[i]
		}
	}
	return nil
}

// SumPrincipal adds up the principal portion of every schedule row.
func SumPrincipal(schedule []amortization.ScheduleRow) float64 {
	return amortization.ScheduleTotals(schedule).Principal
}
