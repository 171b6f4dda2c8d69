// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// ValidateDate reports whether date is a valid YYYY-MM value.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateTimeLayout, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM: %w", date, err)
	}
	return nil
}

// MonthLabel names the schedule month; month 1 falls on startDate. Without a
// start date the month number itself is the label.
func MonthLabel(startDate string, month int) (string, error) {
	if startDate == "" {
		return fmt.Sprintf("%d", month), nil
	}
	return OffsetDate(startDate, DateTimeLayout, month-1)
}
