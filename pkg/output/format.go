// Package output provides utilities for formatting and displaying loan results.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
)

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, report calculator.Report, symbol string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	for i, result := range report.Results {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		writeScenario(tw, result, symbol)
	}

	for _, comparison := range report.Comparisons {
		fmt.Fprintln(tw)
		writeComparison(tw, comparison, symbol)
	}

	return tw.Flush()
}

func writeScenario(w io.Writer, result calculator.Result, symbol string) {
	fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name)
	if result.Err != nil {
		fmt.Fprintf(w, "error\t| %v\n", result.Err)
		return
	}

	fmt.Fprintf(w, "Principal\t| %s\n", format.Currency(result.Terms.Principal, symbol))
	fmt.Fprintf(w, "Interest rate\t| %s%%\n", strconv.FormatFloat(result.Terms.AnnualRatePercent, 'f', -1, 64))
	fmt.Fprintf(w, "Duration\t| %d years (%d months)\n", result.Terms.Years, result.Terms.TotalMonths())
	if result.ShowEMI {
		fmt.Fprintf(w, "Monthly EMI\t| %s\n", format.Currency(result.Summary.EMI, symbol))
	}
	fmt.Fprintf(w, "Total payment\t| %s\n", format.Currency(result.Summary.TotalPayment, symbol))
	fmt.Fprintf(w, "Total interest\t| %s\n", format.Currency(result.Summary.TotalInterest, symbol))

	if len(result.Schedule) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Month\t| EMI\t| Principal\t| Interest\t| Balance\n")
	fmt.Fprintf(w, "_____\t| ___\t| _________\t| ________\t| _______\n")
	for _, row := range result.Schedule {
		fmt.Fprintf(w, "%s\t| %s\t| %s\t| %s\t| %s\n",
			result.Label(row.Month),
			format.Currency(row.Payment, symbol),
			format.Currency(row.Principal, symbol),
			format.Currency(row.Interest, symbol),
			format.Currency(row.RemainingBalance, symbol),
		)
	}
	fmt.Fprintf(w, "Total\t| %s\t| %s\t| %s\t|\n",
		format.Currency(result.Totals.Payment, symbol),
		format.Currency(result.Totals.Principal, symbol),
		format.Currency(result.Totals.Interest, symbol),
	)
}

func writeComparison(w io.Writer, comparison calculator.ComparisonResult, symbol string) {
	fmt.Fprintf(w, "--- Comparison %s ---\n", comparison.Name)
	if comparison.Err != nil {
		fmt.Fprintf(w, "error\t| %v\n", comparison.Err)
		return
	}

	c := comparison.Comparison
	diff := c.Difference()
	fmt.Fprintf(w, "Figure\t| %s\t| %s\t| Difference\n", comparison.A, comparison.B)
	fmt.Fprintf(w, "Monthly EMI\t| %s\t| %s\t| %s\n",
		format.Currency(c.A.EMI, symbol), format.Currency(c.B.EMI, symbol), format.Currency(diff.EMI, symbol))
	fmt.Fprintf(w, "Total payment\t| %s\t| %s\t| %s\n",
		format.Currency(c.A.TotalPayment, symbol), format.Currency(c.B.TotalPayment, symbol), format.Currency(diff.TotalPayment, symbol))
	fmt.Fprintf(w, "Total interest\t| %s\t| %s\t| %s\n",
		format.Currency(c.A.TotalInterest, symbol), format.Currency(c.B.TotalInterest, symbol), format.Currency(diff.TotalInterest, symbol))
}

// CsvFormat outputs in comma-separated value format: a summary table, a
// schedule table for scenarios that produced one and a comparison table, each
// separated by an empty line.
func CsvFormat(w io.Writer, report calculator.Report) error {
	summary := [][]string{{"scenario", "principal", "interestRate", "years", "emi", "totalPayment", "totalInterest", "error"}}
	for _, result := range report.Results {
		record := []string{
			result.Name,
			amount(result.Terms.Principal),
			strconv.FormatFloat(result.Terms.AnnualRatePercent, 'f', -1, 64),
			strconv.Itoa(result.Terms.Years),
		}
		if result.Err != nil {
			record = append(record, "", "", "", result.Err.Error())
		} else {
			record = append(record,
				amount(result.Summary.EMI),
				amount(result.Summary.TotalPayment),
				amount(result.Summary.TotalInterest),
				"",
			)
		}
		summary = append(summary, record)
	}
	if err := writeTable(w, summary); err != nil {
		return err
	}

	var schedule [][]string
	for _, result := range report.Results {
		for _, row := range result.Schedule {
			schedule = append(schedule, scheduleRecord(result, row))
		}
	}
	if len(schedule) > 0 {
		header := []string{"scenario", "month", "label", "payment", "principal", "interest", "balance"}
		if err := writeSection(w, append([][]string{header}, schedule...)); err != nil {
			return err
		}
	}

	if len(report.Comparisons) > 0 {
		table := [][]string{{"comparison", "scenarioA", "scenarioB", "emiA", "emiB", "emiDifference",
			"totalPaymentA", "totalPaymentB", "totalPaymentDifference",
			"totalInterestA", "totalInterestB", "totalInterestDifference", "error"}}
		for _, comparison := range report.Comparisons {
			table = append(table, comparisonRecord(comparison))
		}
		if err := writeSection(w, table); err != nil {
			return err
		}
	}
	return nil
}

// CsvString returns the CSV output as a string.
func CsvString(report calculator.Report) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, report); err != nil {
		return ""
	}
	return buf.String()
}

func scheduleRecord(result calculator.Result, row amortization.ScheduleRow) []string {
	return []string{
		result.Name,
		strconv.Itoa(row.Month),
		result.Label(row.Month),
		amount(row.Payment),
		amount(row.Principal),
		amount(row.Interest),
		amount(row.RemainingBalance),
	}
}

func comparisonRecord(comparison calculator.ComparisonResult) []string {
	if comparison.Err != nil {
		return []string{comparison.Name, comparison.A, comparison.B, "", "", "", "", "", "", "", "", "", comparison.Err.Error()}
	}
	c := comparison.Comparison
	diff := c.Difference()
	return []string{
		comparison.Name, comparison.A, comparison.B,
		amount(c.A.EMI), amount(c.B.EMI), amount(diff.EMI),
		amount(c.A.TotalPayment), amount(c.B.TotalPayment), amount(diff.TotalPayment),
		amount(c.A.TotalInterest), amount(c.B.TotalInterest), amount(diff.TotalInterest),
		"",
	}
}

func amount(value float64) string {
	return mathutil.RoundDecimal(value).StringFixed(2)
}

func writeSection(w io.Writer, records [][]string) error {
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return writeTable(w, records)
}

func writeTable(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
