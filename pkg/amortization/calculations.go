// Package amortization computes equal monthly installments and month-by-month
// amortization schedules for fixed-rate loans with monthly compounding.
//
// Every function is a pure computation over its arguments. Nothing is cached
// or shared between calls, so the package is safe for concurrent use and the
// same terms always produce the same figures.
package amortization

import (
	"fmt"
	"iter"
	"math"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
)

// LoanTerms holds the inputs of a single calculation.
type LoanTerms struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"interestRate"`
	Years             int     `json:"years"`
}

// LoanSummary holds the headline figures derived from LoanTerms.
type LoanSummary struct {
	EMI           float64 `json:"emi"`
	TotalPayment  float64 `json:"totalPayment"`
	TotalInterest float64 `json:"totalInterest"`
}

// ScheduleRow holds the values for a given month of the schedule.
type ScheduleRow struct {
	Month            int     `json:"month"`
	Payment          float64 `json:"payment"`
	Principal        float64 `json:"principal"`
	Interest         float64 `json:"interest"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// Totals holds the column sums of a schedule.
type Totals struct {
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
}

// Comparison holds two independently computed summaries.
type Comparison struct {
	A LoanSummary `json:"a"`
	B LoanSummary `json:"b"`
}

// MonthlyRate returns the periodic rate as a fraction, e.g. 7.5% -> 0.00625.
func (t LoanTerms) MonthlyRate() float64 {
	return t.AnnualRatePercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// TotalMonths returns the number of installments.
func (t LoanTerms) TotalMonths() int {
	return t.Years * constants.MonthsPerYear
}

// Validate reports the first term that makes the loan uncomputable.
func (t LoanTerms) Validate() error {
	switch {
	case math.IsNaN(t.Principal) || math.IsInf(t.Principal, 0):
		return &InputError{Field: "principal", Value: t.Principal, Reason: "must be a finite number"}
	case t.Principal <= 0:
		return &InputError{Field: "principal", Value: t.Principal, Reason: "must be greater than zero"}
	case math.IsNaN(t.AnnualRatePercent) || math.IsInf(t.AnnualRatePercent, 0):
		return &InputError{Field: "interestRate", Value: t.AnnualRatePercent, Reason: "must be a finite number"}
	case t.AnnualRatePercent < 0:
		return &InputError{Field: "interestRate", Value: t.AnnualRatePercent, Reason: "must not be negative"}
	case t.Years < 1:
		return &InputError{Field: "years", Value: float64(t.Years), Reason: "must be at least one"}
	case t.Years > constants.MaxTermYears:
		return &InputError{Field: "years", Value: float64(t.Years), Reason: fmt.Sprintf("must be at most %d", constants.MaxTermYears)}
	}
	return nil
}

// ComputeEMI calculates the equal monthly installment using the standard
// amortization formula. A zero rate repays the principal in equal parts.
func ComputeEMI(terms LoanTerms) (float64, error) {
	if err := terms.Validate(); err != nil {
		return 0, err
	}

	emi := monthlyPayment(terms.Principal, terms.MonthlyRate(), terms.TotalMonths())
	// The total paid must stay representable too, every schedule figure is
	// bounded by it.
	if math.IsInf(emi*float64(terms.TotalMonths()), 0) || math.IsNaN(emi) {
		return 0, &InputError{Field: "principal", Value: terms.Principal, Reason: "is too large to compute"}
	}
	return emi, nil
}

// monthlyPayment expects validated inputs.
func monthlyPayment(principal, periodicRate float64, months int) float64 {
	if periodicRate == 0 {
		return principal / float64(months)
	}

	// growth is (1+r)^n - 1, computed without cancellation for tiny rates.
	growth := math.Expm1(float64(months) * math.Log1p(periodicRate))
	if math.IsInf(growth, 1) {
		// Interest-only limit of an effectively endless term.
		return principal * periodicRate
	}
	// Annuity factor first, so a large principal cannot overflow midway.
	return principal * (periodicRate * (growth + 1) / growth)
}

// ComputeSummary derives the EMI, total payment and total interest.
func ComputeSummary(terms LoanTerms) (LoanSummary, error) {
	emi, err := ComputeEMI(terms)
	if err != nil {
		return LoanSummary{}, err
	}

	total := emi * float64(terms.TotalMonths())
	interest := total - terms.Principal
	if terms.MonthlyRate() == 0 || interest < 0 {
		interest = 0
	}

	return LoanSummary{
		EMI:           emi,
		TotalPayment:  total,
		TotalInterest: interest,
	}, nil
}

// Rows returns the schedule as a lazy sequence. Each range over the sequence
// starts again from month one and yields identical rows.
func Rows(terms LoanTerms) (iter.Seq[ScheduleRow], error) {
	emi, err := ComputeEMI(terms)
	if err != nil {
		return nil, err
	}

	rate := terms.MonthlyRate()
	months := terms.TotalMonths()

	return func(yield func(ScheduleRow) bool) {
		balance := terms.Principal
		for month := 1; month <= months; month++ {
			interest := balance * rate
			principal := emi - interest
			balance -= principal
			if balance < 0 || month == months {
				// We will get machine error otherwise so just set to 0.
				balance = 0
			}

			row := ScheduleRow{
				Month:            month,
				Payment:          emi,
				Principal:        principal,
				Interest:         interest,
				RemainingBalance: balance,
			}
			if !yield(row) {
				return
			}
		}
	}, nil
}

// GenerateSchedule creates a complete amortization schedule for a loan.
func GenerateSchedule(terms LoanTerms) ([]ScheduleRow, error) {
	rows, err := Rows(terms)
	if err != nil {
		return nil, err
	}

	schedule := make([]ScheduleRow, 0, terms.TotalMonths())
	for row := range rows {
		schedule = append(schedule, row)
	}
	return schedule, nil
}

// ScheduleTotals sums the payment, principal and interest columns.
func ScheduleTotals(schedule []ScheduleRow) Totals {
	payments := make([]float64, len(schedule))
	principal := make([]float64, len(schedule))
	interest := make([]float64, len(schedule))
	for i, row := range schedule {
		payments[i] = row.Payment
		principal[i] = row.Principal
		interest[i] = row.Interest
	}
	return Totals{
		Payment:   mathutil.Sum(payments...),
		Principal: mathutil.Sum(principal...),
		Interest:  mathutil.Sum(interest...),
	}
}

// Compare computes the summaries of two loans independently.
func Compare(a, b LoanTerms) (Comparison, error) {
	summaryA, err := ComputeSummary(a)
	if err != nil {
		return Comparison{}, fmt.Errorf("scenario A: %w", err)
	}
	summaryB, err := ComputeSummary(b)
	if err != nil {
		return Comparison{}, fmt.Errorf("scenario B: %w", err)
	}
	return Comparison{A: summaryA, B: summaryB}, nil
}

// Difference returns B minus A for every figure.
func (c Comparison) Difference() LoanSummary {
	return LoanSummary{
		EMI:           c.B.EMI - c.A.EMI,
		TotalPayment:  c.B.TotalPayment - c.A.TotalPayment,
		TotalInterest: c.B.TotalInterest - c.A.TotalInterest,
	}
}
