// Package calculator evaluates every scenario and comparison of a
// configuration with the amortization engine.
package calculator

import (
	"errors"
	"fmt"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"go.uber.org/zap"
)

// Result holds everything computed for one scenario.
type Result struct {
	Name      string
	Terms     amortization.LoanTerms
	StartDate string
	ShowEMI   bool
	Summary   amortization.LoanSummary
	Schedule  []amortization.ScheduleRow
	Totals    amortization.Totals
	Err       error
}

// ComparisonResult holds the side-by-side evaluation of two scenarios.
type ComparisonResult struct {
	Name       string
	A          string
	B          string
	Comparison amortization.Comparison
	Err        error
}

// Report is the outcome of a whole configuration.
type Report struct {
	Results     []Result
	Comparisons []ComparisonResult
}

// Errors joins the failures of every scenario and comparison, or returns nil.
func (r Report) Errors() error {
	var errs []error
	for _, result := range r.Results {
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("scenario %s: %w", result.Name, result.Err))
		}
	}
	for _, comparison := range r.Comparisons {
		if comparison.Err != nil {
			errs = append(errs, fmt.Errorf("comparison %s: %w", comparison.Name, comparison.Err))
		}
	}
	return errors.Join(errs...)
}

// Label names a schedule month, using calendar months when the scenario has
// a start date.
func (r Result) Label(month int) string {
	label, err := datetime.MonthLabel(r.StartDate, month)
	if err != nil {
		return fmt.Sprintf("%d", month)
	}
	return label
}

// Calculate processes all active scenarios and every comparison. A failing
// scenario or comparison is recorded on its own result and does not stop the
// others.
func Calculate(logger *zap.Logger, conf config.Configuration) Report {
	if logger == nil {
		logger = zap.NewNop()
	}

	var report Report
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "calculator.Calculate"),
			)
			continue
		}
		report.Results = append(report.Results, CalculateScenario(logger, scenario, conf.WantsSchedule(scenario)))
	}

	for _, comparison := range conf.Comparisons {
		report.Comparisons = append(report.Comparisons, compare(logger, conf, comparison))
	}

	return report
}

// CalculateScenario computes the summary and, if requested, the schedule of a
// single scenario.
func CalculateScenario(logger *zap.Logger, scenario config.Scenario, withSchedule bool) Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	result := Result{
		Name:    scenario.Name,
		Terms:   scenario.Terms(),
		ShowEMI: scenario.ShowEMI,
	}

	if scenario.StartDate != "" {
		if err := datetime.ValidateDate(scenario.StartDate); err != nil {
			logger.Warn("ignoring scenario start date",
				zap.String("op", "calculator.CalculateScenario"),
				zap.String("scenario", scenario.Name),
				zap.Error(err),
			)
		} else {
			result.StartDate = scenario.StartDate
		}
	}

	if err := validation.ValidateTerms(scenario.TermsInput()); err != nil {
		logger.Warn("scenario has invalid terms",
			zap.String("op", "calculator.CalculateScenario"),
			zap.String("scenario", scenario.Name),
			zap.Error(err),
		)
		result.Err = err
		return result
	}

	summary, err := amortization.ComputeSummary(result.Terms)
	if err != nil {
		result.Err = err
		return result
	}
	result.Summary = summary

	if withSchedule {
		schedule, err := amortization.GenerateSchedule(result.Terms)
		if err != nil {
			result.Err = err
			return result
		}
		result.Schedule = schedule
		result.Totals = amortization.ScheduleTotals(schedule)
		if drift := result.Totals.Principal - result.Terms.Principal; !mathutil.IsZero(drift) {
			logger.Warn("schedule does not repay the principal to the cent",
				zap.String("op", "calculator.CalculateScenario"),
				zap.String("scenario", scenario.Name),
				zap.Float64("drift", drift),
			)
		}
	}

	logger.Debug(fmt.Sprintf("computed scenario %s: emi %.2f over %d months",
		scenario.Name, summary.EMI, result.Terms.TotalMonths()),
		zap.String("op", "calculator.CalculateScenario"),
		zap.Int("scheduleRows", len(result.Schedule)),
	)
	return result
}

func compare(logger *zap.Logger, conf config.Configuration, comparison config.Comparison) ComparisonResult {
	result := ComparisonResult{Name: comparison.Name}
	if len(comparison.Scenarios) != 2 {
		result.Err = fmt.Errorf("expected two scenarios, got %d", len(comparison.Scenarios))
		return result
	}
	result.A, result.B = comparison.Scenarios[0], comparison.Scenarios[1]

	var terms [2]validation.TermsInput
	for i, name := range comparison.Scenarios {
		scenario, ok := conf.FindScenario(name)
		if !ok {
			result.Err = fmt.Errorf("unknown scenario %q", name)
			return result
		}
		if err := validation.ValidateTerms(scenario.TermsInput()); err != nil {
			result.Err = fmt.Errorf("scenario %q: %w", name, err)
			return result
		}
		terms[i] = scenario.TermsInput()
	}

	c, err := amortization.Compare(terms[0].Terms(), terms[1].Terms())
	if err != nil {
		result.Err = err
		return result
	}
	result.Comparison = c

	logger.Debug(fmt.Sprintf("compared %s with %s", result.A, result.B),
		zap.String("op", "calculator.compare"),
		zap.String("comparison", comparison.Name),
		zap.Float64("emiDifference", c.Difference().EMI),
	)
	return result
}
