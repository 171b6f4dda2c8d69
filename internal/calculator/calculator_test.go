package calculator_test

import (
	"path/filepath"
	"testing"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/iwvelando/loan-calculator/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestCalculateExampleConfiguration(t *testing.T) {
	conf, err := config.LoadConfiguration(filepath.Join("..", "config", "testdata", "config.yaml"))
	require.NoError(t, err)

	report := calculator.Calculate(zaptest.NewLogger(t), *conf)
	require.NoError(t, report.Errors())
	require.Len(t, report.Results, 2, "inactive scenario must be skipped")

	first := testutil.FindResult(report, "scenario 1")
	require.NotNil(t, first)
	assert.InDelta(t, 1001.90, first.Summary.EMI, 0.005)
	assert.InDelta(t, 10113.85, first.Summary.TotalInterest, 0.005)
	assert.True(t, first.ShowEMI)
	assert.Equal(t, "2025-01", first.StartDate)
	require.Len(t, first.Schedule, 60)
	assert.Zero(t, first.Schedule[59].RemainingBalance)
	assert.InDelta(t, 50000, first.Totals.Principal, 0.01)
	assert.Equal(t, "2025-01", first.Label(1))
	assert.Equal(t, "2029-12", first.Label(60))

	second := testutil.FindResult(report, "scenario 2")
	require.NotNil(t, second)
	assert.InDelta(t, 1051.99, second.Summary.EMI, 0.005)
	assert.Empty(t, second.Schedule, "schedule was not requested")
	assert.Equal(t, "12", second.Label(12))

	assert.Nil(t, testutil.FindResult(report, "interest free"))

	require.Len(t, report.Comparisons, 1)
	comparison := report.Comparisons[0]
	require.NoError(t, comparison.Err)
	assert.Equal(t, "scenario 1", comparison.A)
	assert.Equal(t, "scenario 2", comparison.B)
	assert.Equal(t, first.Summary, comparison.Comparison.A)
	assert.Equal(t, second.Summary, comparison.Comparison.B)
}

func TestCalculateIsolatesFailures(t *testing.T) {
	conf := config.Configuration{
		Scenarios: []config.Scenario{
			{Name: "broken", Active: true, Principal: -5, InterestRate: 5, Years: 5},
			{Name: "fine", Active: true, Principal: 10000, InterestRate: 0, Years: 1},
			{Name: "too long", Active: true, Principal: 10000, InterestRate: 5, Years: 40},
		},
		Comparisons: []config.Comparison{
			{Name: "missing", Scenarios: []string{"fine", "nope"}},
			{Name: "invalid", Scenarios: []string{"fine", "broken"}},
			{Name: "lonely", Scenarios: []string{"fine"}},
		},
	}

	report := calculator.Calculate(nil, conf)
	require.Len(t, report.Results, 3)

	broken := testutil.FindResult(report, "broken")
	require.NotNil(t, broken)
	assert.ErrorIs(t, broken.Err, amortization.ErrInvalidInput)
	assert.Zero(t, broken.Summary)

	tooLong := testutil.FindResult(report, "too long")
	require.NotNil(t, tooLong)
	assert.ErrorIs(t, tooLong.Err, amortization.ErrInvalidInput)

	fine := testutil.FindResult(report, "fine")
	require.NotNil(t, fine)
	require.NoError(t, fine.Err)
	assert.InDelta(t, 833.33, fine.Summary.EMI, 0.005)
	assert.Zero(t, fine.Summary.TotalInterest)

	require.Len(t, report.Comparisons, 3)
	assert.ErrorContains(t, report.Comparisons[0].Err, `unknown scenario "nope"`)
	assert.ErrorIs(t, report.Comparisons[1].Err, amortization.ErrInvalidInput)
	assert.ErrorContains(t, report.Comparisons[2].Err, "expected two scenarios")

	err := report.Errors()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario broken")
	assert.Contains(t, err.Error(), "comparison missing")
}

func TestCalculateScenarioScheduleToggle(t *testing.T) {
	scenario := config.Scenario{Name: "loan", Active: true, Principal: 50000, InterestRate: 7.5, Years: 5}

	without := calculator.CalculateScenario(zap.NewNop(), scenario, false)
	require.NoError(t, without.Err)
	assert.Nil(t, without.Schedule)
	assert.Zero(t, without.Totals)

	with := calculator.CalculateScenario(zap.NewNop(), scenario, true)
	require.NoError(t, with.Err)
	assert.Len(t, with.Schedule, 60)
	assert.Equal(t, without.Summary, with.Summary)
}

func TestCalculateScenarioIgnoresBadStartDate(t *testing.T) {
	scenario := config.Scenario{Name: "loan", Active: true, Principal: 1000, InterestRate: 5, Years: 1, StartDate: "soon"}

	result := calculator.CalculateScenario(nil, scenario, true)
	require.NoError(t, result.Err)
	assert.Empty(t, result.StartDate)
	assert.Equal(t, "3", result.Label(3))
}

func TestCalculateComparisonIndependence(t *testing.T) {
	conf := config.Configuration{
		Scenarios: []config.Scenario{
			{Name: "s1", Active: true, Principal: 50000, InterestRate: 7.5, Years: 5},
			{Name: "s2", Active: true, Principal: 60000, InterestRate: 8.0, Years: 6},
		},
		Comparisons: []config.Comparison{
			{Name: "forward", Scenarios: []string{"s1", "s2"}},
			{Name: "reverse", Scenarios: []string{"s2", "s1"}},
		},
	}

	report := calculator.Calculate(nil, conf)
	require.NoError(t, report.Errors())

	forward, reverse := report.Comparisons[0].Comparison, report.Comparisons[1].Comparison
	assert.Equal(t, forward.A, reverse.B)
	assert.Equal(t, forward.B, reverse.A)

	s1, err := amortization.ComputeSummary(amortization.LoanTerms{Principal: 50000, AnnualRatePercent: 7.5, Years: 5})
	require.NoError(t, err)
	assert.Equal(t, s1, forward.A)
}

func TestCalculateScenarioScheduleRepaysPrincipal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	scenario := config.Scenario{Name: "home", Active: true, Principal: 175000, InterestRate: 4.5, Years: 30}

	result := calculator.CalculateScenario(zap.New(core), scenario, true)
	require.NoError(t, result.Err)
	assert.True(t, mathutil.IsZero(result.Totals.Principal-scenario.Principal))
	assert.True(t, mathutil.WithinTolerance(result.Totals.Payment, result.Summary.TotalPayment, 0.01))
	assert.Zero(t, logs.FilterMessage("schedule does not repay the principal to the cent").Len())
}
