package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfiguration(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", conf.Logging.Level)
	assert.Equal(t, "console", conf.Logging.Format)
	assert.Equal(t, "pretty", conf.Output.Format)
	assert.Equal(t, "₹", conf.CurrencySymbol())
	assert.False(t, conf.Output.ShowSchedule)

	require.Len(t, conf.Scenarios, 3)
	first := conf.Scenarios[0]
	assert.Equal(t, "scenario 1", first.Name)
	assert.True(t, first.Active)
	assert.Equal(t, amortization.LoanTerms{Principal: 50000, AnnualRatePercent: 7.5, Years: 5}, first.Terms())
	assert.Equal(t, "2025-01", first.StartDate)
	assert.True(t, first.ShowEMI)
	assert.True(t, first.ShowSchedule)
	assert.False(t, conf.Scenarios[2].Active)

	require.Len(t, conf.Comparisons, 1)
	assert.Equal(t, "what-if analysis", conf.Comparisons[0].Name)
	assert.Equal(t, []string{"scenario 1", "scenario 2"}, conf.Comparisons[0].Scenarios)

	assert.Empty(t, conf.ValidateConfiguration())
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.Error(t, err)
	assert.Nil(t, conf)
}

func TestLoadConfigurationFromReader(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(`
output:
  format: csv
scenarios:
  - name: car
    active: true
    principal: 25000
    interestRate: 4
    years: 5
`))
	require.NoError(t, err)
	assert.Equal(t, "csv", conf.Output.Format)
	assert.Equal(t, "₹", conf.CurrencySymbol())
	require.Len(t, conf.Scenarios, 1)
	assert.Equal(t, 25000.0, conf.Scenarios[0].Principal)
	assert.False(t, conf.WantsSchedule(conf.Scenarios[0]))

	_, err = LoadConfigurationFromReader(strings.NewReader("scenarios: [unterminated"))
	assert.Error(t, err)
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	t.Setenv("LOANCALC_OUTPUT_FORMAT", "csv")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: pretty\n"), 0600))

	conf, err := LoadConfiguration(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", conf.Output.Format)
}

func TestWantsSchedule(t *testing.T) {
	conf := Configuration{}
	assert.False(t, conf.WantsSchedule(Scenario{}))
	assert.True(t, conf.WantsSchedule(Scenario{ShowSchedule: true}))

	conf.Output.ShowSchedule = true
	assert.True(t, conf.WantsSchedule(Scenario{}))
}

func TestFindScenario(t *testing.T) {
	conf := Configuration{Scenarios: []Scenario{
		{Name: "a", Principal: 1},
		{Name: "b", Principal: 2},
		{Name: "a", Principal: 3},
	}}

	found, ok := conf.FindScenario("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, found.Principal)

	_, ok = conf.FindScenario("c")
	assert.False(t, ok)
}

func TestValidateConfiguration(t *testing.T) {
	valid := Scenario{Name: "ok", Active: true, Principal: 1000, InterestRate: 5, Years: 1}

	tests := []struct {
		name     string
		conf     Configuration
		contains []string
	}{
		{
			name:     "No scenarios",
			conf:     Configuration{},
			contains: []string{"No active scenarios"},
		},
		{
			name: "Only inactive scenarios",
			conf: Configuration{Scenarios: []Scenario{
				{Name: "off", Principal: 1000, InterestRate: 5, Years: 1},
			}},
			contains: []string{"No active scenarios"},
		},
		{
			name: "Duplicate and unnamed scenarios",
			conf: Configuration{Scenarios: []Scenario{
				valid, valid,
				{Active: true, Principal: 1000, InterestRate: 5, Years: 1},
			}},
			contains: []string{"'ok' is defined more than once", "Scenario #3 has no name"},
		},
		{
			name: "Invalid terms",
			conf: Configuration{Scenarios: []Scenario{
				{Name: "bad", Active: true, Principal: 0, InterestRate: 5, Years: 1},
			}},
			contains: []string{"'bad' has invalid terms", "principal must be greater than 0"},
		},
		{
			name: "Zero rate",
			conf: Configuration{Scenarios: []Scenario{
				{Name: "free", Active: true, Principal: 1000, InterestRate: 0, Years: 1},
			}},
			contains: []string{"'free' has a 0% rate"},
		},
		{
			name: "Malformed start date",
			conf: Configuration{Scenarios: []Scenario{
				{Name: "dated", Active: true, Principal: 1000, InterestRate: 5, Years: 1, StartDate: "01/2025"},
			}},
			contains: []string{"'dated' start date ignored"},
		},
		{
			name: "Comparison problems",
			conf: Configuration{
				Scenarios: []Scenario{valid, {Name: "off", Principal: 1000, InterestRate: 5, Years: 1}},
				Comparisons: []Comparison{
					{Name: "short", Scenarios: []string{"ok"}},
					{Name: "unknown", Scenarios: []string{"ok", "missing"}},
					{Name: "inactive", Scenarios: []string{"ok", "off"}},
				},
			},
			contains: []string{
				"'short' must name exactly two scenarios, got 1",
				"'unknown' references unknown scenario 'missing'",
				"'inactive' uses inactive scenario 'off'",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := strings.Join(tt.conf.ValidateConfiguration(), "\n")
			for _, want := range tt.contains {
				assert.Contains(t, warnings, want)
			}
		})
	}
}
