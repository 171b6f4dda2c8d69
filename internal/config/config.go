// Package config defines the data structures related to configuration and
// includes functions for loading and validating the calculation file.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. LOANCALC_OUTPUT_FORMAT=csv.
const EnvPrefix = "LOANCALC"

// Configuration holds all configuration for loan-calculator.
type Configuration struct {
	Scenarios   []Scenario    `yaml:"scenarios"`
	Comparisons []Comparison  `yaml:"comparisons,omitempty"`
	Logging     LoggingConfig `yaml:"logging,omitempty"`
	Output      OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format         string `yaml:"format,omitempty"` // pretty, csv
	CurrencySymbol string `yaml:"currencySymbol,omitempty"`
	ShowSchedule   bool   `yaml:"showSchedule,omitempty"` // schedule for every scenario
}

// Scenario holds the loan terms and display toggles of one calculation.
type Scenario struct {
	Name         string  `yaml:"name"`
	Active       bool    `yaml:"active"`
	Principal    float64 `yaml:"principal"`
	InterestRate float64 `yaml:"interestRate"` // annual, percent
	Years        int     `yaml:"years"`
	StartDate    string  `yaml:"startDate,omitempty"` // labels schedule months, YYYY-MM
	ShowEMI      bool    `yaml:"showEMI,omitempty"`
	ShowSchedule bool    `yaml:"showSchedule,omitempty"`
}

// Comparison names two scenarios to evaluate side by side.
type Comparison struct {
	Name      string   `yaml:"name"`
	Scenarios []string `yaml:"scenarios"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// TermsInput returns the scenario's loan inputs for validation.
func (s Scenario) TermsInput() validation.TermsInput {
	return validation.TermsInput{
		Principal:    s.Principal,
		InterestRate: s.InterestRate,
		Years:        s.Years,
	}
}

// Terms returns the scenario's loan terms for the amortization engine.
func (s Scenario) Terms() amortization.LoanTerms {
	return s.TermsInput().Terms()
}

// WantsSchedule reports whether the scenario's schedule should be produced.
func (c *Configuration) WantsSchedule(s Scenario) bool {
	return s.ShowSchedule || c.Output.ShowSchedule
}

// CurrencySymbol returns the configured symbol or the default.
func (c *Configuration) CurrencySymbol() string {
	if c.Output.CurrencySymbol == "" {
		return constants.DefaultCurrencySymbol
	}
	return c.Output.CurrencySymbol
}

// FindScenario returns the scenario with the given name.
func (c *Configuration) FindScenario(name string) (Scenario, bool) {
	for _, scenario := range c.Scenarios {
		if scenario.Name == name {
			return scenario, true
		}
	}
	return Scenario{}, false
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Invalid loan terms are reported here and again as errors
// when the scenario is calculated.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	seen := make(map[string]bool)
	active := 0
	for i, scenario := range c.Scenarios {
		label := scenario.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			warnings = append(warnings, fmt.Sprintf("Scenario %s has no name", label))
		} else if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' is defined more than once; comparisons use the first", scenario.Name))
		}
		seen[scenario.Name] = true

		if !scenario.Active {
			continue
		}
		active++

		if err := validation.ValidateTerms(scenario.TermsInput()); err != nil {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' has invalid terms: %v", label, err))
		} else if scenario.InterestRate == 0 {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' has a 0%% rate and is repaid in equal principal installments", label))
		}

		if scenario.StartDate != "" {
			if err := datetime.ValidateDate(scenario.StartDate); err != nil {
				warnings = append(warnings, fmt.Sprintf("Scenario '%s' start date ignored: %v", label, err))
			}
		}
	}

	if active == 0 {
		warnings = append(warnings, "No active scenarios; nothing will be calculated")
	}

	for i, comparison := range c.Comparisons {
		label := comparison.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if len(comparison.Scenarios) != 2 {
			warnings = append(warnings, fmt.Sprintf("Comparison '%s' must name exactly two scenarios, got %d",
				label, len(comparison.Scenarios)))
			continue
		}
		for _, name := range comparison.Scenarios {
			scenario, ok := c.FindScenario(name)
			switch {
			case !ok:
				warnings = append(warnings, fmt.Sprintf("Comparison '%s' references unknown scenario '%s'", label, name))
			case !scenario.Active:
				warnings = append(warnings, fmt.Sprintf("Comparison '%s' uses inactive scenario '%s', which is compared but not listed", label, name))
			}
		}
	}

	return warnings
}
