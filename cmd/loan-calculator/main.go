package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/internal/logging"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"go.uber.org/zap"
)

// adHocScenario is the name given to a loan described on the command line.
const adHocScenario = "command line"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	flags := flag.NewFlagSet("loan-calculator", flag.ContinueOnError)
	configLocation := flags.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flags.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flags.String("log-level", "", "log level override (debug, info, warn, error)")
	principal := flags.Float64("principal", 0, "loan amount; describes a single loan and skips the configuration file")
	rate := flags.Float64("rate", 0, "annual interest rate in percent, used with -principal")
	years := flags.Int("years", 0, "loan duration in years, used with -principal")
	schedule := flags.Bool("schedule", false, "print the month-by-month schedule, used with -principal")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	adHoc := false
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "principal", "rate", "years":
			adHoc = true
		}
	})

	var conf *config.Configuration
	if adHoc {
		conf = &config.Configuration{
			Scenarios: []config.Scenario{{
				Name:         adHocScenario,
				Active:       true,
				Principal:    *principal,
				InterestRate: *rate,
				Years:        *years,
				ShowEMI:      true,
				ShowSchedule: *schedule,
			}},
		}
	} else {
		var err error
		conf, err = config.LoadConfiguration(*configLocation)
		if err != nil {
			fmt.Fprintf(stdout, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": %q}\n", *configLocation, err.Error())
			return 1
		}
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(stdout, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": %q}\n", err.Error())
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Error(err.Error(),
			zap.String("op", "main"),
		)
		return 1
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	report := calculator.Calculate(logger, *conf)

	switch outputFormat {
	case constants.OutputFormatPretty:
		err = output.PrettyFormat(stdout, report, conf.CurrencySymbol())
	case constants.OutputFormatCSV:
		err = output.CsvFormat(stdout, report)
	}
	if err != nil {
		logger.Error("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 1
	}

	if err := report.Errors(); err != nil {
		logger.Error("some calculations failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 1
	}
	return 0
}
