// Package constants provides shared constants for the loan-calculator application.
package constants

import "time"

// DateTimeLayout is the format expected in config files and is also the output
// date format for schedule rows.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPlaces is the number of places currency values are rounded to
	DecimalPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Input bounds accepted at the presentation boundary, registered as validator
// aliases in pkg/validation. The amortization engine itself only requires a
// positive principal, a non-negative rate and at most MaxTermYears.
const (
	// MaxAnnualRatePercent is the highest accepted annual interest rate
	MaxAnnualRatePercent = 100.0

	// MinYears is the shortest accepted loan duration
	MinYears = 1

	// MaxYears is the longest accepted loan duration
	MaxYears = 30

	// MaxTermYears is the longest term the amortization engine schedules
	MaxTermYears = 1000
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// DefaultCurrencySymbol prefixes amounts in pretty output
	DefaultCurrencySymbol = "₹"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultRateLimitRequests is the number of requests a client may make per window
	DefaultRateLimitRequests = 60

	// DefaultRateLimitWindow is the rate limiter refill window
	DefaultRateLimitWindow = time.Minute

	// DefaultCacheTTL is how long cached responses live in redis
	DefaultCacheTTL = 10 * time.Minute

	// DefaultCacheMaxEntries bounds the in-memory response cache
	DefaultCacheMaxEntries = 1024

	// ShutdownTimeout bounds graceful server shutdown
	ShutdownTimeout = 10 * time.Second
)
