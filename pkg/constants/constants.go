// Package constants provides shared constants for the loan-gauge application.
package constants

// DateTimeLayout is the format of payment month labels, both on input and
// output.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// CurrencyPlaces is the number of decimal places kept on monetary values
	CurrencyPlaces = 2

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Loan defaults, matching the sample dashboard loan.
const (
	// DefaultPrincipal is the loan amount used when none is supplied
	DefaultPrincipal = 300000.0

	// DefaultAnnualInterestRate is the annual rate, as a fraction, used when none is supplied
	DefaultAnnualInterestRate = 0.045

	// DefaultTermYears is the loan term used when none is supplied
	DefaultTermYears = 25
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment variable overrides, e.g. LOANGAUGE_LOAN_PRINCIPAL
	EnvPrefix = "LOANGAUGE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024

	// DefaultMaxTermYears bounds the term accepted over HTTP
	DefaultMaxTermYears = 100

	// DefaultCacheTTLSeconds is how long cached schedule responses live
	DefaultCacheTTLSeconds = 3600

	// DefaultMemoryCacheEntries bounds the in-process response cache
	DefaultMemoryCacheEntries = 256
)

// Cache backends
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)
