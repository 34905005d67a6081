// Package constants provides shared constants for the loan-calculator application.
package constants

import "time"

// DateTimeLayout is the month format accepted for schedule start dates and is
// also the output month format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Schedule projection defaults
const (
	// BalanceEpsilon is the remaining balance at or below which a loan is
	// considered paid off.
	BalanceEpsilon = 0.01

	// DefaultSafetyFactor bounds a projection at this multiple of the nominal
	// number of payments.
	DefaultSafetyFactor = 2

	// MaxTermYears is the longest loan term accepted.
	MaxTermYears = 100

	// MaxNominalPayments is the payment count of a MaxTermYears loan.
	MaxNominalPayments = MaxTermYears * MonthsPerYear

	// DefaultOptimizerIterations caps the payoff target bisection.
	DefaultOptimizerIterations = 100
)

// Extra payment modes
const (
	// ExtraModeRecurring applies the extra amount on every payment.
	ExtraModeRecurring = "recurring"

	// ExtraModeOneTime applies the extra amount on the first payment only.
	ExtraModeOneTime = "one-time"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// EnvPrefix prefixes environment variable overrides, e.g. LOANCALC_SERVER_ADDRESS.
	EnvPrefix = "LOANCALC"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultRateLimitRequests is the default number of requests per client per window
	DefaultRateLimitRequests = 60

	// DefaultRateLimitWindow is the default rate limit refill window
	DefaultRateLimitWindow = "1m"
)

// Cache defaults
const (
	// CacheBackendNone disables result caching.
	CacheBackendNone = "none"

	// CacheBackendMemory keeps results in process memory.
	CacheBackendMemory = "memory"

	// CacheBackendRedis stores results in Redis.
	CacheBackendRedis = "redis"

	// DefaultCacheTTL is how long cached results stay valid
	DefaultCacheTTL = "10m"

	// DefaultCacheMaxEntries caps the memory cache
	DefaultCacheMaxEntries = 10000

	// CachePingTimeout bounds the startup connectivity check of a remote cache
	CachePingTimeout = 2 * time.Second

	// CacheKeyPrefix namespaces cache keys
	CacheKeyPrefix = "loancalc:"
)
