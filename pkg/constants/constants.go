// Package constants provides shared constants for the givewise application.
package constants

// Tax policy constants
const (
	// DonationTierThreshold is the portion of a donation credited at the
	// lower first-tier rates.
	DonationTierThreshold = 200.0

	// CapitalGainsInclusionRate is the fraction of a capital gain that is taxable.
	CapitalGainsInclusionRate = 0.5
)

// Financial constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Gift type names
const (
	GiftTypeCash       = "cash"
	GiftTypeSecurities = "securities"
)

// Calculator defaults, matching the web form's initial state.
const (
	DefaultAmount           = 1000.0
	DefaultProvince         = "ON"
	DefaultIncome           = 100000.0
	DefaultGiftType         = GiftTypeCash
	DefaultAdjustedCostBase = 500.0
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

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment variable overrides (e.g. GIVEWISE_DEFAULTS_PROVINCE)
	EnvPrefix = "GIVEWISE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)
