// Package constants provides shared constants for the lever-planner application.
package constants

import "time"

// Calendar constants
const (
	// MonthsPerYear is the number of months in a simulated year
	MonthsPerYear = 12

	// MonthsPerHalfYear is the number of months in a half-year window
	MonthsPerHalfYear = 6

	// BaselineMonthKeyLength is the length of a YYYYMM month key in baseline payloads
	BaselineMonthKeyLength = 6
)

// Rate constants
const (
	// MaxCumulativeRate is the value a cumulative rate of 100% or more is clamped to
	// before decompounding.
	MaxCumulativeRate = 0.9999

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// RateTolerance is the tolerance used when comparing rates for equality
	RateTolerance = 1e-9

	// SummaryRateDecimals is the number of percentage decimals shown in change summaries
	SummaryRateDecimals = 2
)

// Journey thresholds on total office FTE; each is the inclusive lower bound of its band.
const (
	EmergingOfficeMinFTE    = 25.0
	EstablishedOfficeMinFTE = 200.0
	MatureOfficeMinFTE      = 500.0
)

// Default lever values, expressed as monthly decimal rates.
const (
	DefaultRecruitmentRateLevelA = 0.025
	DefaultRecruitmentRate       = 0.015
	DefaultChurnRate             = 0.014
	DefaultProgressionRate       = 0.08
	DefaultUTR                   = 0.90
)

// ProgressionMonths are the months in which the default progression rate applies.
var ProgressionMonths = []int{5, 11}

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// NoLeversApplied is the summary line reported when a request resolves to nothing.
const NoLeversApplied = "No levers applied."

// Configuration file constants
const (
	// DefaultConfigFile is the default plan configuration file name
	DefaultConfigFile = "plan.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of plan configuration
	EnvPrefix = "LEVERS"
)

// Backend defaults
const (
	// OfficesConfigPath is the backend endpoint listing offices with their roles
	OfficesConfigPath = "/offices/config"

	// DefaultBaselinePath is the backend endpoint returning baseline input
	DefaultBaselinePath = "/simulation/baseline"

	// SimulationRunPath is the backend endpoint accepting office overrides
	SimulationRunPath = "/simulation/run"

	// DefaultBackendTimeoutSeconds bounds each backend request
	DefaultBackendTimeoutSeconds = 30

	// DefaultBackendRequestsPerSecond limits the client request rate
	DefaultBackendRequestsPerSecond = 5.0

	// DefaultSeedRole is the role whose baseline rates seed the matrix
	DefaultSeedRole = "Consultant"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultShutdownTimeout bounds a graceful HTTP server shutdown
	DefaultShutdownTimeout = 10 * time.Second
)
