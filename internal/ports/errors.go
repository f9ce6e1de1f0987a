package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these standard errors.
var (
	// General errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Trade validation errors — rejected locally, no state mutation occurs.
	ErrInvalidQuantity      = errors.New("trade quantity must be a positive integer")
	ErrInsufficientFunds    = errors.New("insufficient cash for purchase")
	ErrInsufficientHoldings = errors.New("insufficient holdings to sell")
	ErrUnknownAsset         = errors.New("asset not found in catalog")

	// Game state errors
	ErrNoActiveScenario  = errors.New("no active scenario")
	ErrScenarioComplete  = errors.New("scenario already complete")
	ErrScenarioActive    = errors.New("a scenario is already in progress")
	ErrNotAuthenticated  = errors.New("an authenticated user is required")
	ErrScenarioNotEnded  = errors.New("scenario has not reached its final day")
	ErrInvalidSpeed      = errors.New("unsupported speed multiplier")

	// Oracle errors — caught at the call site and mapped to degraded
	// fallback values, never propagated as a crash.
	ErrOracleUnavailable    = errors.New("text-generation oracle is unavailable")
	ErrOracleUnconfigured   = errors.New("oracle API key not configured")
	ErrMalformedOracleReply = errors.New("oracle reply contains no parseable JSON")

	// Material validation errors
	ErrUnsupportedFileType = errors.New("unsupported material file type")
	ErrFileTooLarge        = errors.New("material file exceeds size limit")

	// Database errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
	ErrDeleteFailed = errors.New("database delete failed")
)
