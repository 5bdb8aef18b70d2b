package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation is used when input fails domain validation
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeUnknownPlatform is used when the platform code is not recognized
	ErrCodeUnknownPlatform = "ERR_UNKNOWN_PLATFORM"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the session token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the session token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeInvalidSignature is used when a webhook signature does not verify
	ErrCodeInvalidSignature = "ERR_INVALID_SIGNATURE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Club workflow error codes
const (
	// ErrCodeDraftIncomplete is used when enrollment completion is attempted
	// before every wizard gate is satisfied
	ErrCodeDraftIncomplete = "ERR_DRAFT_INCOMPLETE"
	// ErrCodeTierRetired is used when a retired tier is selected or modified
	ErrCodeTierRetired = "ERR_TIER_RETIRED"
	// ErrCodeSetupFatal is used when club setup aborted at a fatal step
	ErrCodeSetupFatal = "ERR_SETUP_FATAL"
)

// Platform error codes
const (
	// ErrCodeProviderUnavailable is used when the commerce platform is down
	ErrCodeProviderUnavailable = "ERR_PROVIDER_UNAVAILABLE"
	// ErrCodeProviderAuth is used when platform credentials are rejected
	ErrCodeProviderAuth = "ERR_PROVIDER_AUTH"
	// ErrCodeProviderNotConfigured is used when no credentials exist for the tenant
	ErrCodeProviderNotConfigured = "ERR_PROVIDER_NOT_CONFIGURED"
	// ErrCodeProviderRequest is used when the platform rejected a request
	ErrCodeProviderRequest = "ERR_PROVIDER_REQUEST"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeUnknownPlatform: http.StatusBadRequest,

	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeInvalidSignature: http.StatusUnauthorized,

	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	ErrCodeDraftIncomplete: http.StatusUnprocessableEntity,
	ErrCodeTierRetired:     http.StatusUnprocessableEntity,
	ErrCodeSetupFatal:      http.StatusBadGateway,

	ErrCodeProviderUnavailable:   http.StatusServiceUnavailable,
	ErrCodeProviderAuth:          http.StatusBadGateway,
	ErrCodeProviderNotConfigured: http.StatusConflict,
	ErrCodeProviderRequest:       http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
