package dto

import "net/http"

// Error codes returned in the error envelope.
// Format: ERR_<CATEGORY>[_<DESCRIPTION>]
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"

	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"

	// ErrCodeServiceUnavailable is used while a source circuit is open
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates shared.DomainError codes into API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":           ErrCodeNotFound,
	"ALREADY_EXISTS":      ErrCodeAlreadyExists,
	"INVALID_INPUT":       ErrCodeValidation,
	"VALIDATION_ERROR":    ErrCodeValidation,
	"BAD_REQUEST":         ErrCodeBadRequest,
	"UPSTREAM_FAILURE":    ErrCodeInternal,
	"SERVICE_UNAVAILABLE": ErrCodeServiceUnavailable,
	"INTERNAL_ERROR":      ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its API code.
// Codes that already carry the ERR_ prefix are passed through.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	if len(code) > 4 && code[:4] == "ERR_" {
		return code
	}
	return ErrCodeUnknown
}

// IsServerError reports whether the code maps to a 5xx status
func IsServerError(code string) bool {
	return GetHTTPStatus(code) >= http.StatusInternalServerError
}

// PublicMessage returns the client facing message for a server error code.
// Store and driver details stay in the logs.
func PublicMessage(code string) string {
	if code == ErrCodeServiceUnavailable {
		return "Ledger sources are temporarily unavailable"
	}
	return "An unexpected error occurred"
}
