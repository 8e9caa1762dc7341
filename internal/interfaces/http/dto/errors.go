package dto

import "net/http"

// Error codes shared between the domain layer and the HTTP surface.
const (
	// ErrCodeValidation is used when input fails a domain validation rule
	ErrCodeValidation = "VALIDATION"
	// ErrCodeNotMember is used when the acting user is not a group member
	ErrCodeNotMember = "NOT_MEMBER"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeForbidden is used when the user lacks permission for an operation
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeUnauthorized is used when authentication is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeUnsettledBalance is used when a member tries to leave with an open balance
	ErrCodeUnsettledBalance = "UNSETTLED_BALANCE"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInternal is used for storage and other unexpected failures
	ErrCodeInternal = "INTERNAL"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeForbidden:        http.StatusForbidden,
	ErrCodeNotMember:        http.StatusForbidden,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeUnsettledBalance: http.StatusConflict,
	ErrCodeInternal:         http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
