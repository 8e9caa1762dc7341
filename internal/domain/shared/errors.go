package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrValidation   = NewDomainError("VALIDATION", "Invalid input provided")
	ErrNotMember    = NewDomainError("NOT_MEMBER", "User is not a member of the group")
	ErrForbidden    = NewDomainError("FORBIDDEN", "Not authorized to perform this action")
	ErrUnauthorized = NewDomainError("UNAUTHORIZED", "Authentication required")
	ErrUnsettled    = NewDomainError("UNSETTLED_BALANCE", "Outstanding balance must be settled first")
)
