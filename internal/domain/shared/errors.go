package shared

import "errors"

// Domain error codes
const (
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeUpstreamAuth   = "UPSTREAM_AUTH"
	CodeUpstreamConfig = "UPSTREAM_CONFIG"
	CodePdfUnavailable = "PDF_UNAVAILABLE"
	CodeUnavailable    = "UNAVAILABLE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithCause returns a copy of the error carrying cause
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Err: cause}
}

// Common domain errors
var (
	ErrNotFound       = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput   = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrUnauthorized   = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden      = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrUpstreamAuth   = NewDomainError(CodeUpstreamAuth, "The ERP rejected the service credentials")
	ErrUpstreamConfig = NewDomainError(CodeUpstreamConfig, "No configured ERP environment is reachable")
	ErrPdfUnavailable = NewDomainError(CodePdfUnavailable, "The order document is not available")
	ErrUnavailable    = NewDomainError(CodeUnavailable, "The ERP integration is not configured")
)
