package integration

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Gateway Errors
// ---------------------------------------------------------------------------

var (
	// ErrAuthProvider is returned when the identity provider rejects the
	// client-credentials exchange or answers with an unusable token.
	ErrAuthProvider = errors.New("integration: token acquisition failed")
	// ErrRemoteAuthorization is returned when the ERP answers 401 or 403.
	ErrRemoteAuthorization = errors.New("integration: remote authorization failed")
	// ErrEnvironmentResolution is returned when every candidate environment
	// reported that it does not exist.
	ErrEnvironmentResolution = errors.New("integration: no candidate environment exists")
	// ErrRemoteQuery is the sentinel wrapped by RemoteQueryError.
	ErrRemoteQuery = errors.New("integration: remote query failed")
	// ErrDocumentDecode is returned when an order document payload is not valid base64.
	ErrDocumentDecode = errors.New("integration: order document could not be decoded")
	// ErrResponseTooLarge is returned when a response body exceeds the configured cap.
	ErrResponseTooLarge = errors.New("integration: response too large")
	// ErrEnvironmentMiss signals that a single environment does not exist.
	// Adapters recover it by moving on to the next candidate.
	ErrEnvironmentMiss = errors.New("integration: environment not found")

	// ErrVendorNoRequired is returned when a vendor identity is derived from a blank vendor number.
	ErrVendorNoRequired = errors.New("integration: vendor number is required")
)

// RemoteQueryError carries the details of a failed ERP query.
// StatusCode is zero when no response was received (transport error or timeout).
type RemoteQueryError struct {
	Resource    string
	Environment string
	StatusCode  int
	Code        string
	Message     string
	Body        string
	Err         error
}

// Error implements the error interface
func (e *RemoteQueryError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s in %s: %v", ErrRemoteQuery, e.Resource, e.Environment, e.Err)
	case e.Code != "":
		return fmt.Sprintf("%s: %s in %s: status %d (%s: %s)", ErrRemoteQuery, e.Resource, e.Environment, e.StatusCode, e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s in %s: status %d: %v", ErrRemoteQuery, e.Resource, e.Environment, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s: %s in %s: status %d", ErrRemoteQuery, e.Resource, e.Environment, e.StatusCode)
	}
}

// Unwrap allows errors.Is(err, ErrRemoteQuery) and access to the cause.
func (e *RemoteQueryError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRemoteQuery, e.Err}
	}
	return []error{ErrRemoteQuery}
}

// IsHardFailure reports whether err must abort a lookup instead of being
// degraded to "not found".
func IsHardFailure(err error) bool {
	return errors.Is(err, ErrAuthProvider) ||
		errors.Is(err, ErrRemoteAuthorization) ||
		errors.Is(err, ErrEnvironmentResolution)
}
