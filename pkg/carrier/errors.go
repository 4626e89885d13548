package carrier

import (
	"errors"
	"fmt"
)

// UnsupportedServiceError reports a service type with no carrier mapping.
// It is raised by local validation and never reaches the network.
type UnsupportedServiceError struct {
	Carrier string
	Service ServiceType
}

func (e *UnsupportedServiceError) Error() string {
	return fmt.Sprintf("%s: unsupported service type %q", e.Carrier, e.Service)
}

// AuthError reports a rejected credential exchange: the token endpoint
// returned a non-success status or omitted the token field. It is fatal for
// the call; retrying is the caller's decision.
type AuthError struct {
	Carrier    string
	StatusCode int
	Body       string // raw carrier response text
	Cause      error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s auth failed: %v", e.Carrier, e.Cause)
	}
	return fmt.Sprintf("%s auth failed (status %d): %s", e.Carrier, e.StatusCode, e.Body)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// CarrierError reports a failed carrier call: a transport failure, a
// non-success HTTP status, or a success status whose body lacks a required
// field. Body carries the raw carrier response so callers can diagnose
// without the audit log.
type CarrierError struct {
	Carrier    string
	Operation  string
	StatusCode int
	Message    string
	Body       string
	Cause      error
}

func (e *CarrierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Carrier, e.Operation, e.Message, e.Cause)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %s (status %d): %s", e.Carrier, e.Operation, e.Message, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: %s", e.Carrier, e.Operation, e.Message)
}

func (e *CarrierError) Unwrap() error {
	return e.Cause
}

// IsUnsupportedService reports whether err is an UnsupportedServiceError.
func IsUnsupportedService(err error) bool {
	var target *UnsupportedServiceError
	return errors.As(err, &target)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsCarrier reports whether err is a CarrierError.
func IsCarrier(err error) bool {
	var target *CarrierError
	return errors.As(err, &target)
}
