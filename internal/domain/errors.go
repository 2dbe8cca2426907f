// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation    ErrorType = iota // Malformed input, recovered locally by the pipeline
	ErrorTypeNotFound                       // Directory miss or missing key
	ErrorTypeConflict                       // Key already present in a store
	ErrorTypeInternal                       // Persistence or encoding failure
	ErrorTypeUnavailable                    // Backing store not reachable
	ErrorTypeConfiguration                  // Fatal at startup, never returned per request
)

// String returns a short name for the error type, used as a log and metric attribute.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypeInternal:
		return "internal"
	case ErrorTypeUnavailable:
		return "unavailable"
	case ErrorTypeConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// IsNotFound reports whether err carries the not found type.
func IsNotFound(err error) bool {
	return err != nil && GetErrorType(err) == ErrorTypeNotFound
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}

func NewConfigurationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConfiguration, Message: message, Err: errors.Join(err...)}
}

// Sentinel errors shared across the pipeline.
var (
	// ErrMissingSecret is returned when the webhook secret token is not configured.
	ErrMissingSecret = NewConfigurationError("zoom webhook secret token is not configured")

	// ErrMissingMeetingID marks a structured record that was dropped because
	// the payload carried no meeting identifier at all.
	ErrMissingMeetingID = NewValidationError("payload has no meeting id")

	// ErrInvalidSignature is returned when the x-zm-signature header does not match.
	ErrInvalidSignature = NewValidationError("invalid webhook signature")

	// ErrStaleTimestamp is returned when the signed request timestamp is outside the tolerance.
	ErrStaleTimestamp = NewValidationError("webhook request timestamp outside tolerance")

	// ErrIdentityNotFound is returned by directory lookups on a miss.
	ErrIdentityNotFound = NewNotFoundError("identity not found")
)
