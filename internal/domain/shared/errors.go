// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyValue      = errors.New("value cannot be empty")

	// Concurrency errors
	ErrConcurrencyConflict = errors.New("concurrent modification detected")

	// Storage errors
	ErrStorage = errors.New("storage error")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrExpired      = errors.New("expired")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "presence", "session", "building"
	Op      string // Operation that failed, e.g., "Toggle", "Create"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Presence domain errors
var (
	ErrPersonNotFound      = NewDomainError("presence", "Lookup", ErrNotFound, "person not found")
	ErrPersonAlreadyExists = NewDomainError("presence", "Create", ErrAlreadyExists, "person already exists")
	ErrInvalidPersonKind   = NewDomainError("presence", "Validate", ErrInvalidArgument, "invalid person kind")
	ErrToggleConflict      = NewDomainError("presence", "Toggle", ErrConcurrencyConflict, "toggle lost a concurrent race")
)

// Building domain errors
var (
	ErrBuildingNotFound      = NewDomainError("building", "Lookup", ErrNotFound, "building not found")
	ErrBuildingAlreadyExists = NewDomainError("building", "Create", ErrAlreadyExists, "building already exists")
)

// Session domain errors
var (
	ErrSessionNotFound = NewDomainError("session", "Validate", ErrNotFound, "session not found")
	ErrSessionExpired  = NewDomainError("session", "Validate", ErrExpired, "session expired")
)

// Operator domain errors
var (
	ErrOperatorNotFound   = NewDomainError("operator", "Lookup", ErrNotFound, "operator not found")
	ErrInvalidCredentials = NewDomainError("operator", "Authenticate", ErrUnauthorized, "invalid credentials")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument checks if the error is a validation error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrEmptyValue)
}

// IsConcurrencyConflict checks if the error is a lost-update conflict.
// Conflicts are safe to retry.
func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsStorage checks if the error originated in the storage layer.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrExpired)
}
