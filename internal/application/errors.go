package application

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidToken is returned when an invitation response carries a token
	// that does not match the participant's access token.
	ErrInvalidToken = errors.New("application: invalid token")
	// ErrParticipantMismatch is returned when the participant does not belong
	// to the referenced planification.
	ErrParticipantMismatch = errors.New("application: participant mismatch")
	// ErrAlreadyMaterialized is returned when a meeting already exists for the
	// planification being started.
	ErrAlreadyMaterialized = errors.New("application: meeting already materialized")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ConflictError reports a resource double-booking. It is a validation
// failure from the caller's perspective: Unwrap yields a *ValidationError
// naming the conflicting resource.
type ConflictError struct {
	ResourceKind  string
	ResourceID    string
	ResourceLabel string
	ReservationID string
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	label := c.ResourceLabel
	if label == "" {
		label = c.ResourceID
	}
	return fmt.Sprintf("%s %q is already reserved for this time interval", c.ResourceKind, label)
}

// Unwrap exposes the conflict as a field level validation error.
func (c *ConflictError) Unwrap() error {
	vErr := &ValidationError{}
	vErr.add(c.ResourceKind, c.Error())
	return vErr
}

// DuplicateError reports a uniqueness violation on participant identity or
// role name.
type DuplicateError struct {
	Field string
	Value string
}

// Error implements the error interface.
func (d *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %q", d.Field, d.Value)
}

// PreconditionError reports an operation blocked by dependent records or by
// the current state of the record.
type PreconditionError struct {
	Reason string
}

// Error implements the error interface.
func (p *PreconditionError) Error() string {
	if p == nil || p.Reason == "" {
		return "operation blocked by a precondition"
	}
	return p.Reason
}
