package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrStale is returned when a compare-and-set update matched no row,
	// meaning the record changed state since it was read.
	ErrStale = errors.New("persistence: stale state")
	// ErrConstraintViolation is returned when a write violates a check constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a write references a missing record.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)

// ReservationConflict reports that a requested reservation overlaps an
// existing active reservation for the same resource.
type ReservationConflict struct {
	ResourceKind    string
	ResourceID      string
	ResourceLabel   string
	ReservationID   string
	PlanificationID string
}

// Error implements the error interface.
func (c *ReservationConflict) Error() string {
	label := c.ResourceLabel
	if label == "" {
		label = c.ResourceID
	}
	return fmt.Sprintf("persistence: %s %q already reserved for this interval", c.ResourceKind, label)
}
