package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (e.g. a generated booking id that already exists).
	ErrDuplicate = errors.New("duplicate entity")

	// ErrConflict is returned when a guarded update matched no rows, such
	// as a counter decrement that would go below zero.
	ErrConflict = errors.New("conflicting update")

	// ErrSeatConflict is the sentinel wrapped by SeatConflictError.
	ErrSeatConflict = errors.New("seat conflict")
)

// SeatConflictError reports the seats that prevented a reservation: seats
// that do not exist on the vehicle, are already occupied, or are reserved
// for the driver.
type SeatConflictError struct {
	SeatNumbers []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.SeatNumbers, ", "))
}

func (e *SeatConflictError) Unwrap() error {
	return ErrSeatConflict
}
