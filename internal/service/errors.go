package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSeatUnavailable is returned when a requested seat is occupied,
	// reserved for the driver, or does not exist on the vehicle.
	ErrSeatUnavailable = errors.New("seat unavailable")

	// ErrCapacityExceeded is returned when a booking requests more seats
	// than the vehicle has available.
	ErrCapacityExceeded = errors.New("not enough seats available")

	// ErrBookingLocked is returned when editing a confirmed or paid booking.
	ErrBookingLocked = errors.New("booking is confirmed or paid and cannot be updated")

	// ErrTripNotCompleted is returned when settling a trip that has not
	// been marked complete.
	ErrTripNotCompleted = errors.New("trip needs to be completed")

	// ErrNoBookingsToSettle is returned when a trip has no confirmed and
	// paid bookings to settle.
	ErrNoBookingsToSettle = errors.New("no bookings found for the trip")

	// ErrDuplicateSettlement is returned when a daily earnings entry
	// already exists for the trip and date.
	ErrDuplicateSettlement = errors.New("daily earnings entry already exists for this date")

	// ErrDateMismatch is returned when the bookings' trip date does not
	// match the trip's scheduled start date.
	ErrDateMismatch = errors.New("trip date does not match the trip's start date")

	// ErrUnauthorized is returned when the acting party may not perform
	// the operation.
	ErrUnauthorized = errors.New("not authorized for this operation")

	// ErrIDGenerationConflict is returned when a unique booking id could
	// not be generated.
	ErrIDGenerationConflict = errors.New("could not generate a unique booking id")

	// ErrNoSeatsSelected is returned when a booking requests no seats.
	ErrNoSeatsSelected = errors.New("at least one seat must be selected")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidCapacity is returned when a vehicle is registered with a
	// non-positive seating capacity.
	ErrInvalidCapacity = errors.New("seating capacity must be positive")

	// ErrInvalidPrice is returned when a trip is scheduled with a
	// negative price.
	ErrInvalidPrice = errors.New("invalid trip price")

	// ErrVehicleHasTrip is returned when scheduling a trip for a vehicle
	// that already operates one.
	ErrVehicleHasTrip = errors.New("vehicle already operates a trip")

	// ErrTripCompleted is returned when booking on a trip that has been
	// marked complete and awaits settlement.
	ErrTripCompleted = errors.New("trip is completed and not accepting bookings")
)

// SeatUnavailableError names the seats that blocked a reservation. It
// unwraps to ErrSeatUnavailable.
type SeatUnavailableError struct {
	SeatNumbers []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.SeatNumbers, ", "))
}

func (e *SeatUnavailableError) Unwrap() error {
	return ErrSeatUnavailable
}
