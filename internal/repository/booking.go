package repository

import (
	"context"

	"sawari/internal/domain"
)

// BookingRepository defines the persistence operations for bookings and
// their seat associations.
type BookingRepository interface {
	// Create persists a new booking. A booking id collision returns
	// ErrDuplicate.
	Create(ctx context.Context, booking *domain.Booking) error

	// AddSeats associates the reserved seats with the booking.
	AddSeats(ctx context.Context, bookingRowID string, seatIDs []string) error

	// ExistsBookingID reports whether a booking id is already taken.
	ExistsBookingID(ctx context.Context, bookingID string) (bool, error)

	// GetByBookingID retrieves a booking with its seats by public id.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error)

	// GetByBookingIDForUpdate is GetByBookingID holding a row lock on the
	// booking for the duration of the surrounding transaction.
	GetByBookingIDForUpdate(ctx context.Context, bookingID string) (*domain.Booking, error)

	// UpdateFlags persists the confirmation and payment flags.
	UpdateFlags(ctx context.Context, rowID string, isConfirmed, isPaid bool) error

	// Delete removes the booking and its seat associations.
	Delete(ctx context.Context, rowID string) error

	// ListSettleable retrieves the confirmed and paid bookings of a trip,
	// with seats loaded.
	ListSettleable(ctx context.Context, tripRowID string) ([]*domain.Booking, error)

	// ListForPassenger, ListForOrganization and ListForDriver retrieve
	// bookings scoped to the caller's role: a passenger sees its own
	// bookings, an organization the bookings on its trips, a driver the
	// bookings on its vehicle's trips.
	ListForPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error)
	ListForOrganization(ctx context.Context, organizationID string) ([]*domain.Booking, error)
	ListForDriver(ctx context.Context, driverID string) ([]*domain.Booking, error)

	// EarningsProjection returns the informational read-time sums for a
	// trip: total price over confirmed and paid bookings, and passenger
	// count over confirmed bookings.
	EarningsProjection(ctx context.Context, tripRowID string) (totalEarnings float64, passengerCount int, err error)
}
