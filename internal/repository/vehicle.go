package repository

import (
	"context"

	"sawari/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles,
// including the derived available-seat counter.
type VehicleRepository interface {
	// Create persists a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by row id.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetByRegistration retrieves a vehicle by registration number.
	GetByRegistration(ctx context.Context, registrationNumber string) (*domain.Vehicle, error)

	// GetByIDForUpdate retrieves a vehicle by row id holding a row lock
	// for the duration of the surrounding transaction. Concurrent
	// bookings against the same vehicle serialize on this lock.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Vehicle, error)

	// AdjustAvailableSeat moves the available-seat counter by delta. The
	// update is guarded so the counter never leaves
	// [0, seating_capacity]; a guarded miss returns ErrConflict.
	AdjustAvailableSeat(ctx context.Context, id string, delta int) error

	// ResetAvailableSeat revalidates the counter against the actual
	// free-seat count. Used at settlement to correct any drift.
	ResetAvailableSeat(ctx context.Context, id string) error

	// ListByOrganization retrieves all vehicles of an organization.
	ListByOrganization(ctx context.Context, organizationID string) ([]*domain.Vehicle, error)
}

// SeatRepository defines the persistence operations for seat inventory.
// Occupancy transitions must run in the same transaction as the matching
// counter update on the vehicle.
type SeatRepository interface {
	// CreateBulk persists all seats of a freshly created vehicle.
	CreateBulk(ctx context.Context, seats []*domain.Seat) error

	// ListByVehicle retrieves all seats on a vehicle ordered by number.
	ListByVehicle(ctx context.Context, vehicleID string) ([]*domain.Seat, error)

	// ReserveSeats atomically checks that every requested seat belongs to
	// the vehicle, is unoccupied and is not reserved for the driver, then
	// marks them all occupied. On any conflict no seat is reserved and a
	// SeatConflictError naming the offending seats is returned.
	ReserveSeats(ctx context.Context, vehicleID string, seatNumbers []string) ([]*domain.Seat, error)

	// ReleaseSeats marks the given seats unoccupied. Releasing an already
	// free seat is a no-op; the returned count is the number of seats
	// actually released, which is the amount the counter must move by.
	ReleaseSeats(ctx context.Context, seatIDs []string) (int, error)

	// ResetAll marks every seat on the vehicle unoccupied in one
	// statement.
	ResetAll(ctx context.Context, vehicleID string) error

	// ReserveForConductor flags a free, non-driver seat as reserved for
	// the conductor. A seat that is occupied or driver-reserved returns
	// ErrConflict.
	ReserveForConductor(ctx context.Context, vehicleID, seatNumber string) error

	// CountOccupied returns the number of occupied seats on the vehicle.
	CountOccupied(ctx context.Context, vehicleID string) (int, error)
}
