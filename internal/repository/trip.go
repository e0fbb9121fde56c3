package repository

import (
	"context"

	"sawari/internal/domain"
)

// TripRepository defines the persistence operations for trips and their
// one-to-one price attribute.
type TripRepository interface {
	// Create persists a new trip together with its price row.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by row id.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetByTripID retrieves a trip by its public trip id.
	GetByTripID(ctx context.Context, tripID string) (*domain.Trip, error)

	// GetByTripIDForUpdate retrieves a trip by public id holding a row
	// lock for the duration of the surrounding transaction. Settlement
	// serializes on this lock.
	GetByTripIDForUpdate(ctx context.Context, tripID string) (*domain.Trip, error)

	// GetByVehicleID retrieves the trip operated by a vehicle.
	GetByVehicleID(ctx context.Context, vehicleID string) (*domain.Trip, error)

	// Update persists mutable trip state: completion flag, schedule,
	// informational totals and last_updated_by.
	Update(ctx context.Context, trip *domain.Trip) error

	// ListByOrganization retrieves the trips of an organization.
	ListByOrganization(ctx context.Context, organizationID string) ([]*domain.Trip, error)
}
