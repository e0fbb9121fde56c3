package repository

import (
	"context"

	"sawari/internal/domain"
)

// OrganizationRepository defines the persistence operations for
// organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, organization *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)

	// RecalculateEarnings re-aggregates the organization's running totals
	// from its daily earnings ledger entries. Full recomputation, not an
	// increment, so repeated settlements cannot drift the totals.
	RecalculateEarnings(ctx context.Context, id string) error
}

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	Create(ctx context.Context, driver *domain.Driver) error
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// RecalculateEarnings re-aggregates the driver's running totals from
	// the ledger entries of trips on the driver's vehicle.
	RecalculateEarnings(ctx context.Context, id string) error
}

// PassengerRepository defines the persistence operations for passengers.
type PassengerRepository interface {
	Create(ctx context.Context, passenger *domain.Passenger) error
	GetByID(ctx context.Context, id string) (*domain.Passenger, error)
}
