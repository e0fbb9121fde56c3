package repository

import (
	"context"
	"time"

	"sawari/internal/domain"
)

// EarningsRepository defines the persistence operations for the append-only
// daily earnings ledger.
type EarningsRepository interface {
	// Create persists a new ledger entry. A second entry for the same
	// (trip, date) pair returns ErrDuplicate.
	Create(ctx context.Context, earnings *domain.DailyEarnings) error

	// AddBookings freezes the settled bookings into the ledger entry.
	AddBookings(ctx context.Context, earningsID string, bookingRowIDs []string) error

	// ExistsForTripDate reports whether a ledger entry already exists for
	// the (trip, date) pair.
	ExistsForTripDate(ctx context.Context, tripRowID string, tripDate time.Time) (bool, error)

	// ListByOrganization and ListByDriver retrieve ledger entries scoped
	// to the caller, newest first.
	ListByOrganization(ctx context.Context, organizationID string) ([]*domain.DailyEarnings, error)
	ListByDriver(ctx context.Context, driverID string) ([]*domain.DailyEarnings, error)
}
