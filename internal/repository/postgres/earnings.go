package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// EarningsRepository is a PostgreSQL implementation of
// repository.EarningsRepository. Ledger entries are append-only; nothing
// here updates or recomputes an existing row.
type EarningsRepository struct {
	q Querier
}

// NewEarningsRepository creates a new PostgreSQL earnings repository.
func NewEarningsRepository(db *sql.DB) *EarningsRepository {
	return &EarningsRepository{q: db}
}

// NewEarningsRepositoryWithTx creates an earnings repository using a
// transaction.
func NewEarningsRepositoryWithTx(tx *sql.Tx) *EarningsRepository {
	return &EarningsRepository{q: tx}
}

const earningsColumns = `id, trip_id, trip_date, total_earnings, num_passengers, is_completed, created_at`

// Create persists a new ledger entry. The unique (trip_id, trip_date) index
// is the hard duplicate-settlement guard.
func (r *EarningsRepository) Create(ctx context.Context, earnings *domain.DailyEarnings) error {
	query := `
		INSERT INTO daily_earnings (id, trip_id, trip_date, total_earnings, num_passengers, is_completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		earnings.ID,
		earnings.TripID,
		earnings.TripDate,
		earnings.TotalEarnings,
		earnings.NumPassengers,
		earnings.IsCompleted,
		earnings.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}

	return err
}

// AddBookings freezes the settled bookings into the ledger entry.
func (r *EarningsRepository) AddBookings(ctx context.Context, earningsID string, bookingRowIDs []string) error {
	query := `INSERT INTO daily_earnings_bookings (daily_earnings_id, booking_id) VALUES ($1, $2)`

	for _, bookingID := range bookingRowIDs {
		if _, err := r.q.ExecContext(ctx, query, earningsID, bookingID); err != nil {
			return err
		}
	}

	return nil
}

// ExistsForTripDate reports whether a ledger entry already exists for the
// (trip, date) pair.
func (r *EarningsRepository) ExistsForTripDate(ctx context.Context, tripRowID string, tripDate time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM daily_earnings WHERE trip_id = $1 AND trip_date = $2)`

	var exists bool
	if err := r.q.QueryRowContext(ctx, query, tripRowID, tripDate).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// ListByOrganization retrieves ledger entries for the organization's trips,
// newest first.
func (r *EarningsRepository) ListByOrganization(ctx context.Context, organizationID string) ([]*domain.DailyEarnings, error) {
	query := `
		SELECT de.id, de.trip_id, de.trip_date, de.total_earnings, de.num_passengers, de.is_completed, de.created_at
		FROM daily_earnings de
		JOIN trips t ON t.id = de.trip_id
		WHERE t.organization_id = $1
		ORDER BY de.trip_date DESC
	`
	return r.list(ctx, query, organizationID)
}

// ListByDriver retrieves ledger entries for trips on the driver's vehicle,
// newest first.
func (r *EarningsRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.DailyEarnings, error) {
	query := `
		SELECT de.id, de.trip_id, de.trip_date, de.total_earnings, de.num_passengers, de.is_completed, de.created_at
		FROM daily_earnings de
		JOIN trips t ON t.id = de.trip_id
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE v.driver_id = $1
		ORDER BY de.trip_date DESC
	`
	return r.list(ctx, query, driverID)
}

func (r *EarningsRepository) list(ctx context.Context, query string, arg any) ([]*domain.DailyEarnings, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.DailyEarnings
	for rows.Next() {
		var entry domain.DailyEarnings
		err := rows.Scan(
			&entry.ID,
			&entry.TripID,
			&entry.TripDate,
			&entry.TotalEarnings,
			&entry.NumPassengers,
			&entry.IsCompleted,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadBookingIDs(ctx, entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *EarningsRepository) loadBookingIDs(ctx context.Context, entries []*domain.DailyEarnings) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	byID := make(map[string]*domain.DailyEarnings, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
		byID[entry.ID] = entry
	}

	// Expose the public booking ids, matching what the settle path
	// freezes into the entry.
	query := `
		SELECT deb.daily_earnings_id, b.booking_id
		FROM daily_earnings_bookings deb
		JOIN bookings b ON b.id = deb.booking_id
		WHERE deb.daily_earnings_id = ANY($1)
	`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var earningsID, bookingID string
		if err := rows.Scan(&earningsID, &bookingID); err != nil {
			return err
		}
		if entry, ok := byID[earningsID]; ok {
			entry.BookingIDs = append(entry.BookingIDs, bookingID)
		}
	}

	return rows.Err()
}
