package postgres

import (
	"context"
	"database/sql"
	"errors"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `
	t.id, t.trip_id, t.organization_id, t.vehicle_id, t.from_location, t.to_location,
	t.start_datetime, t.end_datetime, t.is_completed, t.total_earnings,
	t.passenger_count, COALESCE(t.last_updated_by, ''), COALESCE(p.price, 0)
`

const tripJoin = ` FROM trips t LEFT JOIN trip_prices p ON p.trip_id = t.id `

// Create persists a new trip together with its price row.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (id, trip_id, organization_id, vehicle_id, from_location, to_location,
			start_datetime, end_datetime, is_completed, total_earnings, passenger_count, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.TripID,
		trip.OrganizationID,
		trip.VehicleID,
		trip.FromLocation,
		trip.ToLocation,
		trip.StartDatetime,
		trip.EndDatetime,
		trip.IsCompleted,
		trip.TotalEarnings,
		trip.PassengerCount,
		trip.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	priceQuery := `INSERT INTO trip_prices (trip_id, price) VALUES ($1, $2)`
	_, err = r.q.ExecContext(ctx, priceQuery, trip.ID, trip.Price)
	return err
}

// GetByID retrieves a trip by row id.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + tripJoin + `WHERE t.id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByTripID retrieves a trip by its public trip id.
func (r *TripRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + tripJoin + `WHERE t.trip_id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, tripID))
}

// GetByTripIDForUpdate retrieves a trip by public id holding a row lock on
// the trip. Settlement attempts serialize on this lock.
func (r *TripRepository) GetByTripIDForUpdate(ctx context.Context, tripID string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + tripJoin + `WHERE t.trip_id = $1 FOR UPDATE OF t`
	return r.scanOne(r.q.QueryRowContext(ctx, query, tripID))
}

// GetByVehicleID retrieves the trip operated by a vehicle.
func (r *TripRepository) GetByVehicleID(ctx context.Context, vehicleID string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + tripJoin + `WHERE t.vehicle_id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, vehicleID))
}

// Update persists mutable trip state.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET start_datetime = $2, end_datetime = $3, is_completed = $4,
			total_earnings = $5, passenger_count = $6, last_updated_by = $7
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.StartDatetime,
		trip.EndDatetime,
		trip.IsCompleted,
		trip.TotalEarnings,
		trip.PassengerCount,
		trip.LastUpdatedBy,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByOrganization retrieves the trips of an organization.
func (r *TripRepository) ListByOrganization(ctx context.Context, organizationID string) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + tripJoin + `WHERE t.organization_id = $1 ORDER BY t.start_datetime`

	rows, err := r.q.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		var trip domain.Trip
		if err := scanTrip(rows, &trip); err != nil {
			return nil, err
		}
		trips = append(trips, &trip)
	}

	return trips, rows.Err()
}

func (r *TripRepository) scanOne(row *sql.Row) (*domain.Trip, error) {
	var trip domain.Trip
	if err := scanTrip(row, &trip); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &trip, nil
}

func scanTrip(row rowScanner, trip *domain.Trip) error {
	return row.Scan(
		&trip.ID,
		&trip.TripID,
		&trip.OrganizationID,
		&trip.VehicleID,
		&trip.FromLocation,
		&trip.ToLocation,
		&trip.StartDatetime,
		&trip.EndDatetime,
		&trip.IsCompleted,
		&trip.TotalEarnings,
		&trip.PassengerCount,
		&trip.LastUpdatedBy,
		&trip.Price,
	)
}
