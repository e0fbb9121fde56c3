package postgres

import (
	"context"
	"database/sql"
	"errors"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// OrganizationRepository is a PostgreSQL implementation of
// repository.OrganizationRepository.
type OrganizationRepository struct {
	q Querier
}

// NewOrganizationRepository creates a new PostgreSQL organization repository.
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{q: db}
}

// NewOrganizationRepositoryWithTx creates an organization repository using a
// transaction.
func NewOrganizationRepositoryWithTx(tx *sql.Tx) *OrganizationRepository {
	return &OrganizationRepository{q: tx}
}

// Create adds a new organization.
func (r *OrganizationRepository) Create(ctx context.Context, organization *domain.Organization) error {
	query := `INSERT INTO organizations (id, name, total_earnings, no_of_trips) VALUES ($1, $2, $3, $4)`
	_, err := r.q.ExecContext(ctx, query,
		organization.ID, organization.Name, organization.TotalEarnings, organization.NoOfTrips)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves an organization by id.
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	query := `SELECT id, name, total_earnings, no_of_trips FROM organizations WHERE id = $1`

	var organization domain.Organization
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&organization.ID,
		&organization.Name,
		&organization.TotalEarnings,
		&organization.NoOfTrips,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &organization, nil
}

// RecalculateEarnings re-aggregates the organization's running totals from
// its ledger entries.
func (r *OrganizationRepository) RecalculateEarnings(ctx context.Context, id string) error {
	query := `
		UPDATE organizations
		SET total_earnings = agg.total, no_of_trips = agg.trips
		FROM (
			SELECT COALESCE(SUM(de.total_earnings), 0) AS total, COUNT(de.id) AS trips
			FROM daily_earnings de
			JOIN trips t ON t.id = de.trip_id
			WHERE t.organization_id = $1
		) agg
		WHERE organizations.id = $1
	`

	_, err := r.q.ExecContext(ctx, query, id)
	return err
}

// DriverRepository is a PostgreSQL implementation of
// repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, license_number, organization_id, total_earnings, no_of_trips)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var organizationID sql.NullString
	if driver.OrganizationID != "" {
		organizationID = sql.NullString{String: driver.OrganizationID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		driver.ID, driver.Name, driver.LicenseNumber, organizationID,
		driver.TotalEarnings, driver.NoOfTrips)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a driver by id.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `
		SELECT id, name, license_number, COALESCE(organization_id::text, ''), total_earnings, no_of_trips
		FROM drivers WHERE id = $1
	`

	var driver domain.Driver
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&driver.ID,
		&driver.Name,
		&driver.LicenseNumber,
		&driver.OrganizationID,
		&driver.TotalEarnings,
		&driver.NoOfTrips,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &driver, nil
}

// RecalculateEarnings re-aggregates the driver's running totals from the
// ledger entries of trips on the driver's vehicle.
func (r *DriverRepository) RecalculateEarnings(ctx context.Context, id string) error {
	query := `
		UPDATE drivers
		SET total_earnings = agg.total, no_of_trips = agg.trips
		FROM (
			SELECT COALESCE(SUM(de.total_earnings), 0) AS total, COUNT(de.id) AS trips
			FROM daily_earnings de
			JOIN trips t ON t.id = de.trip_id
			JOIN vehicles v ON v.id = t.vehicle_id
			WHERE v.driver_id = $1
		) agg
		WHERE drivers.id = $1
	`

	_, err := r.q.ExecContext(ctx, query, id)
	return err
}

// PassengerRepository is a PostgreSQL implementation of
// repository.PassengerRepository.
type PassengerRepository struct {
	q Querier
}

// NewPassengerRepository creates a new PostgreSQL passenger repository.
func NewPassengerRepository(db *sql.DB) *PassengerRepository {
	return &PassengerRepository{q: db}
}

// Create adds a new passenger.
func (r *PassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	query := `INSERT INTO passengers (id, name, phone) VALUES ($1, $2, $3)`
	_, err := r.q.ExecContext(ctx, query, passenger.ID, passenger.Name, passenger.Phone)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a passenger by id.
func (r *PassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	query := `SELECT id, name, COALESCE(phone, '') FROM passengers WHERE id = $1`

	var passenger domain.Passenger
	err := r.q.QueryRowContext(ctx, query, id).Scan(&passenger.ID, &passenger.Name, &passenger.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &passenger, nil
}
