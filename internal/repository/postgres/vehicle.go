package postgres

import (
	"context"
	"database/sql"
	"errors"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of
// repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

const vehicleColumns = `
	id, registration_number, organization_id, COALESCE(driver_id::text, ''),
	vehicle_type, company_made, model, color, seating_capacity, available_seat
`

// Create persists a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, registration_number, organization_id, driver_id,
			vehicle_type, company_made, model, color, seating_capacity, available_seat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var driverID sql.NullString
	if vehicle.DriverID != "" {
		driverID = sql.NullString{String: vehicle.DriverID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.RegistrationNumber,
		vehicle.OrganizationID,
		driverID,
		vehicle.VehicleType,
		vehicle.CompanyMade,
		vehicle.Model,
		vehicle.Color,
		vehicle.SeatingCapacity,
		vehicle.AvailableSeat,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}

	return err
}

// GetByID retrieves a vehicle by row id.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByRegistration retrieves a vehicle by registration number.
func (r *VehicleRepository) GetByRegistration(ctx context.Context, registrationNumber string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE registration_number = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, registrationNumber))
}

// GetByIDForUpdate retrieves a vehicle by row id holding a row lock.
// Concurrent seat reservations against the same vehicle serialize here.
func (r *VehicleRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// AdjustAvailableSeat moves the available-seat counter by delta. The guard
// keeps the counter inside [0, seating_capacity]; a miss returns
// ErrConflict.
func (r *VehicleRepository) AdjustAvailableSeat(ctx context.Context, id string, delta int) error {
	query := `
		UPDATE vehicles
		SET available_seat = available_seat + $2
		WHERE id = $1
		  AND available_seat + $2 >= 0
		  AND available_seat + $2 <= seating_capacity
	`

	result, err := r.q.ExecContext(ctx, query, id, delta)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrConflict
	}

	return nil
}

// ResetAvailableSeat recomputes the counter from the actual free-seat count,
// correcting any drift.
func (r *VehicleRepository) ResetAvailableSeat(ctx context.Context, id string) error {
	query := `
		UPDATE vehicles
		SET available_seat = seating_capacity - (
			SELECT COUNT(*) FROM seats WHERE vehicle_id = vehicles.id AND is_occupied
		)
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, id)
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

// ListByOrganization retrieves all vehicles of an organization.
func (r *VehicleRepository) ListByOrganization(ctx context.Context, organizationID string) ([]*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE organization_id = $1 ORDER BY registration_number`

	rows, err := r.q.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		var vehicle domain.Vehicle
		if err := scanVehicle(rows, &vehicle); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &vehicle)
	}

	return vehicles, rows.Err()
}

func (r *VehicleRepository) scanOne(row *sql.Row) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := scanVehicle(row, &vehicle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &vehicle, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner, vehicle *domain.Vehicle) error {
	return row.Scan(
		&vehicle.ID,
		&vehicle.RegistrationNumber,
		&vehicle.OrganizationID,
		&vehicle.DriverID,
		&vehicle.VehicleType,
		&vehicle.CompanyMade,
		&vehicle.Model,
		&vehicle.Color,
		&vehicle.SeatingCapacity,
		&vehicle.AvailableSeat,
	)
}
