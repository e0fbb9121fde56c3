package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// SeatRepository is a PostgreSQL implementation of
// repository.SeatRepository. Occupancy transitions are expected to run
// inside the same transaction as the matching available-seat counter update.
type SeatRepository struct {
	q Querier
}

// NewSeatRepository creates a new PostgreSQL seat repository.
func NewSeatRepository(db *sql.DB) *SeatRepository {
	return &SeatRepository{q: db}
}

// NewSeatRepositoryWithTx creates a seat repository using a transaction.
func NewSeatRepositoryWithTx(tx *sql.Tx) *SeatRepository {
	return &SeatRepository{q: tx}
}

const seatColumns = `id, vehicle_id, seat_number, is_occupied, reserved_for_driver, reserved_for_conductor`

// CreateBulk persists all seats of a freshly created vehicle.
func (r *SeatRepository) CreateBulk(ctx context.Context, seats []*domain.Seat) error {
	query := `
		INSERT INTO seats (id, vehicle_id, seat_number, is_occupied, reserved_for_driver, reserved_for_conductor)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, seat := range seats {
		_, err := r.q.ExecContext(ctx, query,
			seat.ID,
			seat.VehicleID,
			seat.SeatNumber,
			seat.IsOccupied,
			seat.ReservedForDriver,
			seat.ReservedForConductor,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			return err
		}
	}

	return nil
}

// ListByVehicle retrieves all seats on a vehicle ordered by seat number.
func (r *SeatRepository) ListByVehicle(ctx context.Context, vehicleID string) ([]*domain.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE vehicle_id = $1 ORDER BY seat_number`

	rows, err := r.q.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSeats(rows)
}

// ReserveSeats locks the requested seats, validates all of them in one pass
// and marks them occupied. Any conflicting seat aborts the whole
// reservation with a SeatConflictError; nothing is reserved partially.
func (r *SeatRepository) ReserveSeats(ctx context.Context, vehicleID string, seatNumbers []string) ([]*domain.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE vehicle_id = $1 AND seat_number = ANY($2)
		ORDER BY seat_number
		FOR UPDATE
	`

	rows, err := r.q.QueryContext(ctx, query, vehicleID, pq.Array(seatNumbers))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats, err := collectSeats(rows)
	if err != nil {
		return nil, err
	}

	found := make(map[string]*domain.Seat, len(seats))
	for _, seat := range seats {
		found[seat.SeatNumber] = seat
	}

	var conflicts []string
	for _, number := range seatNumbers {
		seat, ok := found[number]
		if !ok || seat.IsOccupied || seat.ReservedForDriver {
			conflicts = append(conflicts, number)
		}
	}
	if len(conflicts) > 0 {
		return nil, &repository.SeatConflictError{SeatNumbers: conflicts}
	}

	ids := make([]string, len(seats))
	for i, seat := range seats {
		ids[i] = seat.ID
	}

	update := `UPDATE seats SET is_occupied = TRUE WHERE id = ANY($1)`
	result, err := r.q.ExecContext(ctx, update, pq.Array(ids))
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if int(affected) != len(ids) {
		return nil, repository.ErrConflict
	}

	for _, seat := range seats {
		seat.IsOccupied = true
	}

	return seats, nil
}

// ReleaseSeats marks the given seats unoccupied. Already free seats are
// skipped, so the returned count is exactly the amount the vehicle counter
// must be restored by.
func (r *SeatRepository) ReleaseSeats(ctx context.Context, seatIDs []string) (int, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}

	query := `UPDATE seats SET is_occupied = FALSE WHERE id = ANY($1) AND is_occupied`

	result, err := r.q.ExecContext(ctx, query, pq.Array(seatIDs))
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(affected), nil
}

// ResetAll marks every seat on the vehicle unoccupied in one statement.
func (r *SeatRepository) ResetAll(ctx context.Context, vehicleID string) error {
	query := `UPDATE seats SET is_occupied = FALSE WHERE vehicle_id = $1`
	_, err := r.q.ExecContext(ctx, query, vehicleID)
	return err
}

// ReserveForConductor flags a free, non-driver seat for the conductor.
func (r *SeatRepository) ReserveForConductor(ctx context.Context, vehicleID, seatNumber string) error {
	query := `
		UPDATE seats
		SET reserved_for_conductor = TRUE
		WHERE vehicle_id = $1 AND seat_number = $2
		  AND NOT is_occupied AND NOT reserved_for_driver
	`

	result, err := r.q.ExecContext(ctx, query, vehicleID, seatNumber)
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

// CountOccupied returns the number of occupied seats on the vehicle.
func (r *SeatRepository) CountOccupied(ctx context.Context, vehicleID string) (int, error) {
	query := `SELECT COUNT(*) FROM seats WHERE vehicle_id = $1 AND is_occupied`

	var count int
	if err := r.q.QueryRowContext(ctx, query, vehicleID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func collectSeats(rows *sql.Rows) ([]*domain.Seat, error) {
	var seats []*domain.Seat
	for rows.Next() {
		var seat domain.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.VehicleID,
			&seat.SeatNumber,
			&seat.IsOccupied,
			&seat.ReservedForDriver,
			&seat.ReservedForConductor,
		)
		if err != nil {
			return nil, err
		}
		seats = append(seats, &seat)
	}

	return seats, rows.Err()
}
