package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of
// repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `
	b.id, b.booking_id, b.passenger_id, b.trip_id, b.trip_date,
	b.num_passengers, b.price, b.is_confirmed, b.is_paid, b.created_at
`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, booking_id, passenger_id, trip_id, trip_date,
			num_passengers, price, is_confirmed, is_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.BookingID,
		booking.PassengerID,
		booking.TripID,
		booking.TripDate,
		booking.NumPassengers,
		booking.Price,
		booking.IsConfirmed,
		booking.IsPaid,
		booking.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}

	return err
}

// AddSeats associates the reserved seats with the booking.
func (r *BookingRepository) AddSeats(ctx context.Context, bookingRowID string, seatIDs []string) error {
	query := `INSERT INTO booking_seats (booking_id, seat_id) VALUES ($1, $2)`

	for _, seatID := range seatIDs {
		if _, err := r.q.ExecContext(ctx, query, bookingRowID, seatID); err != nil {
			return err
		}
	}

	return nil
}

// ExistsBookingID reports whether a booking id is already taken.
func (r *BookingRepository) ExistsBookingID(ctx context.Context, bookingID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE booking_id = $1)`

	var exists bool
	if err := r.q.QueryRowContext(ctx, query, bookingID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// GetByBookingID retrieves a booking with its seats by public id.
func (r *BookingRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.booking_id = $1`
	return r.getOne(ctx, query, bookingID)
}

// GetByBookingIDForUpdate is GetByBookingID holding a row lock on the
// booking.
func (r *BookingRepository) GetByBookingIDForUpdate(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.booking_id = $1 FOR UPDATE`
	return r.getOne(ctx, query, bookingID)
}

// UpdateFlags persists the confirmation and payment flags.
func (r *BookingRepository) UpdateFlags(ctx context.Context, rowID string, isConfirmed, isPaid bool) error {
	query := `UPDATE bookings SET is_confirmed = $2, is_paid = $3 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, rowID, isConfirmed, isPaid)
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

// Delete removes the booking and its seat associations.
func (r *BookingRepository) Delete(ctx context.Context, rowID string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM booking_seats WHERE booking_id = $1`, rowID); err != nil {
		return err
	}

	result, err := r.q.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, rowID)
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

// ListSettleable retrieves the confirmed and paid bookings of a trip.
func (r *BookingRepository) ListSettleable(ctx context.Context, tripRowID string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.trip_id = $1 AND b.is_confirmed AND b.is_paid
		ORDER BY b.created_at
	`
	return r.list(ctx, query, tripRowID)
}

// ListForPassenger retrieves the passenger's own bookings.
func (r *BookingRepository) ListForPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.passenger_id = $1
		ORDER BY b.created_at DESC
	`
	return r.list(ctx, query, passengerID)
}

// ListForOrganization retrieves the bookings on the organization's trips.
func (r *BookingRepository) ListForOrganization(ctx context.Context, organizationID string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN trips t ON t.id = b.trip_id
		WHERE t.organization_id = $1
		ORDER BY b.created_at DESC
	`
	return r.list(ctx, query, organizationID)
}

// ListForDriver retrieves the bookings on the trips of the driver's vehicle.
func (r *BookingRepository) ListForDriver(ctx context.Context, driverID string) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN trips t ON t.id = b.trip_id
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE v.driver_id = $1
		ORDER BY b.created_at DESC
	`
	return r.list(ctx, query, driverID)
}

// EarningsProjection returns the informational read-time sums for a trip.
func (r *BookingRepository) EarningsProjection(ctx context.Context, tripRowID string) (float64, int, error) {
	query := `
		SELECT
			COALESCE(SUM(price) FILTER (WHERE is_confirmed AND is_paid), 0),
			COALESCE(SUM(num_passengers) FILTER (WHERE is_confirmed), 0)
		FROM bookings
		WHERE trip_id = $1
	`

	var totalEarnings float64
	var passengerCount int
	if err := r.q.QueryRowContext(ctx, query, tripRowID).Scan(&totalEarnings, &passengerCount); err != nil {
		return 0, 0, err
	}

	return totalEarnings, passengerCount, nil
}

func (r *BookingRepository) getOne(ctx context.Context, query, bookingID string) (*domain.Booking, error) {
	var booking domain.Booking
	if err := scanBooking(r.q.QueryRowContext(ctx, query, bookingID), &booking); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadSeats(ctx, []*domain.Booking{&booking}); err != nil {
		return nil, err
	}

	return &booking, nil
}

func (r *BookingRepository) list(ctx context.Context, query string, arg any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		var booking domain.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, &booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadSeats(ctx, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// loadSeats attaches the reserved seats to each booking.
func (r *BookingRepository) loadSeats(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ids := make([]string, len(bookings))
	byID := make(map[string]*domain.Booking, len(bookings))
	for i, booking := range bookings {
		ids[i] = booking.ID
		byID[booking.ID] = booking
	}

	query := `
		SELECT bs.booking_id, ` + seatColumns + `
		FROM booking_seats bs
		JOIN seats ON seats.id = bs.seat_id
		WHERE bs.booking_id = ANY($1)
		ORDER BY seats.seat_number
	`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID string
		var seat domain.Seat
		err := rows.Scan(
			&bookingID,
			&seat.ID,
			&seat.VehicleID,
			&seat.SeatNumber,
			&seat.IsOccupied,
			&seat.ReservedForDriver,
			&seat.ReservedForConductor,
		)
		if err != nil {
			return err
		}
		if booking, ok := byID[bookingID]; ok {
			booking.Seats = append(booking.Seats, seat)
		}
	}

	return rows.Err()
}

func scanBooking(row rowScanner, booking *domain.Booking) error {
	return row.Scan(
		&booking.ID,
		&booking.BookingID,
		&booking.PassengerID,
		&booking.TripID,
		&booking.TripDate,
		&booking.NumPassengers,
		&booking.Price,
		&booking.IsConfirmed,
		&booking.IsPaid,
		&booking.CreatedAt,
	)
}
