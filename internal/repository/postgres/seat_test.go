package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"sawari/internal/repository"
)

func newSeatMock(t *testing.T) (*SeatRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock setup failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewSeatRepository(db), mock
}

func seatMockRows(rows ...[]driverValue) *sqlmock.Rows {
	r := sqlmock.NewRows([]string{
		"id", "vehicle_id", "seat_number", "is_occupied", "reserved_for_driver", "reserved_for_conductor",
	})
	for _, row := range rows {
		r.AddRow(row...)
	}
	return r
}

type driverValue = driver.Value

func TestReserveSeats_LocksValidatesAndFlips(t *testing.T) {
	t.Parallel()

	repo, mock := newSeatMock(t)

	mock.ExpectQuery(`FROM seats\s+WHERE vehicle_id = \$1 AND seat_number = ANY\(\$2\)`).
		WillReturnRows(seatMockRows(
			[]driverValue{"seat-2", "veh-1", "S002", false, false, false},
			[]driverValue{"seat-3", "veh-1", "S003", false, false, false},
		))
	mock.ExpectExec(`UPDATE seats SET is_occupied = TRUE WHERE id = ANY\(\$1\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	seats, err := repo.ReserveSeats(context.Background(), "veh-1", []string{"S002", "S003"})
	if err != nil {
		t.Fatalf("expected reservation to succeed, got %v", err)
	}
	if len(seats) != 2 {
		t.Fatalf("expected 2 reserved seats, got %d", len(seats))
	}
	for _, seat := range seats {
		if !seat.IsOccupied {
			t.Errorf("seat %s must be returned occupied", seat.SeatNumber)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestReserveSeats_OccupiedSeatAbortsWithoutUpdate(t *testing.T) {
	t.Parallel()

	repo, mock := newSeatMock(t)

	mock.ExpectQuery(`FROM seats\s+WHERE vehicle_id = \$1 AND seat_number = ANY\(\$2\)`).
		WillReturnRows(seatMockRows(
			[]driverValue{"seat-2", "veh-1", "S002", true, false, false},
			[]driverValue{"seat-3", "veh-1", "S003", false, false, false},
		))

	_, err := repo.ReserveSeats(context.Background(), "veh-1", []string{"S002", "S003"})

	var conflict *repository.SeatConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SeatConflictError, got %v", err)
	}
	if len(conflict.SeatNumbers) != 1 || conflict.SeatNumbers[0] != "S002" {
		t.Errorf("expected S002 reported as the conflict, got %v", conflict.SeatNumbers)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestReserveSeats_UnknownSeatIsConflict(t *testing.T) {
	t.Parallel()

	repo, mock := newSeatMock(t)

	mock.ExpectQuery(`FROM seats\s+WHERE vehicle_id = \$1 AND seat_number = ANY\(\$2\)`).
		WillReturnRows(seatMockRows())

	_, err := repo.ReserveSeats(context.Background(), "veh-1", []string{"S099"})

	var conflict *repository.SeatConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SeatConflictError for a missing seat, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestReleaseSeats_ReturnsActuallyReleasedCount(t *testing.T) {
	t.Parallel()

	repo, mock := newSeatMock(t)

	// One of the two seats was already free.
	mock.ExpectExec(`UPDATE seats SET is_occupied = FALSE WHERE id = ANY\(\$1\) AND is_occupied`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	released, err := repo.ReleaseSeats(context.Background(), []string{"seat-2", "seat-3"})
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if released != 1 {
		t.Errorf("expected 1 actually released seat, got %d", released)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestReserveForConductor_GuardedUpdate(t *testing.T) {
	t.Parallel()

	repo, mock := newSeatMock(t)

	mock.ExpectExec(`SET reserved_for_conductor = TRUE`).
		WithArgs("veh-1", "S001").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ReserveForConductor(context.Background(), "veh-1", "S001")
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected the driver seat to be rejected, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
