package postgres

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newEarningsMock(t *testing.T) (*EarningsRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock setup failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewEarningsRepository(db), mock
}

func TestListByOrganization_AttachesPublicBookingIDs(t *testing.T) {
	t.Parallel()

	repo, mock := newEarningsMock(t)

	tripDate := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM daily_earnings de JOIN trips t ON t\.id = de\.trip_id WHERE t\.organization_id = \$1`).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "trip_id", "trip_date", "total_earnings", "num_passengers", "is_completed", "created_at",
		}).AddRow("de-1", "trip-row-1", tripDate, 2500.0, 5, true, tripDate))

	// Booking ids come from the bookings join, not the association rows.
	mock.ExpectQuery(`JOIN bookings b ON b\.id = deb\.booking_id`).
		WillReturnRows(sqlmock.NewRows([]string{"daily_earnings_id", "booking_id"}).
			AddRow("de-1", "BOK-KATPOK-111111").
			AddRow("de-1", "BOK-KATPOK-222222"))

	entries, err := repo.ListByOrganization(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	want := []string{"BOK-KATPOK-111111", "BOK-KATPOK-222222"}
	if !reflect.DeepEqual(entries[0].BookingIDs, want) {
		t.Errorf("expected booking ids %v, got %v", want, entries[0].BookingIDs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
