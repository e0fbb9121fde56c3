package tests

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"sawari/internal/domain"
	"sawari/internal/repository/postgres"
	"sawari/internal/service"
)

// ──────────────────────────────────────────────
// SETTLEMENT TRANSACTION FLOWS
// ──────────────────────────────────────────────

func TestSettle_CreatesLedgerEntryAndRollsTripOver(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	start := time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC)
	trip := fixtureTrip(start)
	trip.IsCompleted = true
	vehicle := fixtureVehicle()
	vehicle.AvailableSeat = 4

	tripDate := trip.TripDate()
	booking1 := &domain.Booking{
		ID: "bk-1", BookingID: "BOK-KATPOK-111111", PassengerID: "pax-1",
		TripID: trip.ID, TripDate: tripDate, NumPassengers: 3, Price: 1500,
		IsConfirmed: true, IsPaid: true, CreatedAt: start,
	}
	booking2 := &domain.Booking{
		ID: "bk-2", BookingID: "BOK-KATPOK-222222", PassengerID: "pax-2",
		TripID: trip.ID, TripDate: tripDate, NumPassengers: 2, Price: 1000,
		IsConfirmed: true, IsPaid: true, CreatedAt: start,
	}

	mock.ExpectBegin()

	// Settlement serializes on the trip row lock.
	mock.ExpectQuery(`WHERE t\.trip_id = \$1 FOR UPDATE OF t`).
		WithArgs(trip.TripID).
		WillReturnRows(tripRows(trip))
	mock.ExpectQuery(`FROM vehicles WHERE id = \$1`).
		WithArgs(vehicle.ID).
		WillReturnRows(vehicleRows(vehicle))

	// Settleable bookings with their seats.
	mock.ExpectQuery(`b\.is_confirmed AND b\.is_paid`).
		WillReturnRows(bookingRows(booking1, booking2))
	mock.ExpectQuery(`FROM booking_seats bs`).
		WillReturnRows(bookingSeatRows("bk-1"))

	// Duplicate guard, then the frozen ledger entry.
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM daily_earnings`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO daily_earnings \(`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO daily_earnings_bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO daily_earnings_bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Inventory reset: all seats free, counter revalidated.
	mock.ExpectQuery(`FROM vehicles WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(vehicleRows(vehicle))
	mock.ExpectExec(`UPDATE seats SET is_occupied = FALSE WHERE vehicle_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`SET available_seat = seating_capacity`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Party totals are re-aggregated from the ledger.
	mock.ExpectExec(`UPDATE organizations`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE drivers`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Trip rollover to the next day.
	mock.ExpectExec(`UPDATE trips`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	locks := NewMockLockStore()
	cache := NewMockCacheStore()

	svc := service.NewSettlementService(db, locks, cache,
		postgres.NewTripRepository(db),
		postgres.NewVehicleRepository(db),
		postgres.NewEarningsRepository(db))

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}
	earnings, err := svc.Settle(context.Background(), actor, trip.TripID)
	if err != nil {
		t.Fatalf("expected settlement to succeed, got %v", err)
	}

	if earnings.TotalEarnings != 2500 {
		t.Errorf("expected total earnings 2500, got %.2f", earnings.TotalEarnings)
	}
	if earnings.NumPassengers != 5 {
		t.Errorf("expected 5 passengers, got %d", earnings.NumPassengers)
	}
	wantBookingIDs := []string{"BOK-KATPOK-111111", "BOK-KATPOK-222222"}
	if !reflect.DeepEqual(earnings.BookingIDs, wantBookingIDs) {
		t.Errorf("expected frozen booking ids %v, got %v", wantBookingIDs, earnings.BookingIDs)
	}
	if !sameDay(earnings.TripDate, tripDate) {
		t.Errorf("expected trip date %v, got %v", tripDate, earnings.TripDate)
	}

	if got := locks.AcquireCallCount; got != 1 {
		t.Errorf("expected 1 lock acquisition, got %d", got)
	}
	if got := locks.ReleaseCallCount; got != 1 {
		t.Errorf("expected 1 lock release, got %d", got)
	}
	// Organization and driver profiles both changed.
	if got := cache.InvalidateCallCount; got != 2 {
		t.Errorf("expected 2 cache invalidations, got %d", got)
	}

	// The ledger read reports the same public booking ids the settle
	// path froze into the entry.
	mock.ExpectQuery(`FROM daily_earnings de JOIN trips t ON t\.id = de\.trip_id WHERE t\.organization_id = \$1`).
		WithArgs("org-1").
		WillReturnRows(earningsRows(earnings))
	mock.ExpectQuery(`JOIN bookings b ON b\.id = deb\.booking_id`).
		WillReturnRows(sqlmock.NewRows([]string{"daily_earnings_id", "booking_id"}).
			AddRow(earnings.ID, "BOK-KATPOK-111111").
			AddRow(earnings.ID, "BOK-KATPOK-222222"))

	listed, err := svc.List(context.Background(), actor)
	if err != nil {
		t.Fatalf("expected the ledger listing to succeed, got %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(listed))
	}
	if !reflect.DeepEqual(listed[0].BookingIDs, earnings.BookingIDs) {
		t.Errorf("listing reports booking ids %v, settlement froze %v",
			listed[0].BookingIDs, earnings.BookingIDs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSettle_DuplicateDateRejected(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	start := time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC)
	trip := fixtureTrip(start)
	trip.IsCompleted = true
	vehicle := fixtureVehicle()

	booking := &domain.Booking{
		ID: "bk-1", BookingID: "BOK-KATPOK-111111", PassengerID: "pax-1",
		TripID: trip.ID, TripDate: trip.TripDate(), NumPassengers: 1, Price: 500,
		IsConfirmed: true, IsPaid: true, CreatedAt: start,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE t\.trip_id = \$1 FOR UPDATE OF t`).
		WillReturnRows(tripRows(trip))
	mock.ExpectQuery(`FROM vehicles WHERE id = \$1`).
		WillReturnRows(vehicleRows(vehicle))
	mock.ExpectQuery(`b\.is_confirmed AND b\.is_paid`).
		WillReturnRows(bookingRows(booking))
	mock.ExpectQuery(`FROM booking_seats bs`).
		WillReturnRows(bookingSeatRows("bk-1"))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM daily_earnings`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	svc := service.NewSettlementService(db, nil, nil,
		postgres.NewTripRepository(db),
		postgres.NewVehicleRepository(db),
		postgres.NewEarningsRepository(db))

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}
	_, err := svc.Settle(context.Background(), actor, trip.TripID)

	if !errors.Is(err, service.ErrDuplicateSettlement) {
		t.Fatalf("expected ErrDuplicateSettlement, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSettle_RequiresCompletedTrip(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	trip := fixtureTrip(time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC))
	vehicle := fixtureVehicle()

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE t\.trip_id = \$1 FOR UPDATE OF t`).
		WillReturnRows(tripRows(trip))
	mock.ExpectQuery(`FROM vehicles WHERE id = \$1`).
		WillReturnRows(vehicleRows(vehicle))
	mock.ExpectRollback()

	svc := service.NewSettlementService(db, nil, nil,
		postgres.NewTripRepository(db),
		postgres.NewVehicleRepository(db),
		postgres.NewEarningsRepository(db))

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}
	_, err := svc.Settle(context.Background(), actor, trip.TripID)

	if !errors.Is(err, service.ErrTripNotCompleted) {
		t.Fatalf("expected ErrTripNotCompleted, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSettle_NoConfirmedPaidBookings(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	trip := fixtureTrip(time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC))
	trip.IsCompleted = true
	vehicle := fixtureVehicle()

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE t\.trip_id = \$1 FOR UPDATE OF t`).
		WillReturnRows(tripRows(trip))
	mock.ExpectQuery(`FROM vehicles WHERE id = \$1`).
		WillReturnRows(vehicleRows(vehicle))
	mock.ExpectQuery(`b\.is_confirmed AND b\.is_paid`).
		WillReturnRows(bookingRows())
	mock.ExpectRollback()

	svc := service.NewSettlementService(db, nil, nil,
		postgres.NewTripRepository(db),
		postgres.NewVehicleRepository(db),
		postgres.NewEarningsRepository(db))

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}
	_, err := svc.Settle(context.Background(), actor, trip.TripID)

	if !errors.Is(err, service.ErrNoBookingsToSettle) {
		t.Fatalf("expected ErrNoBookingsToSettle, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSettle_DateMismatchRejected(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	start := time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC)
	trip := fixtureTrip(start)
	trip.IsCompleted = true
	vehicle := fixtureVehicle()

	// The booking's trip date is a day behind the trip's schedule: the
	// trip already rolled over without this date being settled.
	booking := &domain.Booking{
		ID: "bk-1", BookingID: "BOK-KATPOK-111111", PassengerID: "pax-1",
		TripID: trip.ID, TripDate: trip.TripDate().AddDate(0, 0, -1),
		NumPassengers: 1, Price: 500,
		IsConfirmed: true, IsPaid: true, CreatedAt: start,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE t\.trip_id = \$1 FOR UPDATE OF t`).
		WillReturnRows(tripRows(trip))
	mock.ExpectQuery(`FROM vehicles WHERE id = \$1`).
		WillReturnRows(vehicleRows(vehicle))
	mock.ExpectQuery(`b\.is_confirmed AND b\.is_paid`).
		WillReturnRows(bookingRows(booking))
	mock.ExpectQuery(`FROM booking_seats bs`).
		WillReturnRows(bookingSeatRows("bk-1"))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM daily_earnings`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	svc := service.NewSettlementService(db, nil, nil,
		postgres.NewTripRepository(db),
		postgres.NewVehicleRepository(db),
		postgres.NewEarningsRepository(db))

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}
	_, err := svc.Settle(context.Background(), actor, trip.TripID)

	if !errors.Is(err, service.ErrDateMismatch) {
		t.Fatalf("expected ErrDateMismatch, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSettle_SameDayAcrossTimezonesMatches(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)

	// The trip's schedule scans in a non-UTC session zone while the
	// booking's trip date, a DATE column, scans as midnight UTC of the
	// same calendar day. The date check compares calendar dates, not
	// instants, so the pair must settle.
	npt := time.FixedZone("NPT", 5*3600+45*60)
	start := time.Date(2025, 1, 14, 6, 0, 0, 0, npt)
	trip := fixtureTrip(start)
	trip.IsCompleted = true
	vehicle := fixtureVehicle()

	booking := &domain.Booking{
		ID: "bk-1", BookingID: "BOK-KATPOK-111111", PassengerID: "pax-1",
		TripID: trip.ID, TripDate: time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
		NumPassengers: 1, Price: 500,
		IsConfirmed: true, IsPaid: true, CreatedAt: start,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE t\.trip_id = \$1 FOR UPDATE OF t`).
		WillReturnRows(tripRows(trip))
	mock.ExpectQuery(`FROM vehicles WHERE id = \$1`).
		WillReturnRows(vehicleRows(vehicle))
	mock.ExpectQuery(`b\.is_confirmed AND b\.is_paid`).
		WillReturnRows(bookingRows(booking))
	mock.ExpectQuery(`FROM booking_seats bs`).
		WillReturnRows(bookingSeatRows("bk-1"))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM daily_earnings`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO daily_earnings \(`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO daily_earnings_bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM vehicles WHERE id = \$1 FOR UPDATE`).
		WillReturnRows(vehicleRows(vehicle))
	mock.ExpectExec(`UPDATE seats SET is_occupied = FALSE WHERE vehicle_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET available_seat = seating_capacity`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE organizations`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE drivers`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE trips`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := service.NewSettlementService(db, nil, nil,
		postgres.NewTripRepository(db),
		postgres.NewVehicleRepository(db),
		postgres.NewEarningsRepository(db))

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}
	earnings, err := svc.Settle(context.Background(), actor, trip.TripID)
	if err != nil {
		t.Fatalf("expected the same-day pair to settle, got %v", err)
	}
	if earnings.TotalEarnings != 500 {
		t.Errorf("expected total earnings 500, got %.2f", earnings.TotalEarnings)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSettle_LockDeniedMeansSettlementInFlight(t *testing.T) {
	t.Parallel()

	locks := NewMockLockStore()
	locks.Denied = true

	// The lock is denied before any database work starts.
	svc := service.NewSettlementService(nil, locks, nil, nil, nil, nil)

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}
	_, err := svc.Settle(context.Background(), actor, "KATPOK20250114060000")

	if !errors.Is(err, service.ErrDuplicateSettlement) {
		t.Fatalf("expected ErrDuplicateSettlement, got %v", err)
	}
	if locks.ReleaseCallCount != 0 {
		t.Errorf("expected no lock release after denied acquisition, got %d", locks.ReleaseCallCount)
	}
}

func TestSettle_UnrelatedPartyRejected(t *testing.T) {
	t.Parallel()

	db, mock := newSQLMock(t)
	trip := fixtureTrip(time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC))
	trip.IsCompleted = true
	vehicle := fixtureVehicle()

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE t\.trip_id = \$1 FOR UPDATE OF t`).
		WillReturnRows(tripRows(trip))
	mock.ExpectQuery(`FROM vehicles WHERE id = \$1`).
		WillReturnRows(vehicleRows(vehicle))
	mock.ExpectRollback()

	svc := service.NewSettlementService(db, nil, nil,
		postgres.NewTripRepository(db),
		postgres.NewVehicleRepository(db),
		postgres.NewEarningsRepository(db))

	actor := domain.PartyRef{Kind: domain.PartyDriver, ID: "someone-else"}
	_, err := svc.Settle(context.Background(), actor, trip.TripID)

	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
