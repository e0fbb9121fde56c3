package tests

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"sawari/internal/domain"
)

// Shared fixtures for the transactional flow tests. The flows run against
// go-sqlmock so the exact statement sequence of a transaction can be
// asserted without a live database.

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db, mock
}

var tripCols = []string{
	"id", "trip_id", "organization_id", "vehicle_id", "from_location", "to_location",
	"start_datetime", "end_datetime", "is_completed", "total_earnings",
	"passenger_count", "last_updated_by", "price",
}

func tripRows(trip *domain.Trip) *sqlmock.Rows {
	return sqlmock.NewRows(tripCols).AddRow(
		trip.ID, trip.TripID, trip.OrganizationID, trip.VehicleID,
		trip.FromLocation, trip.ToLocation, trip.StartDatetime, trip.EndDatetime,
		trip.IsCompleted, trip.TotalEarnings, trip.PassengerCount,
		trip.LastUpdatedBy, trip.Price,
	)
}

var vehicleCols = []string{
	"id", "registration_number", "organization_id", "driver_id",
	"vehicle_type", "company_made", "model", "color", "seating_capacity", "available_seat",
}

func vehicleRows(v *domain.Vehicle) *sqlmock.Rows {
	return sqlmock.NewRows(vehicleCols).AddRow(
		v.ID, v.RegistrationNumber, v.OrganizationID, v.DriverID,
		v.VehicleType, v.CompanyMade, v.Model, v.Color, v.SeatingCapacity, v.AvailableSeat,
	)
}

var seatCols = []string{
	"id", "vehicle_id", "seat_number", "is_occupied", "reserved_for_driver", "reserved_for_conductor",
}

func seatRows(seats ...*domain.Seat) *sqlmock.Rows {
	rows := sqlmock.NewRows(seatCols)
	for _, s := range seats {
		rows.AddRow(s.ID, s.VehicleID, s.SeatNumber, s.IsOccupied, s.ReservedForDriver, s.ReservedForConductor)
	}
	return rows
}

var bookingCols = []string{
	"id", "booking_id", "passenger_id", "trip_id", "trip_date",
	"num_passengers", "price", "is_confirmed", "is_paid", "created_at",
}

func bookingRows(bookings ...*domain.Booking) *sqlmock.Rows {
	rows := sqlmock.NewRows(bookingCols)
	for _, b := range bookings {
		rows.AddRow(b.ID, b.BookingID, b.PassengerID, b.TripID, b.TripDate,
			b.NumPassengers, b.Price, b.IsConfirmed, b.IsPaid, b.CreatedAt)
	}
	return rows
}

// bookingSeatRows builds the rows returned by the seat-association query
// used to attach seats to loaded bookings.
func bookingSeatRows(bookingRowID string, seats ...*domain.Seat) *sqlmock.Rows {
	cols := append([]string{"booking_id"}, seatCols...)
	rows := sqlmock.NewRows(cols)
	for _, s := range seats {
		rows.AddRow(bookingRowID, s.ID, s.VehicleID, s.SeatNumber, s.IsOccupied, s.ReservedForDriver, s.ReservedForConductor)
	}
	return rows
}

var earningsCols = []string{
	"id", "trip_id", "trip_date", "total_earnings", "num_passengers", "is_completed", "created_at",
}

func earningsRows(entries ...*domain.DailyEarnings) *sqlmock.Rows {
	rows := sqlmock.NewRows(earningsCols)
	for _, e := range entries {
		rows.AddRow(e.ID, e.TripID, e.TripDate, e.TotalEarnings, e.NumPassengers, e.IsCompleted, e.CreatedAt)
	}
	return rows
}

// fixtureTrip builds a trip on fixtureVehicle with a known route and price.
func fixtureTrip(start time.Time) *domain.Trip {
	return &domain.Trip{
		ID:             "trip-row-1",
		TripID:         "KATPOK20250114060000",
		OrganizationID: "org-1",
		VehicleID:      "veh-1",
		FromLocation:   "Kathmandu",
		ToLocation:     "Pokhara",
		StartDatetime:  start,
		EndDatetime:    start.Add(domain.DefaultTripDuration),
		Price:          500,
	}
}

func fixtureVehicle() *domain.Vehicle {
	return &domain.Vehicle{
		ID:                 "veh-1",
		RegistrationNumber: "REG-SAJ-AAAA2222",
		OrganizationID:     "org-1",
		DriverID:           "drv-1",
		VehicleType:        domain.VehicleTypeBus,
		SeatingCapacity:    10,
		AvailableSeat:      9,
	}
}
