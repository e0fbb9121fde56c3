package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"sawari/internal/domain"
	"sawari/internal/service"
)

// ──────────────────────────────────────────────
// TRIP LIFECYCLE
// ──────────────────────────────────────────────

func newTripFixtures() (*MockTripRepository, *MockVehicleRepository, *MockBookingRepository, *service.TripService) {
	tripRepo := NewMockTripRepository()
	vehicleRepo := NewMockVehicleRepository()
	bookingRepo := NewMockBookingRepository()
	bookingRepo.Trips = tripRepo
	bookingRepo.Vehicles = vehicleRepo

	svc := service.NewTripService(nil, tripRepo, vehicleRepo, bookingRepo)
	return tripRepo, vehicleRepo, bookingRepo, svc
}

func TestTripSchedule_RejectsVehicleThatAlreadyOperatesATrip(t *testing.T) {
	t.Parallel()

	tripRepo, vehicleRepo, _, svc := newTripFixtures()
	vehicleRepo.AddVehicle(fixtureVehicle())
	tripRepo.AddTrip(fixtureTrip(time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC)))

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}
	_, err := svc.Schedule(context.Background(), actor, service.ScheduleTripRequest{
		VehicleRegistration: "REG-SAJ-AAAA2222",
		FromLocation:        "Kathmandu",
		ToLocation:          "Chitwan",
		StartDatetime:       time.Date(2025, 2, 1, 6, 0, 0, 0, time.UTC),
		Price:               600,
	})

	if !errors.Is(err, service.ErrVehicleHasTrip) {
		t.Fatalf("expected ErrVehicleHasTrip, got %v", err)
	}
}

func TestTripSchedule_RejectsForeignVehicle(t *testing.T) {
	t.Parallel()

	_, vehicleRepo, _, svc := newTripFixtures()
	vehicleRepo.AddVehicle(fixtureVehicle())

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "other-org"}
	_, err := svc.Schedule(context.Background(), actor, service.ScheduleTripRequest{
		VehicleRegistration: "REG-SAJ-AAAA2222",
		FromLocation:        "Kathmandu",
		ToLocation:          "Pokhara",
		StartDatetime:       time.Date(2025, 2, 1, 6, 0, 0, 0, time.UTC),
		Price:               600,
	})

	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTripSchedule_RejectsNegativePrice(t *testing.T) {
	t.Parallel()

	_, vehicleRepo, _, svc := newTripFixtures()
	vehicleRepo.AddVehicle(fixtureVehicle())

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}
	_, err := svc.Schedule(context.Background(), actor, service.ScheduleTripRequest{
		VehicleRegistration: "REG-SAJ-AAAA2222",
		FromLocation:        "Kathmandu",
		ToLocation:          "Pokhara",
		StartDatetime:       time.Date(2025, 2, 1, 6, 0, 0, 0, time.UTC),
		Price:               -1,
	})

	if !errors.Is(err, service.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestTripMarkComplete_IsIdempotent(t *testing.T) {
	t.Parallel()

	tripRepo, vehicleRepo, _, svc := newTripFixtures()
	vehicleRepo.AddVehicle(fixtureVehicle())
	trip := fixtureTrip(time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC))
	tripRepo.AddTrip(trip)

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}

	first, err := svc.MarkComplete(context.Background(), actor, trip.TripID)
	if err != nil {
		t.Fatalf("expected first completion to succeed, got %v", err)
	}
	if !first.IsCompleted {
		t.Error("expected trip to be completed")
	}
	if tripRepo.UpdateCallCount != 1 {
		t.Errorf("expected 1 update, got %d", tripRepo.UpdateCallCount)
	}

	// A second completion is a no-op, not an error.
	second, err := svc.MarkComplete(context.Background(), actor, trip.TripID)
	if err != nil {
		t.Fatalf("expected repeated completion to succeed, got %v", err)
	}
	if !second.IsCompleted {
		t.Error("expected trip to remain completed")
	}
	if tripRepo.UpdateCallCount != 1 {
		t.Errorf("expected no further update, got %d", tripRepo.UpdateCallCount)
	}
}

func TestTripMarkComplete_DriverOfVehicleAllowed(t *testing.T) {
	t.Parallel()

	tripRepo, vehicleRepo, _, svc := newTripFixtures()
	vehicleRepo.AddVehicle(fixtureVehicle())
	trip := fixtureTrip(time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC))
	tripRepo.AddTrip(trip)

	driver := domain.PartyRef{Kind: domain.PartyDriver, ID: "drv-1"}
	if _, err := svc.MarkComplete(context.Background(), driver, trip.TripID); err != nil {
		t.Fatalf("expected the vehicle's driver to complete the trip, got %v", err)
	}

	stored := tripRepo.GetTrip(trip.ID)
	if stored.LastUpdatedBy != driver.String() {
		t.Errorf("expected last_updated_by %q, got %q", driver.String(), stored.LastUpdatedBy)
	}
}

func TestTripMarkComplete_UnrelatedDriverRejected(t *testing.T) {
	t.Parallel()

	tripRepo, vehicleRepo, _, svc := newTripFixtures()
	vehicleRepo.AddVehicle(fixtureVehicle())
	trip := fixtureTrip(time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC))
	tripRepo.AddTrip(trip)

	other := domain.PartyRef{Kind: domain.PartyDriver, ID: "drv-2"}
	_, err := svc.MarkComplete(context.Background(), other, trip.TripID)

	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTripGet_RefreshesEarningsProjection(t *testing.T) {
	t.Parallel()

	tripRepo, _, bookingRepo, svc := newTripFixtures()
	trip := fixtureTrip(time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC))
	tripRepo.AddTrip(trip)

	// One confirmed and paid booking, one merely confirmed.
	bookingRepo.AddBooking(&domain.Booking{
		ID: "bk-1", BookingID: "BOK-KATPOK-111111", TripID: trip.ID,
		NumPassengers: 2, Price: 1000, IsConfirmed: true, IsPaid: true,
	})
	bookingRepo.AddBooking(&domain.Booking{
		ID: "bk-2", BookingID: "BOK-KATPOK-222222", TripID: trip.ID,
		NumPassengers: 1, Price: 500, IsConfirmed: true,
	})

	got, err := svc.Get(context.Background(), trip.TripID)
	if err != nil {
		t.Fatalf("expected get to succeed, got %v", err)
	}

	// Earnings count only paid bookings, passengers all confirmed ones.
	if got.TotalEarnings != 1000 {
		t.Errorf("expected projected earnings 1000, got %.2f", got.TotalEarnings)
	}
	if got.PassengerCount != 3 {
		t.Errorf("expected projected passenger count 3, got %d", got.PassengerCount)
	}
}
