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
// BOOKING VALIDATION AND ROLE SCOPING
// ──────────────────────────────────────────────

func newBookingFixtures() (*MockTripRepository, *MockVehicleRepository, *MockBookingRepository, *service.BookingService) {
	tripRepo := NewMockTripRepository()
	vehicleRepo := NewMockVehicleRepository()
	bookingRepo := NewMockBookingRepository()
	bookingRepo.Trips = tripRepo
	bookingRepo.Vehicles = vehicleRepo

	svc := service.NewBookingService(nil, tripRepo, vehicleRepo, bookingRepo, nil)
	return tripRepo, vehicleRepo, bookingRepo, svc
}

func seedBooking(tripRepo *MockTripRepository, vehicleRepo *MockVehicleRepository, bookingRepo *MockBookingRepository) *domain.Booking {
	vehicleRepo.AddVehicle(fixtureVehicle())
	trip := fixtureTrip(time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC))
	tripRepo.AddTrip(trip)

	booking := &domain.Booking{
		ID:            "bk-row-1",
		BookingID:     "BOK-KATPOK-123456",
		PassengerID:   "pax-1",
		TripID:        trip.ID,
		TripDate:      trip.TripDate(),
		NumPassengers: 1,
		Price:         500,
		CreatedAt:     time.Now(),
	}
	bookingRepo.AddBooking(booking)
	return booking
}

func TestBookingCreate_OnlyPassengersMayBook(t *testing.T) {
	t.Parallel()

	_, _, _, svc := newBookingFixtures()

	actor := domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}
	_, err := svc.Create(context.Background(), actor, service.CreateBookingRequest{
		TripID:      "KATPOK20250114060000",
		SeatNumbers: []string{"S002"},
	})

	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestBookingCreate_RequiresSeats(t *testing.T) {
	t.Parallel()

	_, _, _, svc := newBookingFixtures()

	actor := domain.PartyRef{Kind: domain.PartyPassenger, ID: "pax-1"}
	_, err := svc.Create(context.Background(), actor, service.CreateBookingRequest{
		TripID: "KATPOK20250114060000",
	})

	if !errors.Is(err, service.ErrNoSeatsSelected) {
		t.Fatalf("expected ErrNoSeatsSelected, got %v", err)
	}
}

func TestBookingCreate_CompletedTripRejected(t *testing.T) {
	t.Parallel()

	tripRepo, _, _, svc := newBookingFixtures()
	trip := fixtureTrip(time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC))
	trip.IsCompleted = true
	tripRepo.AddTrip(trip)

	actor := domain.PartyRef{Kind: domain.PartyPassenger, ID: "pax-1"}
	_, err := svc.Create(context.Background(), actor, service.CreateBookingRequest{
		TripID:      trip.TripID,
		SeatNumbers: []string{"S002"},
	})

	if !errors.Is(err, service.ErrTripCompleted) {
		t.Fatalf("expected ErrTripCompleted, got %v", err)
	}
}

func TestBookingGet_OwnerAndOperatorsAllowed(t *testing.T) {
	t.Parallel()

	tripRepo, vehicleRepo, bookingRepo, svc := newBookingFixtures()
	booking := seedBooking(tripRepo, vehicleRepo, bookingRepo)

	allowed := []domain.PartyRef{
		{Kind: domain.PartyPassenger, ID: "pax-1"},
		{Kind: domain.PartyOrganization, ID: "org-1"},
		{Kind: domain.PartyDriver, ID: "drv-1"},
	}
	for _, actor := range allowed {
		if _, err := svc.Get(context.Background(), actor, booking.BookingID); err != nil {
			t.Errorf("expected %s to access the booking, got %v", actor, err)
		}
	}

	denied := []domain.PartyRef{
		{Kind: domain.PartyPassenger, ID: "pax-2"},
		{Kind: domain.PartyOrganization, ID: "other-org"},
		{Kind: domain.PartyDriver, ID: "drv-2"},
	}
	for _, actor := range denied {
		_, err := svc.Get(context.Background(), actor, booking.BookingID)
		if !errors.Is(err, service.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized for %s, got %v", actor, err)
		}
	}
}

func TestBookingList_ScopedByRole(t *testing.T) {
	t.Parallel()

	tripRepo, vehicleRepo, bookingRepo, svc := newBookingFixtures()
	seedBooking(tripRepo, vehicleRepo, bookingRepo)

	// A booking of another passenger on an unrelated trip.
	bookingRepo.AddBooking(&domain.Booking{
		ID: "bk-row-2", BookingID: "BOK-CHIBUT-999999",
		PassengerID: "pax-2", TripID: "trip-row-2",
	})

	cases := []struct {
		actor domain.PartyRef
		want  int
	}{
		{domain.PartyRef{Kind: domain.PartyPassenger, ID: "pax-1"}, 1},
		{domain.PartyRef{Kind: domain.PartyOrganization, ID: "org-1"}, 1},
		{domain.PartyRef{Kind: domain.PartyDriver, ID: "drv-1"}, 1},
		{domain.PartyRef{Kind: domain.PartyPassenger, ID: "pax-3"}, 0},
	}
	for _, tc := range cases {
		bookings, err := svc.List(context.Background(), tc.actor)
		if err != nil {
			t.Errorf("list for %s failed: %v", tc.actor, err)
			continue
		}
		if len(bookings) != tc.want {
			t.Errorf("expected %d bookings for %s, got %d", tc.want, tc.actor, len(bookings))
		}
	}
}
