package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"sawari/internal/domain"
	"sawari/internal/repository"
)

// ──────────────────────────────────────────────
// SEAT INVENTORY AND AVAILABILITY COUNTER
// ──────────────────────────────────────────────

func TestConcurrentSeatReservation_SingleWinner(t *testing.T) {
	t.Parallel()

	seatRepo := NewMockSeatRepository()
	seatRepo.AddSeat(&domain.Seat{ID: "seat-2", VehicleID: "veh-1", SeatNumber: "S002"})

	const contenders = 8
	var winners int32
	var conflicts int32

	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := seatRepo.ReserveSeats(context.Background(), "veh-1", []string{"S002"})
			switch {
			case err == nil:
				atomic.AddInt32(&winners, 1)
			case errors.Is(err, repository.ErrSeatConflict):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("expected exactly one winner for a contested seat, got %d", winners)
	}
	if conflicts != contenders-1 {
		t.Errorf("expected %d conflicts, got %d", contenders-1, conflicts)
	}
}

func TestConcurrentCounterDecrement_NeverGoesNegative(t *testing.T) {
	t.Parallel()

	vehicleRepo := NewMockVehicleRepository()
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:              "veh-1",
		SeatingCapacity: 10,
		AvailableSeat:   3,
	})

	const contenders = 10
	var granted int32
	var rejected int32

	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := vehicleRepo.AdjustAvailableSeat(context.Background(), "veh-1", -1)
			switch {
			case err == nil:
				atomic.AddInt32(&granted, 1)
			case errors.Is(err, repository.ErrConflict):
				atomic.AddInt32(&rejected, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if granted != 3 {
		t.Errorf("expected the remaining 3 seats to be granted, got %d", granted)
	}
	if rejected != contenders-3 {
		t.Errorf("expected %d rejections, got %d", contenders-3, rejected)
	}

	vehicle, err := vehicleRepo.GetByID(context.Background(), "veh-1")
	if err != nil {
		t.Fatalf("vehicle lookup failed: %v", err)
	}
	if vehicle.AvailableSeat != 0 {
		t.Errorf("expected the counter drained to 0, got %d", vehicle.AvailableSeat)
	}
}

func TestCounterIncrementBoundedByCapacity(t *testing.T) {
	t.Parallel()

	vehicleRepo := NewMockVehicleRepository()
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:              "veh-1",
		SeatingCapacity: 10,
		AvailableSeat:   9,
	})

	err := vehicleRepo.AdjustAvailableSeat(context.Background(), "veh-1", 2)
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected an over-capacity increment to be rejected, got %v", err)
	}

	vehicle, _ := vehicleRepo.GetByID(context.Background(), "veh-1")
	if vehicle.AvailableSeat != 9 {
		t.Errorf("a rejected adjustment must not move the counter, got %d", vehicle.AvailableSeat)
	}
}

func TestReleaseThenRebookSameSeats(t *testing.T) {
	t.Parallel()

	seatRepo := NewMockSeatRepository()
	seatRepo.AddSeat(&domain.Seat{ID: "seat-2", VehicleID: "veh-1", SeatNumber: "S002"})
	seatRepo.AddSeat(&domain.Seat{ID: "seat-3", VehicleID: "veh-1", SeatNumber: "S003"})

	reserved, err := seatRepo.ReserveSeats(context.Background(), "veh-1", []string{"S002", "S003"})
	if err != nil {
		t.Fatalf("initial reservation failed: %v", err)
	}

	ids := make([]string, 0, len(reserved))
	for _, seat := range reserved {
		ids = append(ids, seat.ID)
	}
	released, err := seatRepo.ReleaseSeats(context.Background(), ids)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if released != 2 {
		t.Fatalf("expected 2 seats released, got %d", released)
	}

	if _, err := seatRepo.ReserveSeats(context.Background(), "veh-1", []string{"S002", "S003"}); err != nil {
		t.Fatalf("rebooking released seats must succeed, got %v", err)
	}
}

func TestResetAvailableSeatHealsDrift(t *testing.T) {
	t.Parallel()

	seatRepo := NewMockSeatRepository()
	seatRepo.AddSeat(&domain.Seat{ID: "seat-1", VehicleID: "veh-1", SeatNumber: "S001", IsOccupied: true, ReservedForDriver: true})
	seatRepo.AddSeat(&domain.Seat{ID: "seat-2", VehicleID: "veh-1", SeatNumber: "S002"})

	vehicleRepo := NewMockVehicleRepository()
	vehicleRepo.Seats = seatRepo
	vehicleRepo.AddVehicle(&domain.Vehicle{
		ID:              "veh-1",
		SeatingCapacity: 2,
		AvailableSeat:   0, // drifted: only the driver seat is occupied
	})

	if err := vehicleRepo.ResetAvailableSeat(context.Background(), "veh-1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	vehicle, _ := vehicleRepo.GetByID(context.Background(), "veh-1")
	if vehicle.AvailableSeat != 1 {
		t.Errorf("expected the counter recomputed from occupancy to 1, got %d", vehicle.AvailableSeat)
	}
}
