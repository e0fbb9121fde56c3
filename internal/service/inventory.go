package service

import (
	"context"
	"database/sql"
	"errors"

	"sawari/internal/domain"
	"sawari/internal/repository"
	"sawari/internal/repository/postgres"
)

// Seat inventory helpers. Every occupancy transition here runs inside the
// caller's transaction together with the matching counter update on the
// vehicle, so the two can never be observed inconsistent.

// reserveVehicleSeats locks the vehicle row, fails fast on insufficient
// availability, then reserves the requested seats and decrements the
// counter by the reserved amount.
func reserveVehicleSeats(ctx context.Context, tx *sql.Tx, vehicleID string, seatNumbers []string) ([]*domain.Seat, error) {
	vehicleRepo := postgres.NewVehicleRepositoryWithTx(tx)
	seatRepo := postgres.NewSeatRepositoryWithTx(tx)

	vehicle, err := vehicleRepo.GetByIDForUpdate(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if len(seatNumbers) > vehicle.AvailableSeat {
		return nil, ErrCapacityExceeded
	}

	seats, err := seatRepo.ReserveSeats(ctx, vehicleID, seatNumbers)
	if err != nil {
		var conflict *repository.SeatConflictError
		if errors.As(err, &conflict) {
			return nil, &SeatUnavailableError{SeatNumbers: conflict.SeatNumbers}
		}
		return nil, err
	}

	if err := vehicleRepo.AdjustAvailableSeat(ctx, vehicleID, -len(seats)); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCapacityExceeded
		}
		return nil, err
	}

	return seats, nil
}

// releaseVehicleSeats frees the given seats and restores the counter by
// exactly the number of seats that were still occupied. Idempotent.
func releaseVehicleSeats(ctx context.Context, tx *sql.Tx, vehicleID string, seatIDs []string) error {
	vehicleRepo := postgres.NewVehicleRepositoryWithTx(tx)
	seatRepo := postgres.NewSeatRepositoryWithTx(tx)

	if _, err := vehicleRepo.GetByIDForUpdate(ctx, vehicleID); err != nil {
		return err
	}

	released, err := seatRepo.ReleaseSeats(ctx, seatIDs)
	if err != nil {
		return err
	}
	if released == 0 {
		return nil
	}

	return vehicleRepo.AdjustAvailableSeat(ctx, vehicleID, released)
}

// resetVehicleInventory frees every seat on the vehicle and revalidates the
// counter against the actual free-seat count. Used at settlement for a
// fresh slate.
func resetVehicleInventory(ctx context.Context, tx *sql.Tx, vehicleID string) error {
	vehicleRepo := postgres.NewVehicleRepositoryWithTx(tx)
	seatRepo := postgres.NewSeatRepositoryWithTx(tx)

	if _, err := vehicleRepo.GetByIDForUpdate(ctx, vehicleID); err != nil {
		return err
	}

	if err := seatRepo.ResetAll(ctx, vehicleID); err != nil {
		return err
	}

	return vehicleRepo.ResetAvailableSeat(ctx, vehicleID)
}
