package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"sawari/internal/domain"
	"sawari/internal/redis"
	"sawari/internal/repository"
	"sawari/internal/repository/postgres"
)

// settlementLockTTL bounds how long a settlement may hold the fast-path
// lock before it expires on its own.
const settlementLockTTL = 30 * time.Second

// SettlementService closes out a completed trip's day: it freezes the
// confirmed and paid bookings into a daily earnings ledger entry, resets
// the vehicle's seat inventory and rolls the trip to the next day.
type SettlementService struct {
	db           *sql.DB
	locks        redis.LockStoreInterface
	cache        redis.CacheStoreInterface
	tripRepo     repository.TripRepository
	vehicleRepo  repository.VehicleRepository
	earningsRepo repository.EarningsRepository
}

// NewSettlementService creates a new SettlementService. locks and cache
// are optional; without them settlement still serializes on the trip row
// lock and the ledger's unique constraint.
func NewSettlementService(
	db *sql.DB,
	locks redis.LockStoreInterface,
	cache redis.CacheStoreInterface,
	tripRepo repository.TripRepository,
	vehicleRepo repository.VehicleRepository,
	earningsRepo repository.EarningsRepository,
) *SettlementService {
	return &SettlementService{
		db:           db,
		locks:        locks,
		cache:        cache,
		tripRepo:     tripRepo,
		vehicleRepo:  vehicleRepo,
		earningsRepo: earningsRepo,
	}
}

// Settle creates the daily earnings ledger entry for a completed trip.
// The whole transition commits atomically: ledger entry, frozen booking
// set, inventory reset, re-aggregated party totals and the trip's rollover
// to the next day.
func (s *SettlementService) Settle(ctx context.Context, actor domain.PartyRef, tripID string) (*domain.DailyEarnings, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if s.locks != nil {
		acquired, err := s.locks.AcquireSettlementLock(ctx, tripID, settlementLockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, ErrDuplicateSettlement
		}
		defer func() {
			if err := s.locks.ReleaseSettlementLock(context.WithoutCancel(ctx), tripID); err != nil {
				log.Printf("settlement lock release failed for trip %s: %v", tripID, err)
			}
		}()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txVehicleRepo := postgres.NewVehicleRepositoryWithTx(tx)
	txBookingRepo := postgres.NewBookingRepositoryWithTx(tx)
	txEarningsRepo := postgres.NewEarningsRepositoryWithTx(tx)

	var trip *domain.Trip
	trip, err = txTripRepo.GetByTripIDForUpdate(ctx, tripID)
	if err != nil {
		return nil, err
	}

	var vehicle *domain.Vehicle
	vehicle, err = txVehicleRepo.GetByID(ctx, trip.VehicleID)
	if err != nil {
		return nil, err
	}

	if !operatesVehicle(actor, vehicle) {
		err = ErrUnauthorized
		return nil, err
	}

	if !trip.IsCompleted {
		err = ErrTripNotCompleted
		return nil, err
	}

	var bookings []*domain.Booking
	bookings, err = txBookingRepo.ListSettleable(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		err = ErrNoBookingsToSettle
		return nil, err
	}

	// The settlement date is the latest trip date among the settleable
	// bookings.
	tripDate := bookings[0].TripDate
	for _, b := range bookings[1:] {
		if b.TripDate.After(tripDate) {
			tripDate = b.TripDate
		}
	}

	var exists bool
	exists, err = txEarningsRepo.ExistsForTripDate(ctx, trip.ID, tripDate)
	if err != nil {
		return nil, err
	}
	if exists {
		err = ErrDuplicateSettlement
		return nil, err
	}

	if !sameDate(tripDate, trip.TripDate()) {
		err = ErrDateMismatch
		return nil, err
	}

	earnings := &domain.DailyEarnings{
		ID:          uuid.New().String(),
		TripID:      trip.ID,
		TripDate:    tripDate,
		IsCompleted: true,
		CreatedAt:   time.Now(),
	}

	bookingRowIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if !sameDate(b.TripDate, tripDate) {
			continue
		}
		earnings.TotalEarnings += b.Price
		earnings.NumPassengers += b.NumPassengers
		earnings.BookingIDs = append(earnings.BookingIDs, b.BookingID)
		bookingRowIDs = append(bookingRowIDs, b.ID)
	}

	if err = txEarningsRepo.Create(ctx, earnings); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			err = ErrDuplicateSettlement
		}
		return nil, err
	}

	if err = txEarningsRepo.AddBookings(ctx, earnings.ID, bookingRowIDs); err != nil {
		return nil, err
	}

	if err = resetVehicleInventory(ctx, tx, trip.VehicleID); err != nil {
		return nil, err
	}

	// Party totals are recomputed from the ledger rather than
	// incremented, so they stay correct across repeated settlements.
	if err = postgres.NewOrganizationRepositoryWithTx(tx).RecalculateEarnings(ctx, trip.OrganizationID); err != nil {
		return nil, err
	}
	if vehicle.DriverID != "" {
		if err = postgres.NewDriverRepositoryWithTx(tx).RecalculateEarnings(ctx, vehicle.DriverID); err != nil {
			return nil, err
		}
	}

	// Roll the trip over to the next day with a clean slate.
	trip.StartDatetime = trip.StartDatetime.AddDate(0, 0, 1)
	trip.EndDatetime = trip.EndDatetime.AddDate(0, 0, 1)
	trip.IsCompleted = false
	trip.TotalEarnings = 0
	trip.PassengerCount = 0
	trip.LastUpdatedBy = actor.String()

	if err = txTripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.invalidateParties(ctx, trip.OrganizationID, vehicle.DriverID)

	return earnings, nil
}

// List retrieves the ledger entries visible to the acting party, newest
// first. Passengers have no ledger view.
func (s *SettlementService) List(ctx context.Context, actor domain.PartyRef) ([]*domain.DailyEarnings, error) {
	switch actor.Kind {
	case domain.PartyOrganization:
		return s.earningsRepo.ListByOrganization(ctx, actor.ID)
	case domain.PartyDriver:
		return s.earningsRepo.ListByDriver(ctx, actor.ID)
	default:
		return nil, ErrUnauthorized
	}
}

// invalidateParties drops the cached profiles whose totals the settlement
// changed. Best-effort.
func (s *SettlementService) invalidateParties(ctx context.Context, organizationID, driverID string) {
	if s.cache == nil {
		return
	}

	refs := []domain.PartyRef{{Kind: domain.PartyOrganization, ID: organizationID}}
	if driverID != "" {
		refs = append(refs, domain.PartyRef{Kind: domain.PartyDriver, ID: driverID})
	}

	for _, ref := range refs {
		if err := s.cache.InvalidateParty(ctx, ref); err != nil {
			log.Printf("party cache invalidation failed for %s: %v", ref, err)
		}
	}
}

// sameDate reports whether two instants fall on the same calendar date.
func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
