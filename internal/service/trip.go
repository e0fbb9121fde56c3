package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"sawari/internal/domain"
	"sawari/internal/repository"
	"sawari/internal/repository/postgres"
)

// TripService handles trip scheduling and lifecycle transitions. Settlement
// lives in SettlementService.
type TripService struct {
	db          *sql.DB
	tripRepo    repository.TripRepository
	vehicleRepo repository.VehicleRepository
	bookingRepo repository.BookingRepository
}

// NewTripService creates a new TripService.
func NewTripService(
	db *sql.DB,
	tripRepo repository.TripRepository,
	vehicleRepo repository.VehicleRepository,
	bookingRepo repository.BookingRepository,
) *TripService {
	return &TripService{
		db:          db,
		tripRepo:    tripRepo,
		vehicleRepo: vehicleRepo,
		bookingRepo: bookingRepo,
	}
}

// ScheduleTripRequest contains the parameters for scheduling a trip.
type ScheduleTripRequest struct {
	VehicleRegistration string
	FromLocation        string
	ToLocation          string
	StartDatetime       time.Time
	// EndDatetime is optional; when zero the default trip duration is
	// applied to the start.
	EndDatetime time.Time
	Price       float64
}

// Schedule creates a recurring trip on one of the organization's vehicles.
// A vehicle operates at most one trip.
func (s *TripService) Schedule(ctx context.Context, actor domain.PartyRef, req ScheduleTripRequest) (*domain.Trip, error) {
	if actor.Kind != domain.PartyOrganization {
		return nil, ErrUnauthorized
	}

	if req.Price < 0 {
		return nil, ErrInvalidPrice
	}

	vehicle, err := s.vehicleRepo.GetByRegistration(ctx, req.VehicleRegistration)
	if err != nil {
		return nil, err
	}

	if vehicle.OrganizationID != actor.ID {
		return nil, ErrUnauthorized
	}

	if _, err := s.tripRepo.GetByVehicleID(ctx, vehicle.ID); err == nil {
		return nil, ErrVehicleHasTrip
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	end := req.EndDatetime
	if end.IsZero() {
		end = req.StartDatetime.Add(domain.DefaultTripDuration)
	}

	trip := &domain.Trip{
		ID:             uuid.New().String(),
		TripID:         domain.NewTripID(req.FromLocation, req.ToLocation, time.Now()),
		OrganizationID: actor.ID,
		VehicleID:      vehicle.ID,
		FromLocation:   req.FromLocation,
		ToLocation:     req.ToLocation,
		StartDatetime:  req.StartDatetime,
		EndDatetime:    end,
		LastUpdatedBy:  actor.String(),
		Price:          req.Price,
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

	if err = postgres.NewTripRepositoryWithTx(tx).Create(ctx, trip); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return trip, nil
}

// Get retrieves a trip by public id with its informational earnings
// projection refreshed from current bookings.
func (s *TripService) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	totalEarnings, passengerCount, err := s.bookingRepo.EarningsProjection(ctx, trip.ID)
	if err != nil {
		return nil, err
	}

	// Read-time projection; the ledger is the authoritative record.
	trip.TotalEarnings = totalEarnings
	trip.PassengerCount = passengerCount

	return trip, nil
}

// List retrieves the trips of the acting organization.
func (s *TripService) List(ctx context.Context, actor domain.PartyRef) ([]*domain.Trip, error) {
	if actor.Kind != domain.PartyOrganization {
		return nil, ErrUnauthorized
	}

	return s.tripRepo.ListByOrganization(ctx, actor.ID)
}

// MarkComplete flags a trip as completed, making it eligible for
// settlement. Only the operating organization or the vehicle's driver may
// complete a trip. Completing an already completed trip is a no-op.
func (s *TripService) MarkComplete(ctx context.Context, actor domain.PartyRef, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeOperator(ctx, actor, trip); err != nil {
		return nil, err
	}

	if trip.IsCompleted {
		return trip, nil
	}

	trip.IsCompleted = true
	trip.LastUpdatedBy = actor.String()

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	return trip, nil
}

// authorizeOperator verifies that the actor operates the trip: the owning
// organization or the driver assigned to the trip's vehicle.
func (s *TripService) authorizeOperator(ctx context.Context, actor domain.PartyRef, trip *domain.Trip) error {
	switch actor.Kind {
	case domain.PartyOrganization:
		if trip.OrganizationID == actor.ID {
			return nil
		}
	case domain.PartyDriver:
		vehicle, err := s.vehicleRepo.GetByID(ctx, trip.VehicleID)
		if err != nil {
			return err
		}
		if vehicle.DriverID != "" && vehicle.DriverID == actor.ID {
			return nil
		}
	}

	return ErrUnauthorized
}
