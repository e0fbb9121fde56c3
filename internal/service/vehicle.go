package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"sawari/internal/domain"
	"sawari/internal/repository"
	"sawari/internal/repository/postgres"
)

// VehicleService handles vehicle registration and seat-map operations.
type VehicleService struct {
	db          *sql.DB
	vehicleRepo repository.VehicleRepository
	seatRepo    repository.SeatRepository
	orgRepo     repository.OrganizationRepository
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(
	db *sql.DB,
	vehicleRepo repository.VehicleRepository,
	seatRepo repository.SeatRepository,
	orgRepo repository.OrganizationRepository,
) *VehicleService {
	return &VehicleService{
		db:          db,
		vehicleRepo: vehicleRepo,
		seatRepo:    seatRepo,
		orgRepo:     orgRepo,
	}
}

// RegisterVehicleRequest contains the parameters for registering a vehicle.
type RegisterVehicleRequest struct {
	VehicleType     domain.VehicleType
	CompanyMade     string
	Model           string
	Color           string
	SeatingCapacity int
	DriverID        string
}

// Register creates a vehicle with its full seat inventory. One seat per
// capacity unit is created; the first seat is reserved for the driver and
// starts occupied, so the available counter starts at capacity minus one.
func (s *VehicleService) Register(ctx context.Context, actor domain.PartyRef, req RegisterVehicleRequest) (*domain.Vehicle, error) {
	if actor.Kind != domain.PartyOrganization {
		return nil, ErrUnauthorized
	}

	if req.SeatingCapacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	organization, err := s.orgRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	vehicle := &domain.Vehicle{
		ID:                 uuid.New().String(),
		RegistrationNumber: domain.NewRegistrationNumber(organization.Name),
		OrganizationID:     organization.ID,
		DriverID:           req.DriverID,
		VehicleType:        req.VehicleType,
		CompanyMade:        req.CompanyMade,
		Model:              req.Model,
		Color:              req.Color,
		SeatingCapacity:    req.SeatingCapacity,
		AvailableSeat:      req.SeatingCapacity - 1,
	}

	seats := make([]*domain.Seat, req.SeatingCapacity)
	for i := range seats {
		seats[i] = &domain.Seat{
			ID:         uuid.New().String(),
			VehicleID:  vehicle.ID,
			SeatNumber: domain.SeatNumberFor(i + 1),
		}
	}
	// Driver seat.
	seats[0].IsOccupied = true
	seats[0].ReservedForDriver = true

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txVehicleRepo := postgres.NewVehicleRepositoryWithTx(tx)
	txSeatRepo := postgres.NewSeatRepositoryWithTx(tx)

	if err = txVehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	if err = txSeatRepo.CreateBulk(ctx, seats); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return vehicle, nil
}

// SeatMap returns the vehicle and its seats by registration number.
func (s *VehicleService) SeatMap(ctx context.Context, registrationNumber string) (*domain.Vehicle, []*domain.Seat, error) {
	vehicle, err := s.vehicleRepo.GetByRegistration(ctx, registrationNumber)
	if err != nil {
		return nil, nil, err
	}

	seats, err := s.seatRepo.ListByVehicle(ctx, vehicle.ID)
	if err != nil {
		return nil, nil, err
	}

	return vehicle, seats, nil
}

// ReserveConductorSeat flags a free seat as reserved for the conductor.
// Only the owning organization or the vehicle's driver may do this. The
// flag does not occupy the seat, so the availability counter is untouched.
func (s *VehicleService) ReserveConductorSeat(ctx context.Context, actor domain.PartyRef, registrationNumber, seatNumber string) error {
	vehicle, err := s.vehicleRepo.GetByRegistration(ctx, registrationNumber)
	if err != nil {
		return err
	}

	if !operatesVehicle(actor, vehicle) {
		return ErrUnauthorized
	}

	err = s.seatRepo.ReserveForConductor(ctx, vehicle.ID, seatNumber)
	if errors.Is(err, repository.ErrConflict) {
		return &SeatUnavailableError{SeatNumbers: []string{seatNumber}}
	}

	return err
}

// operatesVehicle reports whether the actor is the owning organization or
// the assigned driver of the vehicle.
func operatesVehicle(actor domain.PartyRef, vehicle *domain.Vehicle) bool {
	switch actor.Kind {
	case domain.PartyOrganization:
		return vehicle.OrganizationID == actor.ID
	case domain.PartyDriver:
		return vehicle.DriverID != "" && vehicle.DriverID == actor.ID
	default:
		return false
	}
}
