package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"sawari/internal/domain"
	"sawari/internal/repository"
	"sawari/internal/repository/postgres"
)

// bookingIDAttempts bounds the retries when the random booking id suffix
// collides with an existing booking.
const bookingIDAttempts = 5

// BookingService implements the booking engine: creating, editing and
// cancelling seat reservations against a trip's vehicle.
type BookingService struct {
	db          *sql.DB
	tripRepo    repository.TripRepository
	vehicleRepo repository.VehicleRepository
	bookingRepo repository.BookingRepository

	// tickets is optional; when set, e-tickets are rendered and stored
	// on booking creation and on flag updates.
	tickets *TicketService
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	db *sql.DB,
	tripRepo repository.TripRepository,
	vehicleRepo repository.VehicleRepository,
	bookingRepo repository.BookingRepository,
	tickets *TicketService,
) *BookingService {
	return &BookingService{
		db:          db,
		tripRepo:    tripRepo,
		vehicleRepo: vehicleRepo,
		bookingRepo: bookingRepo,
		tickets:     tickets,
	}
}

// CreateBookingRequest contains the parameters for creating a booking.
type CreateBookingRequest struct {
	TripID      string
	SeatNumbers []string
}

// Create books the requested seats on the trip's vehicle for the acting
// passenger. Seat reservation, counter update and booking rows commit in
// one transaction, so a failure on any seat leaves nothing reserved.
func (s *BookingService) Create(ctx context.Context, actor domain.PartyRef, req CreateBookingRequest) (*domain.Booking, error) {
	if actor.Kind != domain.PartyPassenger {
		return nil, ErrUnauthorized
	}

	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	seatNumbers := dedupeSeatNumbers(req.SeatNumbers)
	if len(seatNumbers) == 0 {
		return nil, ErrNoSeatsSelected
	}

	trip, err := s.tripRepo.GetByTripID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if trip.IsCompleted {
		return nil, ErrTripCompleted
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

	var seats []*domain.Seat
	seats, err = reserveVehicleSeats(ctx, tx, trip.VehicleID, seatNumbers)
	if err != nil {
		return nil, err
	}

	txBookingRepo := postgres.NewBookingRepositoryWithTx(tx)

	var bookingID string
	bookingID, err = s.generateBookingID(ctx, txBookingRepo, trip)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:            uuid.New().String(),
		BookingID:     bookingID,
		PassengerID:   actor.ID,
		TripID:        trip.ID,
		TripDate:      trip.TripDate(),
		NumPassengers: len(seats),
		Price:         trip.Price * float64(len(seats)),
		CreatedAt:     time.Now(),
	}

	if err = txBookingRepo.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			err = ErrIDGenerationConflict
		}
		return nil, err
	}

	seatIDs := make([]string, len(seats))
	for i, seat := range seats {
		booking.Seats = append(booking.Seats, *seat)
		seatIDs[i] = seat.ID
	}

	if err = txBookingRepo.AddSeats(ctx, booking.ID, seatIDs); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.generateTicket(ctx, booking)

	return booking, nil
}

// generateBookingID draws random booking ids until one is free. The unique
// constraint on bookings remains the hard guarantee for the race where two
// transactions draw the same id between check and insert.
func (s *BookingService) generateBookingID(ctx context.Context, repo repository.BookingRepository, trip *domain.Trip) (string, error) {
	for attempt := 0; attempt < bookingIDAttempts; attempt++ {
		candidate := domain.NewBookingID(trip.FromLocation, trip.ToLocation)

		taken, err := repo.ExistsBookingID(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", ErrIDGenerationConflict
}

// Get retrieves a booking by public id. Passengers see their own bookings;
// the trip's organization and driver see bookings on their trips.
func (s *BookingService) Get(ctx context.Context, actor domain.PartyRef, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeBooking(ctx, actor, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

// List retrieves the bookings visible to the acting party, scoped by role.
func (s *BookingService) List(ctx context.Context, actor domain.PartyRef) ([]*domain.Booking, error) {
	switch actor.Kind {
	case domain.PartyPassenger:
		return s.bookingRepo.ListForPassenger(ctx, actor.ID)
	case domain.PartyOrganization:
		return s.bookingRepo.ListForOrganization(ctx, actor.ID)
	case domain.PartyDriver:
		return s.bookingRepo.ListForDriver(ctx, actor.ID)
	default:
		return nil, ErrUnauthorized
	}
}

// UpdateBookingRequest carries the editable booking flags. Nil leaves a
// flag unchanged.
type UpdateBookingRequest struct {
	IsConfirmed *bool
	IsPaid      *bool
}

// Update edits the confirmation and payment flags. A booking that is
// already confirmed or paid is locked and rejects further edits.
func (s *BookingService) Update(ctx context.Context, actor domain.PartyRef, bookingID string, req UpdateBookingRequest) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeBooking(ctx, actor, booking); err != nil {
		return nil, err
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

	txBookingRepo := postgres.NewBookingRepositoryWithTx(tx)

	booking, err = txBookingRepo.GetByBookingIDForUpdate(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Locked() {
		err = ErrBookingLocked
		return nil, err
	}

	if req.IsConfirmed != nil {
		booking.IsConfirmed = *req.IsConfirmed
	}
	if req.IsPaid != nil {
		booking.IsPaid = *req.IsPaid
	}

	if err = txBookingRepo.UpdateFlags(ctx, booking.ID, booking.IsConfirmed, booking.IsPaid); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.generateTicket(ctx, booking)

	return booking, nil
}

// Delete cancels a booking, releasing its seats and restoring the
// availability counter. Cancellation is allowed even for confirmed or paid
// bookings.
func (s *BookingService) Delete(ctx context.Context, actor domain.PartyRef, bookingID string) error {
	if bookingID == "" {
		return ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := s.authorizeBooking(ctx, actor, booking); err != nil {
		return err
	}

	trip, err := s.tripRepo.GetByID(ctx, booking.TripID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txBookingRepo := postgres.NewBookingRepositoryWithTx(tx)

	booking, err = txBookingRepo.GetByBookingIDForUpdate(ctx, bookingID)
	if err != nil {
		return err
	}

	seatIDs := make([]string, len(booking.Seats))
	for i, seat := range booking.Seats {
		seatIDs[i] = seat.ID
	}

	if err = releaseVehicleSeats(ctx, tx, trip.VehicleID, seatIDs); err != nil {
		return err
	}

	if err = txBookingRepo.Delete(ctx, booking.ID); err != nil {
		return err
	}

	return tx.Commit()
}

// authorizeBooking verifies that the actor may access the booking: the
// booking's passenger, the trip's organization, or the vehicle's driver.
func (s *BookingService) authorizeBooking(ctx context.Context, actor domain.PartyRef, booking *domain.Booking) error {
	switch actor.Kind {
	case domain.PartyPassenger:
		if booking.PassengerID == actor.ID {
			return nil
		}
	case domain.PartyOrganization, domain.PartyDriver:
		trip, err := s.tripRepo.GetByID(ctx, booking.TripID)
		if err != nil {
			return err
		}
		if actor.Kind == domain.PartyOrganization {
			if trip.OrganizationID == actor.ID {
				return nil
			}
			break
		}
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

// generateTicket renders and stores the e-ticket. Ticket storage is
// best-effort: the booking stands even when rendering fails.
func (s *BookingService) generateTicket(ctx context.Context, booking *domain.Booking) {
	if s.tickets == nil {
		return
	}

	if _, err := s.tickets.Generate(ctx, booking); err != nil {
		log.Printf("ticket generation failed for booking %s: %v", booking.BookingID, err)
	}
}

// dedupeSeatNumbers drops duplicate seat numbers preserving order.
func dedupeSeatNumbers(seatNumbers []string) []string {
	seen := make(map[string]struct{}, len(seatNumbers))
	out := make([]string, 0, len(seatNumbers))
	for _, n := range seatNumbers {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
