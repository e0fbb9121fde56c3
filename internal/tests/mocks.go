package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"sawari/internal/domain"
	"sawari/internal/redis"
	"sawari/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK ORGANIZATION REPOSITORY
// ──────────────────────────────────────────────

// MockOrganizationRepository is a mock implementation of
// OrganizationRepository.
type MockOrganizationRepository struct {
	mu            sync.RWMutex
	organizations map[string]*domain.Organization

	// Counters for verification
	RecalcCallCount int32

	// Error injection
	CreateError error
	RecalcError error
}

// NewMockOrganizationRepository creates a new mock organization repository.
func NewMockOrganizationRepository() *MockOrganizationRepository {
	return &MockOrganizationRepository{
		organizations: make(map[string]*domain.Organization),
	}
}

// AddOrganization adds an organization to the mock repository.
func (m *MockOrganizationRepository) AddOrganization(org *domain.Organization) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.organizations[org.ID] = org
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.organizations[org.ID] = org
	return nil
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.organizations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *org
	return &copy, nil
}

func (m *MockOrganizationRepository) RecalculateEarnings(ctx context.Context, id string) error {
	atomic.AddInt32(&m.RecalcCallCount, 1)
	if m.RecalcError != nil {
		return m.RecalcError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.organizations[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	RecalcCallCount int32

	// Error injection
	CreateError error
	RecalcError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) RecalculateEarnings(ctx context.Context, id string) error {
	atomic.AddInt32(&m.RecalcCallCount, 1)
	if m.RecalcError != nil {
		return m.RecalcError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.drivers[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK PASSENGER REPOSITORY
// ──────────────────────────────────────────────

// MockPassengerRepository is a mock implementation of PassengerRepository.
type MockPassengerRepository struct {
	mu         sync.RWMutex
	passengers map[string]*domain.Passenger
}

// NewMockPassengerRepository creates a new mock passenger repository.
func NewMockPassengerRepository() *MockPassengerRepository {
	return &MockPassengerRepository{
		passengers: make(map[string]*domain.Passenger),
	}
}

// AddPassenger adds a passenger to the mock repository.
func (m *MockPassengerRepository) AddPassenger(passenger *domain.Passenger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers[passenger.ID] = passenger
}

func (m *MockPassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers[passenger.ID] = passenger
	return nil
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	passenger, ok := m.passengers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *passenger
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	// Seats, when set, is consulted by ResetAvailableSeat to recompute
	// the counter from actual occupancy.
	Seats *MockSeatRepository

	// Counters for verification
	AdjustCallCount int32
	ResetCallCount  int32

	// Error injection
	CreateError error
	AdjustError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

// GetVehicle returns the stored vehicle for test assertions.
func (m *MockVehicleRepository) GetVehicle(id string) *domain.Vehicle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vehicles[id]
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.vehicles {
		if v.RegistrationNumber == vehicle.RegistrationNumber {
			return repository.ErrDuplicate
		}
		if vehicle.DriverID != "" && v.DriverID == vehicle.DriverID {
			return repository.ErrDuplicate
		}
	}
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) GetByRegistration(ctx context.Context, registrationNumber string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.vehicles {
		if v.RegistrationNumber == registrationNumber {
			copy := *v
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockVehicleRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Vehicle, error) {
	return m.GetByID(ctx, id)
}

func (m *MockVehicleRepository) AdjustAvailableSeat(ctx context.Context, id string, delta int) error {
	atomic.AddInt32(&m.AdjustCallCount, 1)
	if m.AdjustError != nil {
		return m.AdjustError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	next := vehicle.AvailableSeat + delta
	if next < 0 || next > vehicle.SeatingCapacity {
		return repository.ErrConflict
	}
	vehicle.AvailableSeat = next
	return nil
}

func (m *MockVehicleRepository) ResetAvailableSeat(ctx context.Context, id string) error {
	atomic.AddInt32(&m.ResetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	occupied := 0
	if m.Seats != nil {
		occupied, _ = m.Seats.CountOccupied(ctx, id)
	}
	vehicle.AvailableSeat = vehicle.SeatingCapacity - occupied
	return nil
}

func (m *MockVehicleRepository) ListByOrganization(ctx context.Context, organizationID string) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Vehicle
	for _, v := range m.vehicles {
		if v.OrganizationID == organizationID {
			copy := *v
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RegistrationNumber < result[j].RegistrationNumber
	})
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK SEAT REPOSITORY
// ──────────────────────────────────────────────

// MockSeatRepository is a mock implementation of SeatRepository.
type MockSeatRepository struct {
	mu    sync.RWMutex
	seats map[string]*domain.Seat
}

// NewMockSeatRepository creates a new mock seat repository.
func NewMockSeatRepository() *MockSeatRepository {
	return &MockSeatRepository{
		seats: make(map[string]*domain.Seat),
	}
}

// AddSeat adds a seat to the mock repository.
func (m *MockSeatRepository) AddSeat(seat *domain.Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats[seat.ID] = seat
}

// GetSeat returns the stored seat for test assertions.
func (m *MockSeatRepository) GetSeat(id string) *domain.Seat {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seats[id]
}

func (m *MockSeatRepository) CreateBulk(ctx context.Context, seats []*domain.Seat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, seat := range seats {
		m.seats[seat.ID] = seat
	}
	return nil
}

func (m *MockSeatRepository) ListByVehicle(ctx context.Context, vehicleID string) ([]*domain.Seat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Seat
	for _, seat := range m.seats {
		if seat.VehicleID == vehicleID {
			copy := *seat
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SeatNumber < result[j].SeatNumber
	})
	return result, nil
}

func (m *MockSeatRepository) ReserveSeats(ctx context.Context, vehicleID string, seatNumbers []string) ([]*domain.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byNumber := make(map[string]*domain.Seat)
	for _, seat := range m.seats {
		if seat.VehicleID == vehicleID {
			byNumber[seat.SeatNumber] = seat
		}
	}

	var conflicts []string
	var picked []*domain.Seat
	for _, number := range seatNumbers {
		seat, ok := byNumber[number]
		if !ok || seat.IsOccupied || seat.ReservedForDriver {
			conflicts = append(conflicts, number)
			continue
		}
		picked = append(picked, seat)
	}
	if len(conflicts) > 0 {
		return nil, &repository.SeatConflictError{SeatNumbers: conflicts}
	}

	result := make([]*domain.Seat, 0, len(picked))
	for _, seat := range picked {
		seat.IsOccupied = true
		copy := *seat
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockSeatRepository) ReleaseSeats(ctx context.Context, seatIDs []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	released := 0
	for _, id := range seatIDs {
		seat, ok := m.seats[id]
		if ok && seat.IsOccupied {
			seat.IsOccupied = false
			released++
		}
	}
	return released, nil
}

func (m *MockSeatRepository) ResetAll(ctx context.Context, vehicleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, seat := range m.seats {
		if seat.VehicleID == vehicleID {
			seat.IsOccupied = false
		}
	}
	return nil
}

func (m *MockSeatRepository) ReserveForConductor(ctx context.Context, vehicleID, seatNumber string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, seat := range m.seats {
		if seat.VehicleID == vehicleID && seat.SeatNumber == seatNumber {
			if seat.IsOccupied || seat.ReservedForDriver {
				return repository.ErrConflict
			}
			seat.ReservedForConductor = true
			return nil
		}
	}
	return repository.ErrConflict
}

func (m *MockSeatRepository) CountOccupied(ctx context.Context, vehicleID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, seat := range m.seats {
		if seat.VehicleID == vehicleID && seat.IsOccupied {
			count++
		}
	}
	return count, nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

// GetTrip returns the stored trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, trip := range m.trips {
		if trip.TripID == tripID {
			copy := *trip
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTripRepository) GetByTripIDForUpdate(ctx context.Context, tripID string) (*domain.Trip, error) {
	return m.GetByTripID(ctx, tripID)
}

func (m *MockTripRepository) GetByVehicleID(ctx context.Context, vehicleID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, trip := range m.trips {
		if trip.VehicleID == vehicleID {
			copy := *trip
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.trips[trip.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.StartDatetime = trip.StartDatetime
	stored.EndDatetime = trip.EndDatetime
	stored.IsCompleted = trip.IsCompleted
	stored.TotalEarnings = trip.TotalEarnings
	stored.PassengerCount = trip.PassengerCount
	stored.LastUpdatedBy = trip.LastUpdatedBy
	return nil
}

func (m *MockTripRepository) ListByOrganization(ctx context.Context, organizationID string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, trip := range m.trips {
		if trip.OrganizationID == organizationID {
			copy := *trip
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TripID < result[j].TripID
	})
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Trips, when set, is consulted to scope the organization and
	// driver listings.
	Trips    *MockTripRepository
	Vehicles *MockVehicleRepository
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

// CountBookings returns the number of stored bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.BookingID == booking.BookingID {
			return repository.ErrDuplicate
		}
	}
	m.bookings[booking.ID] = booking
	return nil
}

func (m *MockBookingRepository) AddSeats(ctx context.Context, bookingRowID string, seatIDs []string) error {
	return nil
}

func (m *MockBookingRepository) ExistsBookingID(ctx context.Context, bookingID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockBookingRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.BookingID == bookingID {
			copy := *b
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockBookingRepository) GetByBookingIDForUpdate(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return m.GetByBookingID(ctx, bookingID)
}

func (m *MockBookingRepository) UpdateFlags(ctx context.Context, rowID string, isConfirmed, isPaid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[rowID]
	if !ok {
		return repository.ErrNotFound
	}
	booking.IsConfirmed = isConfirmed
	booking.IsPaid = isPaid
	return nil
}

func (m *MockBookingRepository) Delete(ctx context.Context, rowID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[rowID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.bookings, rowID)
	return nil
}

func (m *MockBookingRepository) ListSettleable(ctx context.Context, tripRowID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.TripID == tripRowID && b.IsConfirmed && b.IsPaid {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockBookingRepository) ListForPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.PassengerID == passengerID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) ListForOrganization(ctx context.Context, organizationID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if m.Trips == nil {
			continue
		}
		trip, err := m.Trips.GetByID(ctx, b.TripID)
		if err != nil {
			continue
		}
		if trip.OrganizationID == organizationID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) ListForDriver(ctx context.Context, driverID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if m.Trips == nil || m.Vehicles == nil {
			continue
		}
		trip, err := m.Trips.GetByID(ctx, b.TripID)
		if err != nil {
			continue
		}
		vehicle, err := m.Vehicles.GetByID(ctx, trip.VehicleID)
		if err != nil {
			continue
		}
		if vehicle.DriverID == driverID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) EarningsProjection(ctx context.Context, tripRowID string) (float64, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total float64
	var passengers int
	for _, b := range m.bookings {
		if b.TripID != tripRowID {
			continue
		}
		if b.IsConfirmed && b.IsPaid {
			total += b.Price
		}
		if b.IsConfirmed {
			passengers += b.NumPassengers
		}
	}
	return total, passengers, nil
}

// ──────────────────────────────────────────────
// MOCK EARNINGS REPOSITORY
// ──────────────────────────────────────────────

// MockEarningsRepository is a mock implementation of EarningsRepository.
type MockEarningsRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.DailyEarnings

	// Trips, when set, is consulted to scope the organization and
	// driver listings.
	Trips    *MockTripRepository
	Vehicles *MockVehicleRepository

	// Error injection
	CreateError error
}

// NewMockEarningsRepository creates a new mock earnings repository.
func NewMockEarningsRepository() *MockEarningsRepository {
	return &MockEarningsRepository{
		entries: make(map[string]*domain.DailyEarnings),
	}
}

// AddEntry adds a ledger entry to the mock repository.
func (m *MockEarningsRepository) AddEntry(entry *domain.DailyEarnings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
}

// CountEntries returns the number of stored ledger entries.
func (m *MockEarningsRepository) CountEntries() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MockEarningsRepository) Create(ctx context.Context, earnings *domain.DailyEarnings) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.TripID == earnings.TripID && sameDay(e.TripDate, earnings.TripDate) {
			return repository.ErrDuplicate
		}
	}
	m.entries[earnings.ID] = earnings
	return nil
}

func (m *MockEarningsRepository) AddBookings(ctx context.Context, earningsID string, bookingRowIDs []string) error {
	return nil
}

func (m *MockEarningsRepository) ExistsForTripDate(ctx context.Context, tripRowID string, tripDate time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.TripID == tripRowID && sameDay(e.TripDate, tripDate) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockEarningsRepository) ListByOrganization(ctx context.Context, organizationID string) ([]*domain.DailyEarnings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.DailyEarnings
	for _, e := range m.entries {
		if m.Trips == nil {
			continue
		}
		trip, err := m.Trips.GetByID(ctx, e.TripID)
		if err != nil {
			continue
		}
		if trip.OrganizationID == organizationID {
			copy := *e
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockEarningsRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.DailyEarnings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.DailyEarnings
	for _, e := range m.entries {
		if m.Trips == nil || m.Vehicles == nil {
			continue
		}
		trip, err := m.Trips.GetByID(ctx, e.TripID)
		if err != nil {
			continue
		}
		vehicle, err := m.Vehicles.GetByID(ctx, trip.VehicleID)
		if err != nil {
			continue
		}
		if vehicle.DriverID == driverID {
			copy := *e
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of the settlement lock store.
type MockLockStore struct {
	mu   sync.Mutex
	held map[string]bool

	// Denied forces every acquisition to fail.
	Denied bool

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]bool)}
}

func (m *MockLockStore) AcquireSettlementLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.Denied {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[tripID] {
		return false, nil
	}
	m.held[tripID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseSettlementLock(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, tripID)
	return nil
}

// MockCacheStore is a mock implementation of the party profile cache.
type MockCacheStore struct {
	mu      sync.RWMutex
	parties map[string]*redis.CachedParty

	// Counters for verification
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{parties: make(map[string]*redis.CachedParty)}
}

func (m *MockCacheStore) GetParty(ctx context.Context, ref domain.PartyRef) (*redis.CachedParty, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	party, ok := m.parties[ref.String()]
	if !ok {
		return nil, nil
	}
	copy := *party
	return &copy, nil
}

func (m *MockCacheStore) SetParty(ctx context.Context, ref domain.PartyRef, party *redis.CachedParty) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *party
	m.parties[ref.String()] = &copy
	return nil
}

func (m *MockCacheStore) InvalidateParty(ctx context.Context, ref domain.PartyRef) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.parties, ref.String())
	return nil
}

// ──────────────────────────────────────────────
// MEMORY BLOB STORE
// ──────────────────────────────────────────────

// MemoryBlobStore is an in-memory blob store for ticket tests.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore creates a new in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[path] = stored
	return "memory://" + path, nil
}

func (m *MemoryBlobStore) Get(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[path]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
