package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Booking represents a passenger's claim on a set of seats for one
// occurrence of a trip. Once confirmed or paid the record is locked: seats
// and price can no longer change.
type Booking struct {
	ID            string
	BookingID     string
	PassengerID   string
	TripID        string // row id of the trip
	TripDate      time.Time
	NumPassengers int
	Price         float64
	IsConfirmed   bool
	IsPaid        bool
	CreatedAt     time.Time

	// Seats carries the reserved seats when the booking is loaded with
	// its associations.
	Seats []Seat
}

// Locked reports whether the booking may still be edited.
func (b *Booking) Locked() bool {
	return b.IsConfirmed || b.IsPaid
}

// SeatNumbers returns the seat numbers of the booking's reserved seats.
func (b *Booking) SeatNumbers() []string {
	numbers := make([]string, 0, len(b.Seats))
	for _, s := range b.Seats {
		numbers = append(numbers, s.SeatNumber)
	}
	return numbers
}

// NewBookingID generates a booking identifier from the route plus a random
// six digit suffix, e.g. BOK-KATPOK-482913. Collisions are possible and are
// handled by the caller.
func NewBookingID(fromLocation, toLocation string) string {
	from := strings.ToUpper(locationCode(fromLocation))
	to := strings.ToUpper(locationCode(toLocation))
	return fmt.Sprintf("BOK-%s%s-%06d", from, to, 100000+rand.Intn(900000))
}
