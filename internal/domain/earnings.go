package domain

import "time"

// DailyEarnings is one append-only settlement record: the confirmed and paid
// bookings of a single (trip, date) pair frozen with their summed totals.
// At most one record exists per trip and date, and a record is never
// recomputed after creation.
type DailyEarnings struct {
	ID            string
	TripID        string // row id of the trip
	TripDate      time.Time
	TotalEarnings float64
	NumPassengers int
	IsCompleted   bool
	CreatedAt     time.Time

	// BookingIDs are the public booking ids frozen into this record.
	BookingIDs []string
}
