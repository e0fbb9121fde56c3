package domain

import (
	"strings"
	"time"
)

// DefaultTripDuration is applied when a trip is scheduled without an
// explicit end time.
const DefaultTripDuration = 7 * time.Hour

// Trip represents one recurring trip operated by an organization with
// exactly one vehicle. TotalEarnings and PassengerCount are informational
// projections recomputed from bookings; the daily earnings ledger is the
// authoritative record.
type Trip struct {
	ID             string
	TripID         string
	OrganizationID string
	VehicleID      string
	FromLocation   string
	ToLocation     string
	StartDatetime  time.Time
	EndDatetime    time.Time
	IsCompleted    bool
	TotalEarnings  float64
	PassengerCount int
	LastUpdatedBy  string

	// Price is the per-seat price attribute, stored one-to-one with
	// the trip.
	Price float64
}

// NewTripID generates a trip identifier from the route and the current time,
// e.g. KATPOK20250114153000.
func NewTripID(fromLocation, toLocation string, now time.Time) string {
	return strings.ToUpper(locationCode(fromLocation) + locationCode(toLocation) + now.Format("20060102150405"))
}

// TripDate returns the calendar date of the trip's scheduled start.
func (t *Trip) TripDate() time.Time {
	y, m, d := t.StartDatetime.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.StartDatetime.Location())
}

func locationCode(location string) string {
	location = strings.TrimSpace(location)
	if len(location) > 3 {
		location = location[:3]
	}
	return location
}
