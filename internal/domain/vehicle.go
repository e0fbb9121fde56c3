package domain

import (
	"fmt"
	"math/rand"
	"strings"
)

// VehicleType represents the kind of vehicle.
type VehicleType string

const (
	VehicleTypeBus   VehicleType = "bus"
	VehicleTypeJeep  VehicleType = "jeep"
	VehicleTypeHilux VehicleType = "hilux"
	VehicleTypeCar   VehicleType = "car"
	VehicleTypeBike  VehicleType = "bike"
)

// Vehicle represents a vehicle owned by an organization. AvailableSeat is a
// derived counter: outside an in-flight transaction it always equals
// SeatingCapacity minus the number of occupied seats.
type Vehicle struct {
	ID                 string
	RegistrationNumber string
	OrganizationID     string
	DriverID           string // empty when no driver is assigned
	VehicleType        VehicleType
	CompanyMade        string
	Model              string
	Color              string
	SeatingCapacity    int
	AvailableSeat      int
}

// Seat represents one seat on a vehicle. The driver seat is created occupied
// with ReservedForDriver set; both reservation flags are immutable after
// creation except for conductor reservation of a free seat.
type Seat struct {
	ID                   string
	VehicleID            string
	SeatNumber           string
	IsOccupied           bool
	ReservedForDriver    bool
	ReservedForConductor bool
}

// SeatNumberFor returns the canonical seat number for the given 1-based
// position, e.g. S001.
func SeatNumberFor(position int) string {
	return fmt.Sprintf("S%03d", position)
}

const registrationAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewRegistrationNumber generates a registration number for a vehicle owned
// by the named organization, e.g. REG-SAJ-7KQ2M9XT.
func NewRegistrationNumber(organizationName string) string {
	prefix := strings.ToUpper(organizationName)
	prefix = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, prefix)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	if prefix == "" {
		prefix = "VEH"
	}

	suffix := make([]byte, 8)
	for i := range suffix {
		suffix[i] = registrationAlphabet[rand.Intn(len(registrationAlphabet))]
	}

	return fmt.Sprintf("REG-%s-%s", prefix, suffix)
}
