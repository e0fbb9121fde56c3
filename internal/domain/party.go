package domain

import "fmt"

// PartyKind identifies the role of an acting party.
type PartyKind string

const (
	PartyOrganization PartyKind = "ORGANIZATION"
	PartyDriver       PartyKind = "DRIVER"
	PartyPassenger    PartyKind = "PASSENGER"
)

// PartyRef identifies one party of a given kind. It replaces the
// polymorphic actor reference: callers always carry an explicit kind
// next to the id, and lookups are dispatched per kind.
type PartyRef struct {
	Kind PartyKind
	ID   string
}

func (p PartyRef) String() string {
	return fmt.Sprintf("%s:%s", p.Kind, p.ID)
}

// Organization owns vehicles and trips.
type Organization struct {
	ID            string
	Name          string
	TotalEarnings float64
	NoOfTrips     int
}

// Driver operates at most one vehicle for an organization.
type Driver struct {
	ID             string
	Name           string
	LicenseNumber  string
	OrganizationID string
	TotalEarnings  float64
	NoOfTrips      int
}

// Passenger books seats on trips.
type Passenger struct {
	ID    string
	Name  string
	Phone string
}
