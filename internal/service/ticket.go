package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"sawari/internal/domain"
	"sawari/internal/repository"
	"sawari/internal/storage"
)

// TicketData carries everything the renderer needs for one booking.
type TicketData struct {
	OrganizationName string
	BookingID        string
	BookingDatetime  time.Time
	PassengerName    string
	FromLocation     string
	ToLocation       string
	NumPassengers    int
	SeatNumbers      []string
	PricePerPerson   float64
	TotalPrice       float64
	TripStart        time.Time
	DriverName       string
	VehicleMake      string
	VehicleModel     string
	VehicleColor     string
	VehiclePlate     string
	IsConfirmed      bool
	IsPaid           bool
	IssuedAt         time.Time
}

// TicketService renders booking tickets and persists them through the blob
// store. Rendering is best effort at the booking boundary: a failed write
// never blocks the booking itself.
type TicketService struct {
	blobs         storage.BlobStore
	tripRepo      repository.TripRepository
	vehicleRepo   repository.VehicleRepository
	passengerRepo repository.PassengerRepository
	driverRepo    repository.DriverRepository
	orgRepo       repository.OrganizationRepository
}

// NewTicketService creates a new TicketService.
func NewTicketService(
	blobs storage.BlobStore,
	tripRepo repository.TripRepository,
	vehicleRepo repository.VehicleRepository,
	passengerRepo repository.PassengerRepository,
	driverRepo repository.DriverRepository,
	orgRepo repository.OrganizationRepository,
) *TicketService {
	return &TicketService{
		blobs:         blobs,
		tripRepo:      tripRepo,
		vehicleRepo:   vehicleRepo,
		passengerRepo: passengerRepo,
		driverRepo:    driverRepo,
		orgRepo:       orgRepo,
	}
}

// TicketPath returns the blob path for a booking's text ticket.
func TicketPath(bookingID string) string {
	return fmt.Sprintf("tickets/%s.txt", bookingID)
}

// Generate renders the text ticket for a booking and stores it, overwriting
// any prior artifact for the same booking id.
func (s *TicketService) Generate(ctx context.Context, booking *domain.Booking) (string, error) {
	data, err := s.buildData(ctx, booking)
	if err != nil {
		return "", err
	}

	content := RenderText(data)
	return s.blobs.Put(ctx, TicketPath(booking.BookingID), []byte(content))
}

// TicketText returns the stored text ticket for a booking, rendering it
// fresh when no stored artifact exists.
func (s *TicketService) TicketText(ctx context.Context, booking *domain.Booking) ([]byte, error) {
	if content, err := s.blobs.Get(ctx, TicketPath(booking.BookingID)); err == nil {
		return content, nil
	}

	data, err := s.buildData(ctx, booking)
	if err != nil {
		return nil, err
	}

	return []byte(RenderText(data)), nil
}

// TicketPDF renders the PDF rendition of a booking's ticket.
func (s *TicketService) TicketPDF(ctx context.Context, booking *domain.Booking) ([]byte, error) {
	data, err := s.buildData(ctx, booking)
	if err != nil {
		return nil, err
	}

	return RenderPDF(data)
}

func (s *TicketService) buildData(ctx context.Context, booking *domain.Booking) (TicketData, error) {
	var data TicketData

	trip, err := s.tripRepo.GetByID(ctx, booking.TripID)
	if err != nil {
		return data, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, trip.VehicleID)
	if err != nil {
		return data, err
	}

	passenger, err := s.passengerRepo.GetByID(ctx, booking.PassengerID)
	if err != nil {
		return data, err
	}

	organization, err := s.orgRepo.GetByID(ctx, trip.OrganizationID)
	if err != nil {
		return data, err
	}

	driverName := ""
	if vehicle.DriverID != "" {
		if driver, err := s.driverRepo.GetByID(ctx, vehicle.DriverID); err == nil {
			driverName = driver.Name
		}
	}

	return TicketData{
		OrganizationName: organization.Name,
		BookingID:        booking.BookingID,
		BookingDatetime:  booking.CreatedAt,
		PassengerName:    passenger.Name,
		FromLocation:     trip.FromLocation,
		ToLocation:       trip.ToLocation,
		NumPassengers:    booking.NumPassengers,
		SeatNumbers:      booking.SeatNumbers(),
		PricePerPerson:   trip.Price,
		TotalPrice:       booking.Price,
		TripStart:        trip.StartDatetime,
		DriverName:       driverName,
		VehicleMake:      vehicle.CompanyMade,
		VehicleModel:     vehicle.Model,
		VehicleColor:     vehicle.Color,
		VehiclePlate:     vehicle.RegistrationNumber,
		IsConfirmed:      booking.IsConfirmed,
		IsPaid:           booking.IsPaid,
		IssuedAt:         time.Now(),
	}, nil
}

// RenderText produces the fixed-format human-readable ticket summary.
func RenderText(d TicketData) string {
	status := func(flag bool, yes, no string) string {
		if flag {
			return yes
		}
		return no
	}

	var b strings.Builder
	b.WriteString("-------------------------------------\n")
	fmt.Fprintf(&b, "Organization: %s\n", d.OrganizationName)
	fmt.Fprintf(&b, "Booking ID: %s\n", d.BookingID)
	fmt.Fprintf(&b, "Booking Date and Time: %s\n", d.BookingDatetime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Passenger: %s\n", d.PassengerName)
	fmt.Fprintf(&b, "Trip: %s to %s\n", d.FromLocation, d.ToLocation)
	fmt.Fprintf(&b, "No. of Passengers: %d\n", d.NumPassengers)
	fmt.Fprintf(&b, "Seats: %s\n", strings.Join(d.SeatNumbers, ", "))
	fmt.Fprintf(&b, "Price per Person: %.2f\n", d.PricePerPerson)
	fmt.Fprintf(&b, "Total Price: %.2f\n", d.TotalPrice)
	fmt.Fprintf(&b, "Trip Date: %s\n", d.TripStart.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Ticket Booked Time: %s\n", d.IssuedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Driver: %s\n", d.DriverName)
	fmt.Fprintf(&b, "Vehicle: %s %s %s, Plate: %s\n", d.VehicleMake, d.VehicleModel, d.VehicleColor, d.VehiclePlate)
	fmt.Fprintf(&b, "Status: %s, %s\n",
		status(d.IsConfirmed, "Confirmed", "Not Confirmed"),
		status(d.IsPaid, "Paid", "Not Paid"))
	b.WriteString("-------------------------------------\n")

	return b.String()
}

// RenderPDF produces the PDF rendition of the ticket.
func RenderPDF(d TicketData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Organization : %s", d.OrganizationName),
		fmt.Sprintf("Booking ID   : %s", d.BookingID),
		fmt.Sprintf("Passenger    : %s", d.PassengerName),
		fmt.Sprintf("Route        : %s -> %s", d.FromLocation, d.ToLocation),
		fmt.Sprintf("Trip Date    : %s", d.TripStart.Format("2006-01-02 15:04")),
		fmt.Sprintf("Seats        : %s", strings.Join(d.SeatNumbers, ", ")),
		fmt.Sprintf("Passengers   : %d", d.NumPassengers),
		fmt.Sprintf("Price/Person : %.2f", d.PricePerPerson),
		fmt.Sprintf("Total Price  : %.2f", d.TotalPrice),
		fmt.Sprintf("Driver       : %s", d.DriverName),
		fmt.Sprintf("Vehicle      : %s %s %s, Plate: %s", d.VehicleMake, d.VehicleModel, d.VehicleColor, d.VehiclePlate),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present this ticket at departure.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
