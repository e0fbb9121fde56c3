package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sawari/internal/domain"
	"sawari/internal/middleware"
	"sawari/internal/service"
)

// BookingHandler handles HTTP requests for bookings and e-tickets.
type BookingHandler struct {
	bookingService *service.BookingService
	ticketService  *service.TicketService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService, ticketService *service.TicketService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, ticketService: ticketService}
}

// CreateBookingRequest is the HTTP request for creating a booking.
type CreateBookingRequest struct {
	TripID      string   `json:"trip_id" binding:"required"`
	SeatNumbers []string `json:"seat_numbers" binding:"required"`
}

// BookingResponse is the HTTP response for booking operations.
type BookingResponse struct {
	BookingID     string   `json:"booking_id"`
	TripDate      string   `json:"trip_date"`
	SeatNumbers   []string `json:"seat_numbers"`
	NumPassengers int      `json:"num_passengers"`
	Price         float64  `json:"price"`
	IsConfirmed   bool     `json:"is_confirmed"`
	IsPaid        bool     `json:"is_paid"`
	CreatedAt     string   `json:"created_at"`
}

func bookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		BookingID:     b.BookingID,
		TripDate:      b.TripDate.Format("2006-01-02"),
		SeatNumbers:   b.SeatNumbers(),
		NumPassengers: b.NumPassengers,
		Price:         b.Price,
		IsConfirmed:   b.IsConfirmed,
		IsPaid:        b.IsPaid,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), actor, service.CreateBookingRequest{
		TripID:      req.TripID,
		SeatNumbers: req.SeatNumbers,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, bookingResponse(booking))
}

// Get handles GET /v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, bookingResponse(booking))
}

// List handles GET /v1/bookings
func (h *BookingHandler) List(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	bookings, err := h.bookingService.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		response = append(response, bookingResponse(booking))
	}

	respondJSON(c, http.StatusOK, response)
}

// UpdateBookingRequest is the HTTP request for editing booking flags.
type UpdateBookingRequest struct {
	IsConfirmed *bool `json:"is_confirmed"`
	IsPaid      *bool `json:"is_paid"`
}

// Update handles PATCH /v1/bookings/:id
func (h *BookingHandler) Update(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	booking, err := h.bookingService.Update(c.Request.Context(), actor, c.Param("id"), service.UpdateBookingRequest{
		IsConfirmed: req.IsConfirmed,
		IsPaid:      req.IsPaid,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, bookingResponse(booking))
}

// Delete handles DELETE /v1/bookings/:id
func (h *BookingHandler) Delete(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	if err := h.bookingService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Ticket handles GET /v1/bookings/:id/ticket
func (h *BookingHandler) Ticket(c *gin.Context) {
	booking, ok := h.authorizedBooking(c)
	if !ok {
		return
	}

	text, err := h.ticketService.TicketText(c.Request.Context(), booking)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", text)
}

// TicketPDF handles GET /v1/bookings/:id/ticket.pdf
func (h *BookingHandler) TicketPDF(c *gin.Context) {
	booking, ok := h.authorizedBooking(c)
	if !ok {
		return
	}

	pdf, err := h.ticketService.TicketPDF(c.Request.Context(), booking)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+booking.BookingID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// authorizedBooking loads the booking for ticket endpoints, writing the
// error response on failure.
func (h *BookingHandler) authorizedBooking(c *gin.Context) (*domain.Booking, bool) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return nil, false
	}

	booking, err := h.bookingService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	return booking, true
}
