package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sawari/internal/domain"
	"sawari/internal/middleware"
	"sawari/internal/service"
)

// VehicleHandler handles HTTP requests for vehicles and their seat maps.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// RegisterVehicleRequest is the HTTP request for registering a vehicle.
type RegisterVehicleRequest struct {
	VehicleType     string `json:"vehicle_type" binding:"required"`
	CompanyMade     string `json:"company_made"`
	Model           string `json:"model"`
	Color           string `json:"color"`
	SeatingCapacity int    `json:"seating_capacity" binding:"required"`
	DriverID        string `json:"driver_id"`
}

// VehicleResponse is the HTTP response for vehicle operations.
type VehicleResponse struct {
	RegistrationNumber string `json:"registration_number"`
	OrganizationID     string `json:"organization_id"`
	DriverID           string `json:"driver_id,omitempty"`
	VehicleType        string `json:"vehicle_type"`
	CompanyMade        string `json:"company_made,omitempty"`
	Model              string `json:"model,omitempty"`
	Color              string `json:"color,omitempty"`
	SeatingCapacity    int    `json:"seating_capacity"`
	AvailableSeat      int    `json:"available_seat"`
}

// SeatResponse is one seat in a seat-map response.
type SeatResponse struct {
	SeatNumber           string `json:"seat_number"`
	IsOccupied           bool   `json:"is_occupied"`
	ReservedForDriver    bool   `json:"reserved_for_driver"`
	ReservedForConductor bool   `json:"reserved_for_conductor"`
}

// SeatMapResponse is the HTTP response for the seat-map endpoint.
type SeatMapResponse struct {
	Vehicle VehicleResponse `json:"vehicle"`
	Seats   []SeatResponse  `json:"seats"`
}

func vehicleResponse(v *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		RegistrationNumber: v.RegistrationNumber,
		OrganizationID:     v.OrganizationID,
		DriverID:           v.DriverID,
		VehicleType:        string(v.VehicleType),
		CompanyMade:        v.CompanyMade,
		Model:              v.Model,
		Color:              v.Color,
		SeatingCapacity:    v.SeatingCapacity,
		AvailableSeat:      v.AvailableSeat,
	}
}

// Register handles POST /v1/vehicles
func (h *VehicleHandler) Register(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	vehicle, err := h.vehicleService.Register(c.Request.Context(), actor, service.RegisterVehicleRequest{
		VehicleType:     domain.VehicleType(req.VehicleType),
		CompanyMade:     req.CompanyMade,
		Model:           req.Model,
		Color:           req.Color,
		SeatingCapacity: req.SeatingCapacity,
		DriverID:        req.DriverID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, vehicleResponse(vehicle))
}

// SeatMap handles GET /v1/vehicles/:registration/seats
func (h *VehicleHandler) SeatMap(c *gin.Context) {
	vehicle, seats, err := h.vehicleService.SeatMap(c.Request.Context(), c.Param("registration"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := SeatMapResponse{Vehicle: vehicleResponse(vehicle)}
	for _, seat := range seats {
		response.Seats = append(response.Seats, SeatResponse{
			SeatNumber:           seat.SeatNumber,
			IsOccupied:           seat.IsOccupied,
			ReservedForDriver:    seat.ReservedForDriver,
			ReservedForConductor: seat.ReservedForConductor,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// ReserveConductorSeatRequest is the HTTP request for flagging a conductor
// seat.
type ReserveConductorSeatRequest struct {
	SeatNumber string `json:"seat_number" binding:"required"`
}

// ReserveConductorSeat handles POST /v1/vehicles/:registration/conductor-seat
func (h *VehicleHandler) ReserveConductorSeat(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	var req ReserveConductorSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.vehicleService.ReserveConductorSeat(c.Request.Context(), actor, c.Param("registration"), req.SeatNumber); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "reserved"})
}
