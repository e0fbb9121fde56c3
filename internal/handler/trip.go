package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sawari/internal/domain"
	"sawari/internal/middleware"
	"sawari/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService       *service.TripService
	settlementService *service.SettlementService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService, settlementService *service.SettlementService) *TripHandler {
	return &TripHandler{tripService: tripService, settlementService: settlementService}
}

// ScheduleTripRequest is the HTTP request for scheduling a trip.
type ScheduleTripRequest struct {
	VehicleRegistration string  `json:"vehicle_registration" binding:"required"`
	FromLocation        string  `json:"from_location" binding:"required"`
	ToLocation          string  `json:"to_location" binding:"required"`
	StartDatetime       string  `json:"start_datetime" binding:"required"`
	EndDatetime         string  `json:"end_datetime"`
	Price               float64 `json:"price"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID         string  `json:"trip_id"`
	FromLocation   string  `json:"from_location"`
	ToLocation     string  `json:"to_location"`
	StartDatetime  string  `json:"start_datetime"`
	EndDatetime    string  `json:"end_datetime"`
	IsCompleted    bool    `json:"is_completed"`
	Price          float64 `json:"price"`
	TotalEarnings  float64 `json:"total_earnings"`
	PassengerCount int     `json:"passenger_count"`
}

func tripResponse(t *domain.Trip) TripResponse {
	return TripResponse{
		TripID:         t.TripID,
		FromLocation:   t.FromLocation,
		ToLocation:     t.ToLocation,
		StartDatetime:  t.StartDatetime.Format(time.RFC3339),
		EndDatetime:    t.EndDatetime.Format(time.RFC3339),
		IsCompleted:    t.IsCompleted,
		Price:          t.Price,
		TotalEarnings:  t.TotalEarnings,
		PassengerCount: t.PassengerCount,
	}
}

// Schedule handles POST /v1/trips
func (h *TripHandler) Schedule(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	var req ScheduleTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartDatetime)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "start_datetime must be RFC 3339"})
		return
	}

	var end time.Time
	if req.EndDatetime != "" {
		end, err = time.Parse(time.RFC3339, req.EndDatetime)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "end_datetime must be RFC 3339"})
			return
		}
	}

	trip, err := h.tripService.Schedule(c.Request.Context(), actor, service.ScheduleTripRequest{
		VehicleRegistration: req.VehicleRegistration,
		FromLocation:        req.FromLocation,
		ToLocation:          req.ToLocation,
		StartDatetime:       start,
		EndDatetime:         end,
		Price:               req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, tripResponse(trip))
}

// Get handles GET /v1/trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	trip, err := h.tripService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// List handles GET /v1/trips
func (h *TripHandler) List(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	trips, err := h.tripService.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, tripResponse(trip))
	}

	respondJSON(c, http.StatusOK, response)
}

// Complete handles POST /v1/trips/:id/complete
func (h *TripHandler) Complete(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	trip, err := h.tripService.MarkComplete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// Settle handles POST /v1/trips/:id/settle
func (h *TripHandler) Settle(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	earnings, err := h.settlementService.Settle(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, earningsResponse(earnings))
}
