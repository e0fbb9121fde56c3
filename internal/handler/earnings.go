package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sawari/internal/domain"
	"sawari/internal/middleware"
	"sawari/internal/service"
)

// EarningsHandler handles HTTP requests for the daily earnings ledger and
// party profiles.
type EarningsHandler struct {
	settlementService *service.SettlementService
	partyResolver     *service.PartyResolver
}

// NewEarningsHandler creates a new EarningsHandler.
func NewEarningsHandler(settlementService *service.SettlementService, partyResolver *service.PartyResolver) *EarningsHandler {
	return &EarningsHandler{settlementService: settlementService, partyResolver: partyResolver}
}

// EarningsResponse is the HTTP response for one ledger entry.
type EarningsResponse struct {
	TripDate      string   `json:"trip_date"`
	TotalEarnings float64  `json:"total_earnings"`
	NumPassengers int      `json:"num_passengers"`
	BookingIDs    []string `json:"booking_ids"`
	CreatedAt     string   `json:"created_at"`
}

func earningsResponse(e *domain.DailyEarnings) EarningsResponse {
	return EarningsResponse{
		TripDate:      e.TripDate.Format("2006-01-02"),
		TotalEarnings: e.TotalEarnings,
		NumPassengers: e.NumPassengers,
		BookingIDs:    e.BookingIDs,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /v1/earnings
func (h *EarningsHandler) List(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	entries, err := h.settlementService.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]EarningsResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, earningsResponse(entry))
	}

	respondJSON(c, http.StatusOK, response)
}

// Me handles GET /v1/me
func (h *EarningsHandler) Me(c *gin.Context) {
	actor, ok := middleware.PartyFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	party, err := h.partyResolver.Resolve(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, party)
}
