package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sawari/internal/repository"
	"sawari/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrNoSeatsSelected):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrSeatUnavailable),
		errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrBookingLocked),
		errors.Is(err, service.ErrTripNotCompleted),
		errors.Is(err, service.ErrTripCompleted),
		errors.Is(err, service.ErrNoBookingsToSettle),
		errors.Is(err, service.ErrDuplicateSettlement),
		errors.Is(err, service.ErrDateMismatch),
		errors.Is(err, service.ErrVehicleHasTrip),
		errors.Is(err, service.ErrIDGenerationConflict),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
