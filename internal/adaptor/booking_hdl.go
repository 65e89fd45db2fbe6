package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"retreat-booking/internal/dto/request"
	"retreat-booking/internal/provider"
	"retreat-booking/internal/usecase"
	"retreat-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	secrets []string
	log     *zap.Logger
}

// NewBookingHandler builds the booking handler. secrets are removed from any
// error details sent back to the caller.
func NewBookingHandler(service usecase.BookingService, secrets []string, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		secrets: secrets,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (protected)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("Invalid create booking body", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), caller, &req)
	if err != nil {
		h.handleServiceError(w, err, "create booking")
		return
	}

	utils.ResponseSuccess(w, booking)
}

// GetBooking handles GET /api/bookings/{id} (protected)
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return
	}

	booking, err := h.service.GetBooking(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, booking)
}

// handleServiceError maps the booking error taxonomy onto HTTP responses
func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	var (
		validationErr *usecase.ValidationError
		providerErr   *usecase.ProviderCallError
	)

	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		h.log.Warn(operation+" failed - unauthorized", zap.String("operation", operation))
		utils.ResponseUnauthorized(w, "Unauthorized")

	case errors.As(err, &validationErr):
		h.log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		if len(validationErr.Missing) > 0 {
			utils.ResponseBadRequest(w, "Missing required fields", validationErr.Missing)
			return
		}
		utils.ResponseBadRequest(w, "Invalid booking request", validationErr.Fields)

	case errors.Is(err, usecase.ErrBookingNotFound):
		h.log.Warn(operation+" failed - not found", zap.String("operation", operation))
		utils.ResponseNotFound(w, "Booking not found")

	case errors.Is(err, usecase.ErrNotConfigured):
		h.log.Error(operation+" failed - provider not configured", zap.String("operation", operation))
		utils.ResponseInternalError(w, "WeTravel API not configured", nil)

	case errors.As(err, &providerErr):
		h.log.Error(operation+" failed - provider error",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Failed to create WeTravel booking", providerErr.Details(h.secrets...))

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error", provider.Scrub(err.Error(), h.secrets...))
	}
}
