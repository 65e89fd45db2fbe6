package wire

import (
	"retreat-booking/internal/adaptor"
	"retreat-booking/pkg/middleware"
	"retreat-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	limiter *middleware.RateLimiter,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (bearer token) ====================
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(limiter.Middleware(log))
		r.Use(middleware.Auth(config.Auth, log))

		// POST /api/bookings - Create a booking and open a provider checkout
		r.Post("/", bookingHandler.CreateBooking)

		// GET /api/bookings/{id} - View one of the caller's bookings
		r.Get("/{id}", bookingHandler.GetBooking)
	})
}
