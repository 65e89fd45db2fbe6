package wire

import (
	"net/http"

	"retreat-booking/internal/adaptor"
	"retreat-booking/internal/data/repository"
	"retreat-booking/internal/provider"
	"retreat-booking/internal/usecase"
	"retreat-booking/pkg/cache"
	"retreat-booking/pkg/middleware"
	"retreat-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the assembled HTTP surface
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes from the runtime dependencies.
// p may be nil when provider credentials are absent; the intake endpoint then
// answers with a configuration error.
func Wiring(repo *repository.Repository, p provider.Provider, c cache.Cache, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, p, c, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	return &App{
		Router: setupRouter(handler, config, logger),
	}
}

func setupRouter(handler *adaptor.Handler, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	limiter := middleware.NewRateLimiter(config.RateLimit)

	wireBooking(r, handler.Booking, limiter, config, logger)
	wireWebhook(r, handler.Webhook)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
