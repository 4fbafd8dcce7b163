package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/draftlab/dashboard-backend/api/controllers"
	metricscontrollers "github.com/draftlab/dashboard-backend/api/controllers/metrics"
	"github.com/draftlab/dashboard-backend/api/middleware"
	"github.com/draftlab/dashboard-backend/internal/dashboard"
	"github.com/draftlab/dashboard-backend/pkg/config"
	"github.com/draftlab/dashboard-backend/pkg/logger"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config     *config.Config
	Logger     *logger.Logger
	Service    dashboard.Service
	Redis      controllers.Pinger
	EventStore controllers.Pinger
	Directory  controllers.Pinger
	Registry   *prometheus.Registry
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, map[string]controllers.Pinger{
			"redis":       deps.Redis,
			"event_store": deps.EventStore,
			"directory":   deps.Directory,
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/metrics", func(r chi.Router) {
		r.Get("/", metricscontrollers.Dashboard(deps.Service, deps.Logger))
		r.Get("/user-stats", metricscontrollers.UserStats(deps.Service, deps.Logger))
		r.Get("/user-events", metricscontrollers.UserEvents(deps.Service, deps.Logger))
	})

	return r
}
