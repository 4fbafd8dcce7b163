package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/draftlab/dashboard-backend/api/responses"
	"github.com/draftlab/dashboard-backend/pkg/config"
	pkgerrors "github.com/draftlab/dashboard-backend/pkg/errors"
	"github.com/draftlab/dashboard-backend/pkg/logger"
)

const readinessTimeout = 5 * time.Second

// Pinger is the health-check surface each dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DraftLab-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks every named dependency and reports per-dependency
// status. Any failure yields a 503.
func HealthReady(cfg *config.Config, logg *logger.Logger, dependencies map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DraftLab-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		statuses := make(map[string]string, len(dependencies))
		healthy := true
		for name, dependency := range dependencies {
			if err := dependency.Ping(ctx); err != nil {
				healthy = false
				statuses[name] = "unavailable"
				logg.Error(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
				continue
			}
			statuses[name] = "ok"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(statuses))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": statuses})
	}
}
