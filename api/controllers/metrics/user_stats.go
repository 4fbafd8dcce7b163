package metrics

import (
	"net/http"
	"strings"

	"github.com/draftlab/dashboard-backend/api/responses"
	"github.com/draftlab/dashboard-backend/internal/dashboard"
	"github.com/draftlab/dashboard-backend/pkg/logger"
)

// UserStats serves the per-user activity breakdown for one gauge type.
// Missing dates default to the trailing seven days.
func UserStats(service dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defaultStart, defaultEnd := trailingWeek(timeNowUTC())
		start, end, err := resolveWindow(r, defaultStart, defaultEnd)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		gauge := strings.TrimSpace(r.URL.Query().Get("gaugeType"))
		if gauge == "" {
			gauge = dashboard.GaugeConsecutiveDays
		}
		bypassCache := boolParam(r, "skipCache", false)

		result, err := service.UserStats(ctx, start, end, gauge, bypassCache)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
