package metrics

import (
	"net/http"
	"strings"

	"github.com/draftlab/dashboard-backend/api/responses"
	"github.com/draftlab/dashboard-backend/internal/dashboard"
	"github.com/draftlab/dashboard-backend/pkg/logger"
)

// UserEvents serves one user's raw event list for a window.
func UserEvents(service dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defaultStart, defaultEnd := trailingWeek(timeNowUTC())
		start, end, err := resolveWindow(r, defaultStart, defaultEnd)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		traceID := strings.TrimSpace(r.URL.Query().Get("traceId"))
		limit := intParam(r, "limit", 0)
		bypassCache := boolParam(r, "skipCache", false)

		result, err := service.UserEvents(ctx, traceID, start, end, limit, bypassCache)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
