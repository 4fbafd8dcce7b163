package metrics

import (
	"net/http"

	"github.com/draftlab/dashboard-backend/api/responses"
	"github.com/draftlab/dashboard-backend/internal/dashboard"
	"github.com/draftlab/dashboard-backend/pkg/logger"
)

// Dashboard serves the aggregated metric set for a window. Missing dates
// default to the current calendar month; includeV1 controls whether the
// pre-migration baseline participates and defaults to true.
func Dashboard(service dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defaultStart, defaultEnd := currentMonth(timeNowUTC())
		start, end, err := resolveWindow(r, defaultStart, defaultEnd)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		includeHistorical := boolParam(r, "includeV1", true)
		bypassCache := boolParam(r, "skipCache", false)

		result, err := service.Dashboard(ctx, start, end, includeHistorical, bypassCache)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
