package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/draftlab/dashboard-backend/pkg/errors"
)

var timeNowUTC = func() time.Time {
	return time.Now().UTC()
}

// Accepted timestamp layouts, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid date format").WithDetails(value)
}

// resolveWindow reads startDate/endDate from the query, falling back to the
// provided default window when both are absent.
func resolveWindow(r *http.Request, defaultStart, defaultEnd time.Time) (time.Time, time.Time, error) {
	query := r.URL.Query()
	rawStart := strings.TrimSpace(query.Get("startDate"))
	rawEnd := strings.TrimSpace(query.Get("endDate"))

	start, end := defaultStart, defaultEnd
	var err error
	if rawStart != "" {
		if start, err = parseDate(rawStart); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if rawEnd != "" {
		if end, err = parseDate(rawEnd); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// currentMonth is the dashboard's default window: the first of the current
// month through now.
func currentMonth(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, now
}

// trailingWeek is the user-stats default window.
func trailingWeek(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -7), now
}

// boolParam reads a boolean query parameter with a default for absent or
// malformed values.
func boolParam(r *http.Request, name string, fallback bool) bool {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

// intParam reads an integer query parameter with a default for absent or
// malformed values.
func intParam(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
