package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftlab/dashboard-backend/internal/dashboard"
	pkgerrors "github.com/draftlab/dashboard-backend/pkg/errors"
)

func TestUserStatsDefaultsToTrailingWeek(t *testing.T) {
	now := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	freezeNow(t, now)

	stub := &stubService{statsResp: &dashboard.UserStatsResponse{}}
	handler := UserStats(stub, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/metrics/user-stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, now.AddDate(0, 0, -7), stub.gotStart)
	assert.Equal(t, now, stub.gotEnd)
	assert.Equal(t, dashboard.GaugeConsecutiveDays, stub.gotGauge, "gauge defaults to consecutive days")
}

func TestUserStatsPassesGaugeThrough(t *testing.T) {
	stub := &stubService{statsResp: &dashboard.UserStatsResponse{}}
	handler := UserStats(stub, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/metrics/user-stats?gaugeType=month_apart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dashboard.GaugeMonthApart, stub.gotGauge)
}

func TestUserStatsMapsValidationErrors(t *testing.T) {
	stub := &stubService{err: pkgerrors.New(pkgerrors.CodeValidation, "unknown gauge type")}
	handler := UserStats(stub, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/metrics/user-stats?gaugeType=bogus", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserEventsPassesParams(t *testing.T) {
	stub := &stubService{eventsResp: &dashboard.UserEventsResponse{}}
	handler := UserEvents(stub, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/metrics/user-events?traceId=u1&limit=25", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", stub.gotUserID)
	assert.Equal(t, 25, stub.gotLimit)
}

func TestUserEventsMissingTraceIDIsRejectedByService(t *testing.T) {
	stub := &stubService{err: pkgerrors.New(pkgerrors.CodeValidation, "trace ID is required")}
	handler := UserEvents(stub, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/metrics/user-events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
