package metrics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftlab/dashboard-backend/internal/dashboard"
	pkgerrors "github.com/draftlab/dashboard-backend/pkg/errors"
	"github.com/draftlab/dashboard-backend/pkg/logger"
)

type stubService struct {
	dashboardResp *dashboard.DashboardResponse
	statsResp     *dashboard.UserStatsResponse
	eventsResp    *dashboard.UserEventsResponse
	err           error

	gotStart             time.Time
	gotEnd               time.Time
	gotIncludeHistorical bool
	gotBypass            bool
	gotGauge             string
	gotUserID            string
	gotLimit             int
}

func (s *stubService) Dashboard(ctx context.Context, start, end time.Time, includeHistorical, bypass bool) (*dashboard.DashboardResponse, error) {
	s.gotStart, s.gotEnd = start, end
	s.gotIncludeHistorical, s.gotBypass = includeHistorical, bypass
	return s.dashboardResp, s.err
}

func (s *stubService) UserStats(ctx context.Context, start, end time.Time, gauge string, bypass bool) (*dashboard.UserStatsResponse, error) {
	s.gotStart, s.gotEnd, s.gotGauge, s.gotBypass = start, end, gauge, bypass
	return s.statsResp, s.err
}

func (s *stubService) UserEvents(ctx context.Context, userID string, start, end time.Time, limit int, bypass bool) (*dashboard.UserEventsResponse, error) {
	s.gotUserID, s.gotStart, s.gotEnd, s.gotLimit, s.gotBypass = userID, start, end, limit, bypass
	return s.eventsResp, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func freezeNow(t *testing.T, at time.Time) {
	t.Helper()
	restore := timeNowUTC
	timeNowUTC = func() time.Time { return at }
	t.Cleanup(func() { timeNowUTC = restore })
}

func TestDashboardDefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
	freezeNow(t, now)

	stub := &stubService{dashboardResp: &dashboard.DashboardResponse{}}
	handler := Dashboard(stub, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), stub.gotStart)
	assert.Equal(t, now, stub.gotEnd)
	assert.True(t, stub.gotIncludeHistorical, "includeV1 defaults to true")
	assert.False(t, stub.gotBypass)
}

func TestDashboardHonorsExplicitWindowAndFlags(t *testing.T) {
	stub := &stubService{dashboardResp: &dashboard.DashboardResponse{}}
	handler := Dashboard(stub, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/metrics?startDate=2025-01-01&endDate=2025-01-31&includeV1=false&skipCache=true", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), stub.gotStart)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), stub.gotEnd)
	assert.False(t, stub.gotIncludeHistorical)
	assert.True(t, stub.gotBypass)
}

func TestDashboardRejectsMalformedDates(t *testing.T) {
	stub := &stubService{dashboardResp: &dashboard.DashboardResponse{}}
	handler := Dashboard(stub, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/metrics?startDate=not-a-date", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardMapsServiceErrors(t *testing.T) {
	stub := &stubService{err: pkgerrors.New(pkgerrors.CodeTransientStore, "store down")}
	handler := Dashboard(stub, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDashboardEnvelopesPayload(t *testing.T) {
	stub := &stubService{dashboardResp: &dashboard.DashboardResponse{
		TotalRegistered: 77,
		TimeRange:       dashboard.TimeRange{Start: "2025-02-01T00:00:00Z", End: "2025-02-28T00:00:00Z"},
	}}
	handler := Dashboard(stub, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body struct {
		Data dashboard.DashboardResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(77), body.Data.TotalRegistered)
}
