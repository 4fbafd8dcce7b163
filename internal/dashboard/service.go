package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/draftlab/dashboard-backend/internal/cache"
	pkgerrors "github.com/draftlab/dashboard-backend/pkg/errors"
)

// Service is the surface the HTTP controllers depend on. Responses are
// cached as serialized payloads; a cache hit returns the stored bytes
// decoded as-is, without recomputing.
type Service interface {
	Dashboard(ctx context.Context, start, end time.Time, includeHistorical, bypassCache bool) (*DashboardResponse, error)
	UserStats(ctx context.Context, start, end time.Time, gauge string, bypassCache bool) (*UserStatsResponse, error)
	UserEvents(ctx context.Context, userID string, start, end time.Time, limit int, bypassCache bool) (*UserEventsResponse, error)
}

type service struct {
	aggregator *Aggregator
	cache      *cache.Layer
}

// NewService wraps the aggregator with the cache layer.
func NewService(aggregator *Aggregator, cacheLayer *cache.Layer) Service {
	return &service{aggregator: aggregator, cache: cacheLayer}
}

func (s *service) Dashboard(ctx context.Context, start, end time.Time, includeHistorical, bypassCache bool) (*DashboardResponse, error) {
	window := s.aggregator.Window(start, end)
	key := s.cache.DashboardKey(window.Start, window.End, includeHistorical)

	payload, _, err := s.cache.Fetch(ctx, key, bypassCache, func(ctx context.Context) ([]byte, error) {
		response, err := s.aggregator.Dashboard(ctx, window, includeHistorical)
		if err != nil {
			return nil, err
		}
		return json.Marshal(response)
	})
	if err != nil {
		return nil, err
	}

	var response DashboardResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cached dashboard payload")
	}
	return &response, nil
}

func (s *service) UserStats(ctx context.Context, start, end time.Time, gauge string, bypassCache bool) (*UserStatsResponse, error) {
	if !ValidGauge(gauge) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown gauge type").WithDetails(gauge)
	}

	window := s.aggregator.Window(start, end)
	key := s.cache.UserStatsKey(gauge, window.Start, window.End)

	payload, _, err := s.cache.Fetch(ctx, key, bypassCache, func(ctx context.Context) ([]byte, error) {
		response, err := s.aggregator.UserStats(ctx, window, gauge)
		if err != nil {
			return nil, err
		}
		return json.Marshal(response)
	})
	if err != nil {
		return nil, err
	}

	var response UserStatsResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cached user stats payload")
	}
	return &response, nil
}

func (s *service) UserEvents(ctx context.Context, userID string, start, end time.Time, limit int, bypassCache bool) (*UserEventsResponse, error) {
	window := s.aggregator.Window(start, end)
	if limit <= 0 || limit > 1000 {
		limit = defaultEventLimit
	}
	key := s.cache.UserEventsKey(userID, window.Start, window.End, limit)

	payload, _, err := s.cache.Fetch(ctx, key, bypassCache, func(ctx context.Context) ([]byte, error) {
		response, err := s.aggregator.UserEvents(ctx, userID, window, limit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(response)
	})
	if err != nil {
		return nil, err
	}

	var response UserEventsResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cached user events payload")
	}
	return &response, nil
}
