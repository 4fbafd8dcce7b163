package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/draftlab/dashboard-backend/pkg/config"
	pkgerrors "github.com/draftlab/dashboard-backend/pkg/errors"
	"github.com/draftlab/dashboard-backend/pkg/logger"
	"github.com/draftlab/dashboard-backend/pkg/metrics"
)

// Store is the key-value surface the layer needs from Redis.
type Store interface {
	Fetch(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	MetricsKey(parts ...string) string
}

// Layer caches serialized metric payloads. Cache failures never fail the
// request; the layer degrades to recomputing.
type Layer struct {
	store  Store
	logg   *logger.Logger
	obs    *metrics.EngineMetrics
	ttl    time.Duration
	bypass bool
}

// NewLayer builds the cache layer from configuration.
func NewLayer(store Store, cfg config.CacheConfig, logg *logger.Logger, obs *metrics.EngineMetrics) *Layer {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Layer{
		store:  store,
		logg:   logg,
		obs:    obs,
		ttl:    ttl,
		bypass: cfg.Bypass,
	}
}

// Fetch returns the cached payload for key, or computes and stores it on a
// miss. A bypass skips the read but still refreshes the entry. The boolean
// reports whether the payload came from the cache.
func (l *Layer) Fetch(ctx context.Context, key string, bypass bool, compute func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	if l.bypass || bypass {
		l.obs.IncCache(metrics.CacheBypass)
	} else {
		cached, found, err := l.store.Fetch(ctx, key)
		if err != nil {
			l.obs.IncCache(metrics.CacheError)
			l.logg.Warn(ctx, pkgerrors.Wrap(pkgerrors.CodeCacheUnavailable, err, "cache read failed").Error())
		} else if found {
			l.obs.IncCache(metrics.CacheHit)
			return []byte(cached), true, nil
		} else {
			l.obs.IncCache(metrics.CacheMiss)
		}
	}

	payload, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}

	if storeErr := l.store.Set(ctx, key, string(payload), l.ttl); storeErr != nil {
		l.obs.IncCache(metrics.CacheError)
		l.logg.Warn(ctx, pkgerrors.Wrap(pkgerrors.CodeCacheUnavailable, storeErr, "cache write failed").Error())
	}

	return payload, false, nil
}

// DashboardKey identifies a cached dashboard payload for a window.
func (l *Layer) DashboardKey(start, end time.Time, includeHistorical bool) string {
	return l.store.MetricsKey(
		"dashboard",
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
		fmt.Sprintf("v1=%t", includeHistorical),
	)
}

// UserStatsKey identifies a cached user-stats payload for a gauge and window.
func (l *Layer) UserStatsKey(gauge string, start, end time.Time) string {
	return l.store.MetricsKey(
		"user-stats",
		gauge,
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
	)
}

// UserEventsKey identifies a cached per-user event listing.
func (l *Layer) UserEventsKey(userID string, start, end time.Time, limit int) string {
	return l.store.MetricsKey(
		"user-events",
		userID,
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
		fmt.Sprintf("limit=%d", limit),
	)
}
