package eventstore

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/draftlab/dashboard-backend/pkg/config"
	pkgerrors "github.com/draftlab/dashboard-backend/pkg/errors"
	"github.com/draftlab/dashboard-backend/pkg/logger"
	"github.com/draftlab/dashboard-backend/pkg/metrics"
)

// RetryingStore wraps a Store with exponential backoff on transient failures.
// Query and not-found errors fail immediately.
type RetryingStore struct {
	inner       Store
	baseDelay   time.Duration
	maxAttempts int
	logg        *logger.Logger
	obs         *metrics.EngineMetrics
}

// NewRetryingStore builds the retrying wrapper from configuration.
func NewRetryingStore(inner Store, cfg config.EventStoreConfig, logg *logger.Logger, obs *metrics.EngineMetrics) *RetryingStore {
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingStore{
		inner:       inner,
		baseDelay:   baseDelay,
		maxAttempts: maxAttempts,
		logg:        logg,
		obs:         obs,
	}
}

// Search runs the query, retrying transient store failures up to the
// configured attempt budget.
func (r *RetryingStore) Search(ctx context.Context, query *Query) (*Result, error) {
	var result *Result
	backoff := retry.WithMaxRetries(uint64(r.maxAttempts-1), retry.NewExponential(r.baseDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, searchErr := r.inner.Search(ctx, query)
		if searchErr != nil {
			if pkgerrors.CodeOf(searchErr) == pkgerrors.CodeTransientStore {
				r.obs.IncStore(metrics.StoreRetry)
				r.logg.Warn(ctx, "retrying event store search")
				return retry.RetryableError(searchErr)
			}
			return searchErr
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Ping delegates to the wrapped store without retrying.
func (r *RetryingStore) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}
