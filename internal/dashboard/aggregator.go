package dashboard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/draftlab/dashboard-backend/internal/directory"
	"github.com/draftlab/dashboard-backend/internal/eventstore"
	"github.com/draftlab/dashboard-backend/internal/historical"
	"github.com/draftlab/dashboard-backend/pkg/config"
	pkgerrors "github.com/draftlab/dashboard-backend/pkg/errors"
	"github.com/draftlab/dashboard-backend/pkg/logger"
)

var timeNow = time.Now

// Aggregator computes dashboard metrics, blending the live event store and
// directory with interpolated baseline checkpoints across the migration
// boundary.
type Aggregator struct {
	store     eventstore.Store
	dir       directory.Directory
	baseline  *historical.Service
	liveStart time.Time
	cutover   time.Time
	minDate   time.Time
	logg      *logger.Logger
}

// NewAggregator wires the aggregator's sources and migration boundaries.
func NewAggregator(store eventstore.Store, dir directory.Directory, baseline *historical.Service, cfg config.HistoricalConfig, logg *logger.Logger) *Aggregator {
	return &Aggregator{
		store:     store,
		dir:       dir,
		baseline:  baseline,
		liveStart: cfg.LiveStart.Time(),
		cutover:   cfg.Cutover.Time(),
		minDate:   cfg.MinDate.Time(),
		logg:      logg,
	}
}

// Window normalizes a raw window against the aggregator's tracking floor.
func (a *Aggregator) Window(start, end time.Time) TimeWindow {
	return NewTimeWindow(start, end, a.minDate)
}

type liveCollector func(ctx context.Context, a *Aggregator, w TimeWindow) (int64, error)

type metricDef struct {
	id          string
	name        string
	description string
	category    string
	// baselineKey names the checkpoint series observing this metric before
	// live instrumentation; empty for live-only metrics.
	baselineKey string
	live        liveCollector
}

var metricDefs = []metricDef{
	{
		id:          MetricTotalUsers,
		name:        "Total Users",
		description: "New user registrations in the period",
		category:    CategoryUser,
		baselineKey: historical.MetricTotalUsers,
		live:        collectNewRegistrations,
	},
	{
		id:          MetricActiveUsers,
		name:        "Active Users",
		description: "Users who sent at least one thread message",
		category:    CategoryEngagement,
		baselineKey: historical.MetricActiveUsers,
		live:        collectDistinctUsers(eventstore.EventThreadMessage, true),
	},
	{
		id:          MetricMediumChatUsers,
		name:        "Medium Chat Users",
		description: "Users with 5 to 20 thread messages",
		category:    CategoryEngagement,
		live:        collectUsersByVolume(eventstore.EventThreadMessage, 5, 20),
	},
	{
		id:          MetricPowerUsers,
		name:        "Power Users",
		description: "Users with more than 20 thread messages",
		category:    CategoryEngagement,
		live:        collectUsersByVolume(eventstore.EventThreadMessage, 21, 0),
	},
	{
		id:          MetricProducers,
		name:        "Producers",
		description: "Users with producer activity in the period",
		category:    CategoryUser,
		baselineKey: historical.MetricProducers,
		live:        collectDistinctUsers(eventstore.EventProducerActivity, false),
	},
	{
		id:          MetricSketchUsers,
		name:        "Sketch Users",
		description: "Users who uploaded at least one sketch",
		category:    CategoryPerformance,
		live:        collectDistinctUsers(eventstore.EventSketchUpload, true),
	},
	{
		id:          MetricRenderUsers,
		name:        "Render Users",
		description: "Users who started at least one render",
		category:    CategoryPerformance,
		live:        collectDistinctUsers(eventstore.EventRenderStart, true),
	},
}

func collectNewRegistrations(ctx context.Context, a *Aggregator, w TimeWindow) (int64, error) {
	return a.dir.CountCreatedBetween(ctx, w.Start, w.End)
}

func collectDistinctUsers(eventName string, requireSuccess bool) liveCollector {
	return func(ctx context.Context, a *Aggregator, w TimeWindow) (int64, error) {
		conditions := []eventstore.Condition{eventstore.EventCondition(eventName)}
		if requireSuccess {
			conditions = append(conditions, eventstore.SucceededCondition())
		}
		conditions = append(conditions, eventstore.DateRangeCondition(w.Start, w.End))

		result, err := a.store.Search(ctx, eventstore.BuildCompositeQuery(conditions, eventstore.CardinalityAgg()))
		if err != nil {
			return 0, err
		}
		return result.DistinctCount(eventstore.AggUniqueUsers), nil
	}
}

func collectUsersByVolume(eventName string, minCount, maxCount int) liveCollector {
	return func(ctx context.Context, a *Aggregator, w TimeWindow) (int64, error) {
		conditions := []eventstore.Condition{
			eventstore.EventCondition(eventName),
			eventstore.SucceededCondition(),
			eventstore.DateRangeCondition(w.Start, w.End),
		}
		result, err := a.store.Search(ctx, eventstore.BuildCompositeQuery(conditions, eventstore.TermsCountAgg(minCount, maxCount)))
		if err != nil {
			return 0, err
		}
		return result.BucketCount(eventstore.AggUserCounts), nil
	}
}

// sample is one metric's computed value for a single window.
type sample struct {
	value        int64
	dailyAverage float64
	err          error
}

// Dashboard computes the full metric set for the window, including the
// trend comparison against the preceding window of equal length. Source
// failures degrade individual metrics to zero instead of failing the call.
func (a *Aggregator) Dashboard(ctx context.Context, w TimeWindow, includeHistorical bool) (*DashboardResponse, error) {
	var (
		current         map[string]sample
		previous        map[string]sample
		totalRegistered int64
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		current = a.collect(groupCtx, w, includeHistorical)
		return nil
	})
	group.Go(func() error {
		previous = a.collect(groupCtx, w.Previous(), includeHistorical)
		return nil
	})
	group.Go(func() error {
		totalRegistered = a.registeredTotal(groupCtx)
		return nil
	})
	_ = group.Wait()

	metrics := make([]Metric, 0, len(metricDefs))
	for _, def := range metricDefs {
		cur := current[def.id]
		prev := previous[def.id]

		change, trend := computeTrend(cur.value, prev.value)
		metric := Metric{
			ID:          def.id,
			Name:        def.name,
			Description: def.description,
			Category:    def.category,
			Interval:    "daily",
			Data: MetricData{
				Value:            cur.value,
				PreviousValue:    prev.value,
				Trend:            trend,
				ChangePercentage: change,
				DailyAverage:     cur.dailyAverage,
			},
		}
		if cur.err != nil {
			metric.Error = pkgerrors.MetadataFor(pkgerrors.CodeOf(cur.err)).PublicMessage
			metric.Data.Trend = TrendNeutral
			metric.Data.ChangePercentage = 0
		}
		metrics = append(metrics, metric)
	}

	return &DashboardResponse{
		Metrics:         metrics,
		TimeRange:       w.Range(),
		TotalRegistered: totalRegistered,
	}, nil
}

// registeredTotal reads the registration count as of now, preferring the
// directory and falling back to the baseline when it is unreachable.
func (a *Aggregator) registeredTotal(ctx context.Context) int64 {
	now := timeNow().UTC()
	count, err := a.dir.CountAll(ctx, now)
	if err != nil {
		a.logg.Error(ctx, "directory count unavailable, using baseline total", err)
		return a.baseline.ValueAt(historical.MetricTotalUsers, now)
	}
	return count
}

// collect computes every metric sample for one window concurrently.
func (a *Aggregator) collect(ctx context.Context, w TimeWindow, includeHistorical bool) map[string]sample {
	ctx = a.logg.WithWindow(ctx, w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	strategy := strategyFor(w, a.liveStart, a.cutover)
	if !includeHistorical {
		strategy = StrategyLive
	}

	histWindow, liveWindow := a.split(w, strategy)

	samples := make(map[string]sample, len(metricDefs))
	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	for _, def := range metricDefs {
		def := def
		group.Go(func() error {
			result := a.sampleMetric(groupCtx, def, strategy, histWindow, liveWindow)
			mu.Lock()
			samples[def.id] = result
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return samples
}

// split derives the historical and live sub-windows for a strategy. For
// blended windows the slices overlap across [liveStart, cutover]; both
// sources observed that period.
func (a *Aggregator) split(w TimeWindow, strategy Strategy) (TimeWindow, TimeWindow) {
	switch strategy {
	case StrategyHistorical:
		return w, TimeWindow{}
	case StrategyLive:
		return TimeWindow{}, w
	default:
		histWindow := w
		if a.cutover.Before(histWindow.End) {
			histWindow.End = a.cutover
		}
		liveWindow := w
		if liveWindow.Start.Before(a.liveStart) {
			liveWindow.Start = a.liveStart
		}
		return histWindow, liveWindow
	}
}

func (a *Aggregator) sampleMetric(ctx context.Context, def metricDef, strategy Strategy, histWindow, liveWindow TimeWindow) sample {
	var (
		hist, live         int64
		histDays, liveDays int
		softErr            error
	)

	if strategy != StrategyLive && def.baselineKey != "" {
		hist = a.baseline.DeltaOver(def.baselineKey, histWindow.Start, histWindow.End)
		histDays = histWindow.Days()
	}

	if strategy != StrategyHistorical {
		count, err := def.live(ctx, a, liveWindow)
		if err != nil {
			softErr = err
			a.logg.Error(a.logg.WithMetric(ctx, def.id), "metric source failed, degrading to zero", err)
		} else {
			live = count
		}
		liveDays = liveWindow.Days()
	}

	value := hist + live
	if strategy == StrategyBlended && def.baselineKey != "" {
		// Both sources observed the overlap period; taking the larger
		// avoids double counting users seen by each.
		if live > hist {
			value = live
		} else {
			value = hist
		}
	}

	totalDays := histDays + liveDays
	if totalDays == 0 {
		totalDays = 1
	}

	return sample{
		value:        value,
		dailyAverage: round2(float64(hist+live) / float64(totalDays)),
		err:          softErr,
	}
}
