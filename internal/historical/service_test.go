package historical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftlab/dashboard-backend/pkg/config"
)

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	var cfg config.HistoricalConfig
	require.NoError(t, cfg.MinDate.Decode("2024-10-01"))
	require.NoError(t, cfg.LiveStart.Decode("2025-01-20"))
	require.NoError(t, cfg.Cutover.Decode("2025-01-26"))

	service, err := NewService(cfg)
	require.NoError(t, err)
	return service
}

func TestValueAtInterpolatesBetweenCheckpoints(t *testing.T) {
	service := newTestService(t)

	// Halfway through a 30-day span from 0 to 9770.
	assert.Equal(t, int64(4885), service.ValueAt(MetricTotalUsers, day(2024, time.October, 16)))
}

func TestValueAtCheckpointBoundaries(t *testing.T) {
	service := newTestService(t)

	assert.Equal(t, int64(0), service.ValueAt(MetricTotalUsers, day(2024, time.October, 1)))
	assert.Equal(t, int64(9770), service.ValueAt(MetricTotalUsers, day(2024, time.October, 31)))
	assert.Equal(t, int64(48850), service.ValueAt(MetricTotalUsers, day(2025, time.January, 26)))
}

func TestValueAtBeforeTrackingFloorIsZero(t *testing.T) {
	service := newTestService(t)

	assert.Equal(t, int64(0), service.ValueAt(MetricTotalUsers, day(2024, time.September, 15)))
	assert.Equal(t, int64(0), service.ValueAt(MetricActiveUsers, day(2023, time.January, 1)))
}

func TestValueAtAfterFinalCheckpointHoldsSteady(t *testing.T) {
	service := newTestService(t)

	assert.Equal(t, int64(48850), service.ValueAt(MetricTotalUsers, day(2025, time.June, 1)))
	assert.Equal(t, int64(16560), service.ValueAt(MetricActiveUsers, day(2026, time.January, 1)))
}

func TestValueAtIsMonotonic(t *testing.T) {
	service := newTestService(t)

	previous := int64(0)
	for current := day(2024, time.September, 20); current.Before(day(2025, time.March, 1)); current = current.AddDate(0, 0, 1) {
		value := service.ValueAt(MetricProducers, current)
		assert.GreaterOrEqual(t, value, previous, "value regressed at %s", current.Format("2006-01-02"))
		previous = value
	}
}

func TestDeltaOverCoversInclusiveWindow(t *testing.T) {
	service := newTestService(t)

	// The whole first span: from the day before tracking starts (0) to the
	// first checkpoint total.
	assert.Equal(t, int64(9770), service.DeltaOver(MetricTotalUsers, day(2024, time.October, 1), day(2024, time.October, 31)))

	// A fully post-checkpoint window sees no baseline growth.
	assert.Equal(t, int64(0), service.DeltaOver(MetricTotalUsers, day(2025, time.February, 1), day(2025, time.February, 28)))
}

func TestDeltaOverSplitsConsistently(t *testing.T) {
	service := newTestService(t)

	full := service.DeltaOver(MetricActiveUsers, day(2024, time.November, 1), day(2024, time.November, 30))
	firstHalf := service.DeltaOver(MetricActiveUsers, day(2024, time.November, 1), day(2024, time.November, 15))
	secondHalf := service.DeltaOver(MetricActiveUsers, day(2024, time.November, 16), day(2024, time.November, 30))
	assert.Equal(t, full, firstHalf+secondHalf)
}

func TestNewServiceWithCheckpointsRejectsEmptyTable(t *testing.T) {
	_, err := NewServiceWithCheckpoints(day(2024, time.October, 1), nil)
	require.Error(t, err)
}
