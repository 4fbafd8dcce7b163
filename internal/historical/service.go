package historical

import (
	_ "embed"
	"encoding/json"
	"sort"
	"time"

	"github.com/draftlab/dashboard-backend/pkg/config"
	pkgerrors "github.com/draftlab/dashboard-backend/pkg/errors"
)

// Metric keys tracked by the baseline checkpoints.
const (
	MetricTotalUsers  = "total_users"
	MetricActiveUsers = "active_users"
	MetricProducers   = "producers"
)

//go:embed checkpoints.json
var checkpointData []byte

// Checkpoint is a known cumulative total snapshot taken on a date.
type Checkpoint struct {
	Date   time.Time
	Totals map[string]int64
}

type checkpointDoc struct {
	Date   string           `json:"date"`
	Totals map[string]int64 `json:"totals"`
}

// Service answers cumulative baseline values for dates before live
// instrumentation existed, interpolating linearly between checkpoints.
type Service struct {
	minDate     time.Time
	checkpoints []Checkpoint
}

// NewService loads the embedded checkpoint table.
func NewService(cfg config.HistoricalConfig) (*Service, error) {
	var docs []checkpointDoc
	if err := json.Unmarshal(checkpointData, &docs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse baseline checkpoints")
	}

	checkpoints := make([]Checkpoint, 0, len(docs))
	for _, doc := range docs {
		date, err := time.Parse("2006-01-02", doc.Date)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse checkpoint date")
		}
		checkpoints = append(checkpoints, Checkpoint{Date: date.UTC(), Totals: doc.Totals})
	}

	return NewServiceWithCheckpoints(cfg.MinDate.Time(), checkpoints)
}

// NewServiceWithCheckpoints builds the service from an explicit checkpoint
// table. Checkpoints are sorted by date.
func NewServiceWithCheckpoints(minDate time.Time, checkpoints []Checkpoint) (*Service, error) {
	if len(checkpoints) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "baseline checkpoint table is empty")
	}
	sorted := make([]Checkpoint, len(checkpoints))
	copy(sorted, checkpoints)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	return &Service{minDate: minDate.UTC(), checkpoints: sorted}, nil
}

// ValueAt returns the cumulative baseline value for metric on the given day.
// Days before the tracking floor read as zero; days at or after the final
// checkpoint read as the final checkpoint's value. Between checkpoints the
// value grows linearly with whole days, truncated to an integer.
func (s *Service) ValueAt(metric string, at time.Time) int64 {
	day := truncateToDay(at)
	if day.Before(s.minDate) {
		return 0
	}

	last := s.checkpoints[len(s.checkpoints)-1]
	if !day.Before(last.Date) {
		return last.Totals[metric]
	}

	first := s.checkpoints[0]
	if day.Before(first.Date) {
		return 0
	}

	for i := 1; i < len(s.checkpoints); i++ {
		next := s.checkpoints[i]
		if day.Before(next.Date) {
			prev := s.checkpoints[i-1]
			return interpolate(prev, next, metric, day)
		}
	}
	return last.Totals[metric]
}

// DeltaOver returns the baseline growth for metric across [start, end]. The
// window is inclusive of start's day, so the lower reference point is the
// day before start.
func (s *Service) DeltaOver(metric string, start, end time.Time) int64 {
	delta := s.ValueAt(metric, end) - s.ValueAt(metric, start.Add(-24*time.Hour))
	if delta < 0 {
		return 0
	}
	return delta
}

func interpolate(prev, next Checkpoint, metric string, day time.Time) int64 {
	spanDays := int64(next.Date.Sub(prev.Date) / (24 * time.Hour))
	if spanDays <= 0 {
		return prev.Totals[metric]
	}
	elapsedDays := int64(day.Sub(prev.Date) / (24 * time.Hour))
	growth := next.Totals[metric] - prev.Totals[metric]
	return prev.Totals[metric] + growth*elapsedDays/spanDays
}

func truncateToDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
