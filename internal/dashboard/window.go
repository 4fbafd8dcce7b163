package dashboard

import "time"

// TimeWindow is an inclusive UTC query window.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow normalizes a raw window: times move to UTC, reversed bounds
// swap, and the start never precedes the tracking floor.
func NewTimeWindow(start, end, floor time.Time) TimeWindow {
	start = start.UTC()
	end = end.UTC()
	if end.Before(start) {
		start, end = end, start
	}
	if start.Before(floor) {
		start = floor.UTC()
	}
	if end.Before(start) {
		end = start
	}
	return TimeWindow{Start: start, End: end}
}

// Days returns the inclusive day count covered by the window, at least 1.
func (w TimeWindow) Days() int {
	days := int(w.End.Sub(w.Start)/(24*time.Hour)) + 1
	if days < 1 {
		return 1
	}
	return days
}

// Previous returns the window of equal duration immediately before this one,
// used as the trend comparison period.
func (w TimeWindow) Previous() TimeWindow {
	duration := w.End.Sub(w.Start)
	return TimeWindow{Start: w.Start.Add(-duration), End: w.Start}
}

// Range formats the window for response payloads.
func (w TimeWindow) Range() TimeRange {
	return TimeRange{
		Start: w.Start.Format(time.RFC3339),
		End:   w.End.Format(time.RFC3339),
	}
}

// Strategy selects which sources answer a window.
type Strategy int

const (
	// StrategyHistorical answers entirely from baseline checkpoints.
	StrategyHistorical Strategy = iota
	// StrategyLive answers entirely from the event store and directory.
	StrategyLive
	// StrategyBlended combines both sources across the migration period.
	StrategyBlended
)

func (s Strategy) String() string {
	switch s {
	case StrategyHistorical:
		return "historical"
	case StrategyLive:
		return "live"
	default:
		return "blended"
	}
}

// strategyFor picks the source strategy for a window given the migration
// boundaries (liveStart <= cutover).
func strategyFor(w TimeWindow, liveStart, cutover time.Time) Strategy {
	if w.End.Before(liveStart) {
		return StrategyHistorical
	}
	if w.Start.After(cutover) {
		return StrategyLive
	}
	return StrategyBlended
}
