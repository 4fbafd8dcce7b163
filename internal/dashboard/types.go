package dashboard

import "time"

// Metric categories shown on the dashboard.
const (
	CategoryUser        = "user"
	CategoryEngagement  = "engagement"
	CategoryPerformance = "performance"
)

// Trend directions.
const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendNeutral = "neutral"
)

// Metric identifiers.
const (
	MetricTotalUsers      = "total_users"
	MetricActiveUsers     = "active_users"
	MetricMediumChatUsers = "medium_chat_users"
	MetricPowerUsers      = "power_users"
	MetricProducers       = "producers"
	MetricSketchUsers     = "sketch_users"
	MetricRenderUsers     = "render_users"
)

// Gauge types for the user stats breakdown.
const (
	GaugeConsecutiveDays = "consecutive_days"
	GaugeOneToTwoWeeks   = "one_to_two_weeks"
	GaugeTwoToThreeWeeks = "two_to_three_weeks"
	GaugeMonthApart      = "month_apart"
)

// GaugeTypes lists every supported gauge, in display order.
var GaugeTypes = []string{
	GaugeConsecutiveDays,
	GaugeOneToTwoWeeks,
	GaugeTwoToThreeWeeks,
	GaugeMonthApart,
}

// ValidGauge reports whether gauge names a supported breakdown.
func ValidGauge(gauge string) bool {
	for _, known := range GaugeTypes {
		if known == gauge {
			return true
		}
	}
	return false
}

// MetricData holds the computed values for one metric over a window.
type MetricData struct {
	Value            int64   `json:"value"`
	PreviousValue    int64   `json:"previousValue"`
	Trend            string  `json:"trend"`
	ChangePercentage float64 `json:"changePercentage"`
	DailyAverage     float64 `json:"dailyAverage"`
}

// Metric is one dashboard entry. Error carries a soft-failure annotation
// when a source was unavailable and the value degraded to zero.
type Metric struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Interval    string     `json:"interval"`
	Data        MetricData `json:"data"`
	Error       string     `json:"error,omitempty"`
}

// TimeRange echoes the effective query window back to the caller.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DashboardResponse is the full metrics payload for a window.
type DashboardResponse struct {
	Metrics         []Metric  `json:"metrics"`
	TimeRange       TimeRange `json:"timeRange"`
	TotalRegistered int64     `json:"totalRegisteredUsers"`
}

// UserStat is one user's activity summary inside a gauge bucket.
type UserStat struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Actions     int64     `json:"actions"`
	FirstAction time.Time `json:"firstAction"`
	LastAction  time.Time `json:"lastAction"`
	SpanDays    int       `json:"spanDays"`
}

// UserStatsResponse is the per-user breakdown for one gauge type.
type UserStatsResponse struct {
	GaugeType string     `json:"gaugeType"`
	Users     []UserStat `json:"users"`
	TimeRange TimeRange  `json:"timeRange"`
}

// UserEvent is one raw instrumentation event.
type UserEvent struct {
	EventName string    `json:"eventName"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// UserEventsResponse lists a user's raw events, newest first.
type UserEventsResponse struct {
	UserID    string      `json:"userId"`
	Events    []UserEvent `json:"events"`
	TimeRange TimeRange   `json:"timeRange"`
}
