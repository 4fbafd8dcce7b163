package dashboard

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/draftlab/dashboard-backend/internal/directory"
	"github.com/draftlab/dashboard-backend/internal/eventstore"
	pkgerrors "github.com/draftlab/dashboard-backend/pkg/errors"
)

// minActionsForStats filters out one-off users; a single event carries no
// cadence signal.
const minActionsForStats = 2

// defaultEventLimit caps raw event listings per user.
const defaultEventLimit = 100

// UserStats returns the per-user activity breakdown for one gauge type.
// Users are classified by their activity cadence inside the window and
// joined against the directory for display names.
func (a *Aggregator) UserStats(ctx context.Context, w TimeWindow, gauge string) (*UserStatsResponse, error) {
	if !ValidGauge(gauge) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown gauge type").WithDetails(gauge)
	}

	query := eventstore.BuildCompositeQuery(
		[]eventstore.Condition{eventstore.DateRangeCondition(w.Start, w.End)},
		eventstore.UserActivityAgg(),
	)
	result, err := a.store.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	stats := make([]UserStat, 0)
	ids := make([]string, 0)
	for _, entry := range result.ActivityBuckets(eventstore.AggUsers) {
		if entry.Actions < minActionsForStats {
			continue
		}
		spanDays := int(entry.LastAction.Sub(entry.FirstAction) / (24 * time.Hour))
		if !matchesGauge(gauge, spanDays, entry.ActiveDays) {
			continue
		}
		stats = append(stats, UserStat{
			UserID:      entry.UserID,
			Email:       entry.Email,
			Actions:     entry.Actions,
			FirstAction: entry.FirstAction,
			LastAction:  entry.LastAction,
			SpanDays:    spanDays,
		})
		ids = append(ids, entry.UserID)
	}

	a.joinDirectoryDetails(ctx, stats, ids)

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Actions > stats[j].Actions })

	return &UserStatsResponse{
		GaugeType: gauge,
		Users:     stats,
		TimeRange: w.Range(),
	}, nil
}

// joinDirectoryDetails fills names and emails. A directory outage leaves
// placeholders rather than failing the breakdown.
func (a *Aggregator) joinDirectoryDetails(ctx context.Context, stats []UserStat, ids []string) {
	details, err := a.dir.LookupDetails(ctx, ids)
	if err != nil {
		a.logg.Error(ctx, "directory lookup failed, keeping placeholders", err)
		details = nil
	}

	for i := range stats {
		if resolved, ok := details[stats[i].UserID]; ok {
			if resolved.Name != "" {
				stats[i].Name = resolved.Name
			}
			if resolved.Email != "" {
				stats[i].Email = resolved.Email
			}
		}
		if stats[i].Name == "" {
			stats[i].Name = directory.UnknownName
		}
	}
}

// matchesGauge classifies one user's cadence. Consecutive-day membership
// requires two adjacent active calendar days, regardless of the overall
// span; the remaining gauges bucket by first-to-last span.
func matchesGauge(gauge string, spanDays int, activeDays []time.Time) bool {
	switch gauge {
	case GaugeConsecutiveDays:
		return hasAdjacentDays(activeDays)
	case GaugeOneToTwoWeeks:
		return spanDays >= 7 && spanDays <= 14
	case GaugeTwoToThreeWeeks:
		return spanDays > 14 && spanDays <= 21
	case GaugeMonthApart:
		return spanDays >= 28
	default:
		return false
	}
}

func hasAdjacentDays(days []time.Time) bool {
	active := make(map[int64]struct{}, len(days))
	for _, day := range days {
		active[day.Unix()] = struct{}{}
	}
	for _, day := range days {
		if _, ok := active[day.AddDate(0, 0, 1).Unix()]; ok {
			return true
		}
	}
	return false
}

// UserEvents lists one user's raw events inside the window, newest first.
func (a *Aggregator) UserEvents(ctx context.Context, userID string, w TimeWindow, limit int) (*UserEventsResponse, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trace ID is required")
	}
	if limit <= 0 || limit > 1000 {
		limit = defaultEventLimit
	}

	result, err := a.store.Search(ctx, eventstore.EventSearchQuery(trimmed, w.Start, w.End, limit))
	if err != nil {
		return nil, err
	}

	raw := result.Events()
	events := make([]UserEvent, 0, len(raw))
	for _, event := range raw {
		events = append(events, UserEvent{
			EventName: event.EventName,
			Status:    event.Status,
			Timestamp: event.OccurredAt(),
		})
	}

	return &UserEventsResponse{
		UserID:    trimmed,
		Events:    events,
		TimeRange: w.Range(),
	}, nil
}
