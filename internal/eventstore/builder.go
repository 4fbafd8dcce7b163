package eventstore

import (
	"fmt"
	"time"
)

// Document fields indexed by the event store.
const (
	FieldEventName = "event_name.keyword"
	FieldStatus    = "status.keyword"
	FieldTraceID   = "trace_id.keyword"
	FieldEmail     = "email.keyword"
	FieldTimestamp = "timestamp"
)

// Instrumentation event names emitted by the product.
const (
	EventThreadMessage    = "handleMessageInThread_start"
	EventSketchUpload     = "uploadSketch_end"
	EventRenderStart      = "renderStart_end"
	EventProducerActivity = "producer_activity"
)

// StatusSuccess is the status value recorded for completed operations.
const StatusSuccess = "success"

// Aggregation names shared between builders and result readers.
const (
	AggUniqueUsers = "unique_users"
	AggUserCounts  = "user_counts"
	AggUsers       = "users"
	AggActions     = "actions"
	AggFirstAction = "first_action"
	AggLastAction  = "last_action"
	AggUserEmail   = "user_email"
)

// termsBucketLimit bounds per-user terms aggregations. The store refuses
// unbounded terms aggs, and active user counts stay well under this.
const termsBucketLimit = 10000

// TermCondition matches documents whose field equals value exactly.
func TermCondition(field, value string) Condition {
	return Condition{Term: map[string]string{field: value}}
}

// EventCondition matches documents for a single instrumentation event.
func EventCondition(eventName string) Condition {
	return TermCondition(FieldEventName, eventName)
}

// SucceededCondition restricts documents to successfully completed operations.
func SucceededCondition() Condition {
	return TermCondition(FieldStatus, StatusSuccess)
}

// DateRangeCondition bounds the timestamp field to [start, end] inclusive,
// expressed in millisecond epochs.
func DateRangeCondition(start, end time.Time) Condition {
	return Condition{Range: map[string]RangeBounds{
		FieldTimestamp: {GTE: start.UnixMilli(), LTE: end.UnixMilli()},
	}}
}

// BuildCompositeQuery assembles an aggregation-only query (no hits returned)
// from match conditions and named aggregations.
func BuildCompositeQuery(conditions []Condition, aggs map[string]Aggregation) *Query {
	q := &Query{Size: 0, Aggs: aggs}
	if len(conditions) > 0 {
		q.Query = &Clause{Bool: &BoolQuery{Must: conditions}}
	}
	return q
}

// CardinalityAgg counts distinct users via the trace ID field.
func CardinalityAgg() map[string]Aggregation {
	return map[string]Aggregation{
		AggUniqueUsers: {Cardinality: &FieldAgg{Field: FieldTraceID}},
	}
}

// TermsCountAgg buckets events per user and keeps only users whose event
// count falls in [minCount, maxCount]. A maxCount of zero leaves the upper
// bound open.
func TermsCountAgg(minCount, maxCount int) map[string]Aggregation {
	return map[string]Aggregation{
		AggUserCounts: {
			Terms: &TermsAgg{Field: FieldTraceID, Size: termsBucketLimit},
			Aggs: map[string]Aggregation{
				"count_filter": {
					BucketSelector: &BucketSelectorAgg{
						BucketsPath: map[string]string{"count": "_count"},
						Script:      countScript(minCount, maxCount),
					},
				},
			},
		},
	}
}

func countScript(minCount, maxCount int) string {
	if maxCount > 0 {
		return fmt.Sprintf("params.count >= %d && params.count <= %d", minCount, maxCount)
	}
	return fmt.Sprintf("params.count >= %d", minCount)
}

// UserActivityAgg buckets events per user with a per-day activity histogram,
// first/last action timestamps and the user's most recent email address.
func UserActivityAgg() map[string]Aggregation {
	return map[string]Aggregation{
		AggUsers: {
			Terms: &TermsAgg{Field: FieldTraceID, Size: termsBucketLimit},
			Aggs: map[string]Aggregation{
				AggActions:     {DateHistogram: &DateHistogramAgg{Field: FieldTimestamp, CalendarInterval: "day", MinDocCount: 1}},
				AggFirstAction: {Min: &FieldAgg{Field: FieldTimestamp}},
				AggLastAction:  {Max: &FieldAgg{Field: FieldTimestamp}},
				AggUserEmail:   {TopHits: &TopHitsAgg{Size: 1, Source: []string{"email"}}},
			},
		},
	}
}

// EventSearchQuery fetches a user's raw events in the window, newest first.
func EventSearchQuery(userID string, start, end time.Time, limit int) *Query {
	return &Query{
		Size: limit,
		Query: &Clause{Bool: &BoolQuery{Must: []Condition{
			TermCondition(FieldTraceID, userID),
			DateRangeCondition(start, end),
		}}},
		Sort: []map[string]SortOrder{
			{FieldTimestamp: {Order: "desc"}},
		},
	}
}
