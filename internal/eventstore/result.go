package eventstore

import "time"

// Result is the decoded body of a search response.
type Result struct {
	Took         int                     `json:"took"`
	TimedOut     bool                    `json:"timed_out"`
	Hits         HitsEnvelope            `json:"hits"`
	Aggregations map[string]AggResult    `json:"aggregations"`
}

// HitsEnvelope wraps the hit list and total count.
type HitsEnvelope struct {
	Total TotalHits `json:"total"`
	Hits  []Hit     `json:"hits"`
}

// TotalHits is the hit count reported by the store.
type TotalHits struct {
	Value int64 `json:"value"`
}

// Hit is a single matched document.
type Hit struct {
	ID     string `json:"_id"`
	Source Event  `json:"_source"`
}

// Event is the indexed document shape for a single instrumentation event.
type Event struct {
	TraceID   string `json:"trace_id"`
	EventName string `json:"event_name"`
	Status    string `json:"status"`
	Email     string `json:"email"`
	Timestamp int64  `json:"timestamp"`
}

// OccurredAt converts the millisecond-epoch timestamp to UTC time.
func (e Event) OccurredAt() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// AggResult is a single aggregation result node.
type AggResult struct {
	Value   *float64    `json:"value,omitempty"`
	Buckets []AggBucket `json:"buckets,omitempty"`
}

// AggBucket is one terms bucket with the sub-aggregations the builders request.
type AggBucket struct {
	Key         string               `json:"key"`
	DocCount    int64                `json:"doc_count"`
	Actions     *DateHistogramResult `json:"actions,omitempty"`
	FirstAction *AggResult           `json:"first_action,omitempty"`
	LastAction  *AggResult           `json:"last_action,omitempty"`
	UserEmail   *HitsWrapper         `json:"user_email,omitempty"`
}

// DateHistogramResult holds the interval buckets of a date_histogram
// sub-aggregation.
type DateHistogramResult struct {
	Buckets []DateBucket `json:"buckets"`
}

// DateBucket is one calendar interval keyed by its millisecond epoch.
type DateBucket struct {
	Key      int64 `json:"key"`
	DocCount int64 `json:"doc_count"`
}

// HitsWrapper nests a hits envelope inside a top_hits aggregation result.
type HitsWrapper struct {
	Hits HitsEnvelope `json:"hits"`
}

// DistinctCount returns the value of a cardinality aggregation, zero when the
// aggregation is absent or empty.
func (r *Result) DistinctCount(name string) int64 {
	if r == nil {
		return 0
	}
	agg, ok := r.Aggregations[name]
	if !ok || agg.Value == nil {
		return 0
	}
	return int64(*agg.Value)
}

// BucketCount returns the number of buckets produced by a terms aggregation.
func (r *Result) BucketCount(name string) int64 {
	if r == nil {
		return 0
	}
	return int64(len(r.Aggregations[name].Buckets))
}

// ActivityBuckets returns per-user activity derived from a UserActivityAgg.
func (r *Result) ActivityBuckets(name string) []UserActivity {
	if r == nil {
		return nil
	}
	buckets := r.Aggregations[name].Buckets
	activity := make([]UserActivity, 0, len(buckets))
	for _, bucket := range buckets {
		entry := UserActivity{
			UserID:  bucket.Key,
			Actions: bucket.DocCount,
		}
		if bucket.FirstAction != nil && bucket.FirstAction.Value != nil {
			entry.FirstAction = time.UnixMilli(int64(*bucket.FirstAction.Value)).UTC()
		}
		if bucket.LastAction != nil && bucket.LastAction.Value != nil {
			entry.LastAction = time.UnixMilli(int64(*bucket.LastAction.Value)).UTC()
		}
		if bucket.UserEmail != nil && len(bucket.UserEmail.Hits.Hits) > 0 {
			entry.Email = bucket.UserEmail.Hits.Hits[0].Source.Email
		}
		if bucket.Actions != nil {
			for _, day := range bucket.Actions.Buckets {
				if day.DocCount == 0 {
					continue
				}
				entry.ActiveDays = append(entry.ActiveDays, time.UnixMilli(day.Key).UTC())
			}
		}
		activity = append(activity, entry)
	}
	return activity
}

// UserActivity summarizes one user's behavior inside a query window.
// ActiveDays lists the UTC calendar days carrying at least one event.
type UserActivity struct {
	UserID      string
	Email       string
	Actions     int64
	FirstAction time.Time
	LastAction  time.Time
	ActiveDays  []time.Time
}

// Events returns the raw documents from a hit-returning search.
func (r *Result) Events() []Event {
	if r == nil {
		return nil
	}
	events := make([]Event, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		events = append(events, hit.Source)
	}
	return events
}
