package eventstore

// Query is the JSON search payload sent to the event store.
type Query struct {
	Size  int                    `json:"size"`
	Query *Clause                `json:"query,omitempty"`
	Aggs  map[string]Aggregation `json:"aggs,omitempty"`
	Sort  []map[string]SortOrder `json:"sort,omitempty"`
}

// Clause is the top-level query clause. Only boolean queries are issued today.
type Clause struct {
	Bool *BoolQuery `json:"bool,omitempty"`
}

// BoolQuery combines conditions that must all match.
type BoolQuery struct {
	Must []Condition `json:"must,omitempty"`
}

// Condition is a single match requirement. Exactly one member is set.
type Condition struct {
	Term  map[string]string      `json:"term,omitempty"`
	Range map[string]RangeBounds `json:"range,omitempty"`
}

// RangeBounds holds inclusive millisecond-epoch bounds for a range condition.
type RangeBounds struct {
	GTE int64 `json:"gte"`
	LTE int64 `json:"lte"`
}

// SortOrder orders search hits on a field.
type SortOrder struct {
	Order string `json:"order"`
}

// Aggregation is a single aggregation node. Exactly one member besides Aggs is set.
type Aggregation struct {
	Cardinality    *FieldAgg              `json:"cardinality,omitempty"`
	Terms          *TermsAgg              `json:"terms,omitempty"`
	Min            *FieldAgg              `json:"min,omitempty"`
	Max            *FieldAgg              `json:"max,omitempty"`
	TopHits        *TopHitsAgg            `json:"top_hits,omitempty"`
	DateHistogram  *DateHistogramAgg      `json:"date_histogram,omitempty"`
	BucketSelector *BucketSelectorAgg     `json:"bucket_selector,omitempty"`
	Aggs           map[string]Aggregation `json:"aggs,omitempty"`
}

// FieldAgg targets a single document field.
type FieldAgg struct {
	Field string `json:"field"`
}

// TermsAgg buckets documents by distinct field values.
type TermsAgg struct {
	Field string `json:"field"`
	Size  int    `json:"size"`
}

// TopHitsAgg returns the top documents per bucket.
type TopHitsAgg struct {
	Size   int      `json:"size"`
	Source []string `json:"_source,omitempty"`
}

// DateHistogramAgg buckets documents by calendar interval. MinDocCount of 1
// keeps empty gap intervals out of the response.
type DateHistogramAgg struct {
	Field            string `json:"field"`
	CalendarInterval string `json:"calendar_interval"`
	MinDocCount      int    `json:"min_doc_count"`
}

// BucketSelectorAgg filters parent buckets with a painless script.
type BucketSelectorAgg struct {
	BucketsPath map[string]string `json:"buckets_path"`
	Script      string            `json:"script"`
}
