package eventstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCompositeQueryShape(t *testing.T) {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC)

	query := BuildCompositeQuery(
		[]Condition{
			EventCondition(EventThreadMessage),
			SucceededCondition(),
			DateRangeCondition(start, end),
		},
		CardinalityAgg(),
	)

	raw, err := json.Marshal(query)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, float64(0), decoded["size"])

	must := decoded["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
	require.Len(t, must, 3)
	assert.Equal(t, EventThreadMessage, must[0].(map[string]any)["term"].(map[string]any)[FieldEventName])
	assert.Equal(t, StatusSuccess, must[1].(map[string]any)["term"].(map[string]any)[FieldStatus])

	bounds := must[2].(map[string]any)["range"].(map[string]any)[FieldTimestamp].(map[string]any)
	assert.Equal(t, float64(start.UnixMilli()), bounds["gte"])
	assert.Equal(t, float64(end.UnixMilli()), bounds["lte"])

	cardinality := decoded["aggs"].(map[string]any)[AggUniqueUsers].(map[string]any)["cardinality"].(map[string]any)
	assert.Equal(t, FieldTraceID, cardinality["field"])
}

func TestTermsCountAggScripts(t *testing.T) {
	bounded := TermsCountAgg(5, 20)
	selector := bounded[AggUserCounts].Aggs["count_filter"].BucketSelector
	require.NotNil(t, selector)
	assert.Equal(t, "params.count >= 5 && params.count <= 20", selector.Script)
	assert.Equal(t, map[string]string{"count": "_count"}, selector.BucketsPath)

	open := TermsCountAgg(21, 0)
	assert.Equal(t, "params.count >= 21", open[AggUserCounts].Aggs["count_filter"].BucketSelector.Script)

	terms := bounded[AggUserCounts].Terms
	require.NotNil(t, terms)
	assert.Equal(t, FieldTraceID, terms.Field)
	assert.Equal(t, 10000, terms.Size)
}

func TestUserActivityAggShape(t *testing.T) {
	aggs := UserActivityAgg()
	users := aggs[AggUsers]
	require.NotNil(t, users.Terms)
	assert.Equal(t, FieldTraceID, users.Terms.Field)

	require.NotNil(t, users.Aggs[AggFirstAction].Min)
	assert.Equal(t, FieldTimestamp, users.Aggs[AggFirstAction].Min.Field)
	require.NotNil(t, users.Aggs[AggLastAction].Max)
	require.NotNil(t, users.Aggs[AggUserEmail].TopHits)
	assert.Equal(t, 1, users.Aggs[AggUserEmail].TopHits.Size)

	histogram := users.Aggs[AggActions].DateHistogram
	require.NotNil(t, histogram)
	assert.Equal(t, FieldTimestamp, histogram.Field)
	assert.Equal(t, "day", histogram.CalendarInterval)
	assert.Equal(t, 1, histogram.MinDocCount)
}

func TestEventSearchQuerySortsNewestFirst(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	query := EventSearchQuery("user-1", start, end, 50)
	assert.Equal(t, 50, query.Size)
	require.Len(t, query.Sort, 1)
	assert.Equal(t, "desc", query.Sort[0][FieldTimestamp].Order)

	must := query.Query.Bool.Must
	require.Len(t, must, 2)
	assert.Equal(t, "user-1", must[0].Term[FieldTraceID])
}
