package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekRow(product, week, revenue string) AggregateResult {
	return AggregateResult{
		Key:     Key(product, week),
		Metrics: map[string]decimal.NullDecimal{"revenue": NullFrom(dec(revenue))},
	}
}

func TestRunningSumAccumulatesPerPartition(t *testing.T) {
	results := []AggregateResult{
		weekRow("widget", "2024-01", "10"),
		weekRow("widget", "2024-02", "20"),
		weekRow("gadget", "2024-01", "5"),
		weekRow("widget", "2024-03", "30"),
		weekRow("gadget", "2024-02", "7"),
	}

	out := RunningSum(results, func(r AggregateResult) string { return r.Key.Part(0) }, "revenue", "running")
	require.Len(t, out, 5)

	want := []string{"10", "30", "5", "60", "12"}
	for i, w := range want {
		assert.True(t, out[i].MetricOrZero("running").Equal(dec(w)), "row %d got %s", i, out[i].MetricOrZero("running"))
	}

	// Source metric is carried alongside the cumulative one.
	assert.True(t, out[1].MetricOrZero("revenue").Equal(dec("20")))
}

func TestRunningSumDoesNotMutateInput(t *testing.T) {
	results := []AggregateResult{weekRow("widget", "2024-01", "10")}

	_ = RunningSum(results, func(r AggregateResult) string { return r.Key.Part(0) }, "revenue", "running")

	_, ok := results[0].Metrics["running"]
	assert.False(t, ok)
}

func TestRunningSumMissingMetricCountsAsZero(t *testing.T) {
	results := []AggregateResult{
		weekRow("widget", "2024-01", "10"),
		{Key: Key("widget", "2024-02"), Metrics: map[string]decimal.NullDecimal{}},
		weekRow("widget", "2024-03", "5"),
	}

	out := RunningSum(results, func(r AggregateResult) string { return r.Key.Part(0) }, "revenue", "running")
	assert.True(t, out[1].MetricOrZero("running").Equal(dec("10")))
	assert.True(t, out[2].MetricOrZero("running").Equal(dec("15")))
}
