package engine

import "github.com/shopspring/decimal"

// RunningSum computes a per-partition cumulative sum of metric over results
// that are already grouped at their finest granularity and sorted ascending
// within each partition; input order is the tie-break, so the output is
// deterministic. Each row is copied with the cumulative value added under
// out; the input is never mutated.
func RunningSum(results []AggregateResult, partitionFn func(AggregateResult) string, metric, out string) []AggregateResult {
	totals := make(map[string]decimal.Decimal)

	cumulative := make([]AggregateResult, 0, len(results))
	for _, res := range results {
		p := partitionFn(res)
		running := totals[p].Add(res.MetricOrZero(metric))
		totals[p] = running

		metrics := make(map[string]decimal.NullDecimal, len(res.Metrics)+1)
		for name, v := range res.Metrics {
			metrics[name] = v
		}
		metrics[out] = NullFrom(running)
		cumulative = append(cumulative, AggregateResult{Key: res.Key, Metrics: metrics})
	}
	return cumulative
}
