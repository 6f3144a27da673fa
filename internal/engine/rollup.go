package engine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// subtotalSentinel marks a dropped rollup dimension. It is not a real
// dimension value; \x00 keeps it out of the value space of entity fields.
const subtotalSentinel = "\x00subtotal"

// RollupRow is one subtotal level of a hierarchical rollup. Key always has
// one part per dimension; dropped dimensions hold the subtotal sentinel.
// Level is the number of real dimensions retained (0 for the grand total).
type RollupRow struct {
	Key     GroupKey
	Level   int
	Metrics map[string]decimal.NullDecimal
}

// Dimension returns the i-th dimension value, or nil for a subtotal slot.
func (r RollupRow) Dimension(i int) *string {
	v := r.Key.Part(i)
	if v == subtotalSentinel {
		return nil
	}
	return &v
}

func (r RollupRow) Metric(name string) decimal.NullDecimal {
	return r.Metrics[name]
}

func (r RollupRow) MetricOrZero(name string) decimal.Decimal {
	m := r.Metrics[name]
	if !m.Valid {
		return decimal.Zero
	}
	return m.Decimal
}

// Rollup computes the drop-trailing-dimensions subtotal hierarchy: the full
// grouping, then each coarser level, down to the grand total. Every level is
// reduced independently from the base rows, never rolled forward from a finer
// level. Output is ordered by each dimension ascending with subtotal rows
// last within their slice of the hierarchy, mirroring NULLS LAST.
func Rollup(rows []FactRow, dims []func(FactRow) string, reducers map[string]Reducer) []RollupRow {
	out := make([]RollupRow, 0)
	for level := len(dims); level >= 0; level-- {
		keyFn := func(r FactRow) GroupKey {
			parts := make([]string, len(dims))
			for i := range dims {
				if i < level {
					parts[i] = dims[i](r)
				} else {
					parts[i] = subtotalSentinel
				}
			}
			return GroupKey{Parts: parts}
		}
		for _, res := range Aggregate(rows, keyFn, reducers, nil) {
			out = append(out, RollupRow{Key: res.Key, Level: level, Metrics: res.Metrics})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return compareRollupKeys(out[i].Key, out[j].Key) < 0
	})
	return out
}

func compareRollupKeys(a, b GroupKey) int {
	for i := range a.Parts {
		av, bv := a.Parts[i], b.Parts[i]
		if av == bv {
			continue
		}
		if av == subtotalSentinel {
			return 1
		}
		if bv == subtotalSentinel {
			return -1
		}
		return strings.Compare(av, bv)
	}
	return 0
}
