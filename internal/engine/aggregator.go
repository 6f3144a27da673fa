package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Reducer accumulates one output metric over the rows of a group.
type Reducer struct {
	kind     reducerKind
	expr     func(FactRow) decimal.NullDecimal
	distinct func(FactRow) string
}

type reducerKind int

const (
	reduceSum reducerKind = iota
	reduceCount
	reduceCountRows
	reduceCountDistinct
	reduceAvg
)

// Sum adds the expression over the group. Null addends contribute nothing;
// a group with no valid addends sums to zero.
func Sum(expr func(FactRow) decimal.NullDecimal) Reducer {
	return Reducer{kind: reduceSum, expr: expr}
}

// Count counts rows where the expression has a value, SQL COUNT(expr).
func Count(expr func(FactRow) decimal.NullDecimal) Reducer {
	return Reducer{kind: reduceCount, expr: expr}
}

// CountRows counts every row in the group, SQL COUNT(*).
func CountRows() Reducer {
	return Reducer{kind: reduceCountRows}
}

// CountDistinct counts distinct non-empty keys, SQL COUNT(DISTINCT expr).
func CountDistinct(key func(FactRow) string) Reducer {
	return Reducer{kind: reduceCountDistinct, distinct: key}
}

// Avg averages the valid addends. A group with none yields no value rather
// than zero; that distinction is what COALESCE downstream relies on.
func Avg(expr func(FactRow) decimal.NullDecimal) Reducer {
	return Reducer{kind: reduceAvg, expr: expr}
}

type accumulator struct {
	sum  decimal.Decimal
	n    int64
	seen map[string]struct{}
}

func (a *accumulator) add(r Reducer, row FactRow) {
	switch r.kind {
	case reduceCountRows:
		a.n++
	case reduceCountDistinct:
		k := r.distinct(row)
		if k == "" {
			return
		}
		if a.seen == nil {
			a.seen = make(map[string]struct{})
		}
		a.seen[k] = struct{}{}
	default:
		v := r.expr(row)
		if !v.Valid {
			return
		}
		a.sum = a.sum.Add(v.Decimal)
		a.n++
	}
}

func (a *accumulator) finalize(r Reducer) decimal.NullDecimal {
	switch r.kind {
	case reduceSum:
		return NullFrom(a.sum)
	case reduceCount, reduceCountRows:
		return NullFrom(decimal.NewFromInt(a.n))
	case reduceCountDistinct:
		return NullFrom(decimal.NewFromInt(int64(len(a.seen))))
	case reduceAvg:
		if a.n == 0 {
			return decimal.NullDecimal{}
		}
		return NullFrom(a.sum.Div(decimal.NewFromInt(a.n)))
	}
	return decimal.NullDecimal{}
}

// Aggregate buckets rows by keyFn and reduces each bucket once per named
// reducer. Result order follows the first appearance of each key, so the
// output is deterministic before any caller-imposed sort. The having
// predicate runs only after every row has been reduced; filtering during
// reduction would skew dependent averages.
func Aggregate(rows []FactRow, keyFn func(FactRow) GroupKey, reducers map[string]Reducer, having func(AggregateResult) bool) []AggregateResult {
	type group struct {
		key  GroupKey
		accs map[string]*accumulator
	}

	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, row := range rows {
		key := keyFn(row)
		id := key.id()
		g, ok := groups[id]
		if !ok {
			g = &group{key: key, accs: make(map[string]*accumulator, len(reducers))}
			for name := range reducers {
				g.accs[name] = &accumulator{}
			}
			groups[id] = g
			order = append(order, id)
		}
		for name, r := range reducers {
			g.accs[name].add(r, row)
		}
	}

	results := make([]AggregateResult, 0, len(order))
	for _, id := range order {
		g := groups[id]
		res := AggregateResult{
			Key:     g.key,
			Metrics: make(map[string]decimal.NullDecimal, len(reducers)),
		}
		for name, r := range reducers {
			res.Metrics[name] = g.accs[name].finalize(r)
		}
		if having != nil && !having(res) {
			continue
		}
		results = append(results, res)
	}
	return results
}

// SortResults stably sorts results in place by the comparison function,
// negative meaning a before b.
func SortResults(results []AggregateResult, cmp func(a, b AggregateResult) int) {
	sort.SliceStable(results, func(i, j int) bool {
		return cmp(results[i], results[j]) < 0
	})
}
