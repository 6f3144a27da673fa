// Package reports wires the engine's join, aggregation, ranking, rollup, and
// running-sum stages into the named business reports. Every function is
// stateless: it reads one immutable store snapshot and returns an ordered
// result set.
package reports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salesboard/internal/engine"
)

func sortSlice[T any](s []T, cmp func(a, b T) int) {
	sort.SliceStable(s, func(i, j int) bool { return cmp(s[i], s[j]) < 0 })
}

func idPart(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(part string) int64 {
	id, _ := strconv.ParseInt(part, 10, 64)
	return id
}

// monthBucket formats an order date as YYYY-MM.
func monthBucket(t time.Time) string {
	return t.Format("2006-01")
}

// isoWeekBucket formats an order date as ISO year-week (IYYY-IW).
func isoWeekBucket(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-%02d", year, week)
}

// weekStart truncates a date to its Monday.
func weekStart(t time.Time) time.Time {
	back := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -back)
}

// discountOf exposes the row's summed discount as an addend that is absent
// for order-less left-join rows.
func discountOf(r engine.FactRow) decimal.NullDecimal {
	if r.Order == nil {
		return decimal.NullDecimal{}
	}
	return engine.NullFrom(r.Discount)
}

func customerPart(r engine.FactRow) string {
	if r.Customer == nil {
		return ""
	}
	return idPart(r.Customer.ID)
}

// cmpDecimal orders ascending; use the negation for descending sorts.
func cmpDecimal(a, b decimal.Decimal) int {
	return a.Cmp(b)
}

func cmpMetricDesc(name string) func(a, b engine.AggregateResult) int {
	return func(a, b engine.AggregateResult) int {
		return b.MetricOrZero(name).Cmp(a.MetricOrZero(name))
	}
}

func cmpParts(a, b engine.GroupKey, idx ...int) int {
	for _, i := range idx {
		if c := strings.Compare(a.Part(i), b.Part(i)); c != 0 {
			return c
		}
	}
	return 0
}

func cmpIDParts(a, b engine.GroupKey, idx ...int) int {
	for _, i := range idx {
		av, bv := parseID(a.Part(i)), parseID(b.Part(i))
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}
