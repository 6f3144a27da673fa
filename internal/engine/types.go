package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"salesboard/internal/models"
)

// FactRow is one denormalized order enriched with the sides a report joined
// in. Product and Customer are nil when a left join could not resolve them;
// Order is nil only on the product-driven join for products without orders.
// Discount is the summed discount for the order, zero when absent.
type FactRow struct {
	Order    *models.Order
	Product  *models.Product
	Customer *models.Customer
	Discount decimal.Decimal
}

// GrossAmount is quantity × price, or no value when either side is missing.
func (r FactRow) GrossAmount() decimal.NullDecimal {
	if r.Order == nil || r.Product == nil {
		return decimal.NullDecimal{}
	}
	return NullFrom(r.Product.Price.Mul(decimal.NewFromInt(r.Order.Quantity)))
}

// NetAmount is gross minus the order's summed discount.
func (r FactRow) NetAmount() decimal.NullDecimal {
	gross := r.GrossAmount()
	if !gross.Valid {
		return gross
	}
	return NullFrom(gross.Decimal.Sub(r.Discount))
}

// Quantity is the ordered quantity, or no value for order-less rows.
func (r FactRow) Quantity() decimal.NullDecimal {
	if r.Order == nil {
		return decimal.NullDecimal{}
	}
	return NullFrom(decimal.NewFromInt(r.Order.Quantity))
}

// NullFrom wraps a decimal as a present NullDecimal.
func NullFrom(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// GroupKey is an ordered tuple of dimension values. Two keys bucket together
// exactly when all parts are equal.
type GroupKey struct {
	Parts []string
}

func Key(parts ...string) GroupKey {
	return GroupKey{Parts: parts}
}

// Part returns the i-th dimension value, empty when out of range.
func (k GroupKey) Part(i int) string {
	if i < 0 || i >= len(k.Parts) {
		return ""
	}
	return k.Parts[i]
}

// id is the map-key form. \x1f never occurs in dimension values drawn from
// entity fields.
func (k GroupKey) id() string {
	return strings.Join(k.Parts, "\x1f")
}

// AggregateResult is one reduced group: its key plus a named metric per
// reducer. Missing metrics read as no value.
type AggregateResult struct {
	Key     GroupKey
	Metrics map[string]decimal.NullDecimal
}

func (r AggregateResult) Metric(name string) decimal.NullDecimal {
	return r.Metrics[name]
}

// MetricOrZero coalesces a missing metric to zero, SQL COALESCE style.
func (r AggregateResult) MetricOrZero(name string) decimal.Decimal {
	m := r.Metrics[name]
	if !m.Valid {
		return decimal.Zero
	}
	return m.Decimal
}

// MetricInt reads a count-like metric as int64, zero when absent.
func (r AggregateResult) MetricInt(name string) int64 {
	return r.MetricOrZero(name).IntPart()
}
