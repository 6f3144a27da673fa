package engine

import (
	"time"

	"salesboard/internal/models"
)

// OrderFilter is a typed, composable restriction on the order collection.
// It replaces string-built WHERE clauses: validate once, then apply.
type OrderFilter struct {
	ProductID  *int64
	CustomerID *int64
	From       *time.Time // inclusive
	To         *time.Time // inclusive
}

func (f OrderFilter) Validate() error {
	if f.ProductID != nil && *f.ProductID <= 0 {
		return invalidf("product_id", "must be positive, got %d", *f.ProductID)
	}
	if f.CustomerID != nil && *f.CustomerID <= 0 {
		return invalidf("customer_id", "must be positive, got %d", *f.CustomerID)
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return invalidf("date range", "start %s is after end %s",
			f.From.Format("2006-01-02"), f.To.Format("2006-01-02"))
	}
	return nil
}

func (f OrderFilter) Match(o models.Order) bool {
	if f.ProductID != nil && o.ProductID != *f.ProductID {
		return false
	}
	if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
		return false
	}
	if f.From != nil && o.OrderDate.Before(*f.From) {
		return false
	}
	if f.To != nil && o.OrderDate.After(*f.To) {
		return false
	}
	return true
}

// Apply returns the orders matching the filter, in input order.
func (f OrderFilter) Apply(orders []models.Order) []models.Order {
	if f.ProductID == nil && f.CustomerID == nil && f.From == nil && f.To == nil {
		return orders
	}
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}
