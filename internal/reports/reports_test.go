package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"salesboard/internal/engine"
	"salesboard/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptrInt(v int64) *int64 { return &v }

// seedStore is the shared scenario:
//
//	Alice (NYC) orders 3 then 2 Widgets; order 1 carries a 5.00 discount.
//	Bob (Boston) orders 4 Gadgets. Dave (NYC) orders 2 Gadgets and 5 Widgets.
//	Carol (NYC) never orders; the Lamp is never ordered.
//
// Gross per order: 30, 20, 100, 50, 50. The only discount makes order 1 net
// 25, so total net revenue is 245 against 250 gross.
func seedStore() *engine.Store {
	return engine.NewStore(
		[]models.Customer{
			{ID: 1, Name: "Alice", City: "NYC"},
			{ID: 2, Name: "Bob", City: "Boston"},
			{ID: 3, Name: "Carol", City: "NYC"},
			{ID: 4, Name: "Dave", City: "NYC"},
		},
		[]models.Product{
			{ID: 1, Name: "Widget", Price: dec("10.00"), Category: "Toys"},
			{ID: 2, Name: "Gadget", Price: dec("25.00"), Category: "Tools"},
			{ID: 3, Name: "Lamp", Price: dec("40.00"), Category: "Home"},
		},
		[]models.Order{
			{ID: 1, CustomerID: 1, ProductID: 1, Quantity: 3, OrderDate: date("2024-01-02")},
			{ID: 2, CustomerID: 1, ProductID: 1, Quantity: 2, OrderDate: date("2024-01-09")},
			{ID: 3, CustomerID: 2, ProductID: 2, Quantity: 4, OrderDate: date("2024-01-03")},
			{ID: 4, CustomerID: 4, ProductID: 2, Quantity: 2, OrderDate: date("2024-02-05")},
			{ID: 5, CustomerID: 4, ProductID: 1, Quantity: 5, OrderDate: date("2024-02-06")},
		},
		[]models.Discount{
			{ID: 1, OrderID: 1, DiscountAmount: dec("5.00")},
		},
	)
}
