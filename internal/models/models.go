package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// The four snapshot entities. The engine treats them as read-only values;
// whoever materializes the snapshot owns mutation.

type Customer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

type Order struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int64     `json:"quantity"`
	OrderDate  time.Time `json:"order_date"`
}

// Discount is attached to one order. An order may carry zero or several
// discounts; consumers sum them.
type Discount struct {
	ID             int64           `json:"id"`
	OrderID        int64           `json:"order_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}
