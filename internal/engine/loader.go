package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"salesboard/internal/models"
)

// Seed-file rows. Amounts and dates stay strings until validated; yaml.v3
// would otherwise round-trip money through float64.

type seedFile struct {
	Customers []seedCustomer `yaml:"customers"`
	Products  []seedProduct  `yaml:"products"`
	Orders    []seedOrder    `yaml:"orders"`
	Discounts []seedDiscount `yaml:"discounts"`
}

type seedCustomer struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
	City string `yaml:"city"`
}

type seedProduct struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Category string `yaml:"category"`
}

type seedOrder struct {
	ID         int64  `yaml:"id"`
	CustomerID int64  `yaml:"customer_id"`
	ProductID  int64  `yaml:"product_id"`
	Quantity   int64  `yaml:"quantity"`
	OrderDate  string `yaml:"order_date"`
}

type seedDiscount struct {
	ID             int64  `yaml:"id"`
	OrderID        int64  `yaml:"order_id"`
	DiscountAmount string `yaml:"discount_amount"`
}

const dateLayout = "2006-01-02"

// LoadSnapshot reads a YAML seed file holding the four collections, enforces
// the write-time invariants the engine assumes (price >= 0, quantity > 0,
// discount >= 0, parseable dates), and builds the immutable Store.
func LoadSnapshot(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return ParseSnapshot(raw)
}

// ParseSnapshot builds a Store from raw YAML seed data.
func ParseSnapshot(raw []byte) (*Store, error) {
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	customers := make([]models.Customer, 0, len(seed.Customers))
	for _, c := range seed.Customers {
		customers = append(customers, models.Customer{ID: c.ID, Name: c.Name, City: c.City})
	}

	products := make([]models.Product, 0, len(seed.Products))
	for _, p := range seed.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, invalidf("price", "product %d: %q is not a number", p.ID, p.Price)
		}
		if price.IsNegative() {
			return nil, invalidf("price", "product %d: must not be negative, got %s", p.ID, price)
		}
		products = append(products, models.Product{ID: p.ID, Name: p.Name, Price: price, Category: p.Category})
	}

	orders := make([]models.Order, 0, len(seed.Orders))
	for _, o := range seed.Orders {
		if o.Quantity <= 0 {
			return nil, invalidf("quantity", "order %d: must be positive, got %d", o.ID, o.Quantity)
		}
		date, err := time.Parse(dateLayout, o.OrderDate)
		if err != nil {
			return nil, invalidf("order_date", "order %d: %q is not a %s date", o.ID, o.OrderDate, dateLayout)
		}
		orders = append(orders, models.Order{
			ID:         o.ID,
			CustomerID: o.CustomerID,
			ProductID:  o.ProductID,
			Quantity:   o.Quantity,
			OrderDate:  date,
		})
	}

	discounts := make([]models.Discount, 0, len(seed.Discounts))
	for _, d := range seed.Discounts {
		amount, err := decimal.NewFromString(d.DiscountAmount)
		if err != nil {
			return nil, invalidf("discount_amount", "discount %d: %q is not a number", d.ID, d.DiscountAmount)
		}
		if amount.IsNegative() {
			return nil, invalidf("discount_amount", "discount %d: must not be negative, got %s", d.ID, amount)
		}
		discounts = append(discounts, models.Discount{ID: d.ID, OrderID: d.OrderID, DiscountAmount: amount})
	}

	return NewStore(customers, products, orders, discounts), nil
}
