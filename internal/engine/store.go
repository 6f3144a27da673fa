package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salesboard/internal/models"
)

// Store is an immutable snapshot of the four entity collections plus the
// indices every join needs. Build one with NewStore and never mutate the
// entities it hands out; concurrent report runs share it without locking.
type Store struct {
	SnapshotID uuid.UUID

	customers []models.Customer
	products  []models.Product
	orders    []models.Order
	discounts []models.Discount

	customersByID    map[int64]*models.Customer
	productsByID     map[int64]*models.Product
	discountsByOrder map[int64]decimal.Decimal
}

func NewStore(customers []models.Customer, products []models.Product, orders []models.Order, discounts []models.Discount) *Store {
	s := &Store{
		SnapshotID:       uuid.New(),
		customers:        append([]models.Customer(nil), customers...),
		products:         append([]models.Product(nil), products...),
		orders:           append([]models.Order(nil), orders...),
		discounts:        append([]models.Discount(nil), discounts...),
		customersByID:    make(map[int64]*models.Customer, len(customers)),
		productsByID:     make(map[int64]*models.Product, len(products)),
		discountsByOrder: make(map[int64]decimal.Decimal, len(discounts)),
	}

	for i := range s.customers {
		s.customersByID[s.customers[i].ID] = &s.customers[i]
	}
	for i := range s.products {
		s.productsByID[s.products[i].ID] = &s.products[i]
	}
	// Multiple discounts on one order sum into a single amount.
	for _, d := range s.discounts {
		s.discountsByOrder[d.OrderID] = s.discountsByOrder[d.OrderID].Add(d.DiscountAmount)
	}

	return s
}

func (s *Store) Customers() []models.Customer { return s.customers }
func (s *Store) Products() []models.Product   { return s.products }
func (s *Store) Orders() []models.Order       { return s.orders }

func (s *Store) Customer(id int64) (*models.Customer, bool) {
	c, ok := s.customersByID[id]
	return c, ok
}

func (s *Store) Product(id int64) (*models.Product, bool) {
	p, ok := s.productsByID[id]
	return p, ok
}

// DiscountTotal returns the summed discount for an order, zero when none exist.
func (s *Store) DiscountTotal(orderID int64) decimal.Decimal {
	return s.discountsByOrder[orderID]
}
