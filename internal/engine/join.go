package engine

import "salesboard/internal/models"

// JoinMode selects how unresolved foreign keys are handled.
type JoinMode int

const (
	// InnerJoin drops an order whose included sides do not all resolve.
	InnerJoin JoinMode = iota
	// LeftJoin keeps the order and leaves a missing side nil.
	LeftJoin
)

// Include names the sides a report wants attached to each order. Discounts
// are always attached; they are optional by nature.
type Include struct {
	Product  bool
	Customer bool
}

// ResolveOrders joins each order with the included sides plus its summed
// discount (absent meaning zero). Under InnerJoin an order whose included
// product or customer is missing is dropped; under LeftJoin it is kept with
// that side nil. Never errors: a referential gap is a data condition, not a
// failure.
func (s *Store) ResolveOrders(orders []models.Order, mode JoinMode, include Include) []FactRow {
	rows := make([]FactRow, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		row := FactRow{Order: o, Discount: s.DiscountTotal(o.ID)}

		if include.Product {
			product, ok := s.Product(o.ProductID)
			if !ok && mode == InnerJoin {
				continue
			}
			row.Product = product
		}
		if include.Customer {
			customer, ok := s.Customer(o.CustomerID)
			if !ok && mode == InnerJoin {
				continue
			}
			row.Customer = customer
		}
		rows = append(rows, row)
	}
	return rows
}

// ResolveAll joins the full order collection.
func (s *Store) ResolveAll(mode JoinMode, include Include) []FactRow {
	return s.ResolveOrders(s.orders, mode, include)
}

// ResolveCustomers drives the join from the customer side: every customer
// appears at least once, paired with each of their orders, or with a nil
// Order when they have none. The product side is attached left-style.
func (s *Store) ResolveCustomers() []FactRow {
	byCustomer := make(map[int64][]*models.Order, len(s.customers))
	for i := range s.orders {
		o := &s.orders[i]
		byCustomer[o.CustomerID] = append(byCustomer[o.CustomerID], o)
	}

	rows := make([]FactRow, 0, len(s.orders)+len(s.customers))
	for i := range s.customers {
		c := &s.customers[i]
		matched := byCustomer[c.ID]
		if len(matched) == 0 {
			rows = append(rows, FactRow{Customer: c})
			continue
		}
		for _, o := range matched {
			product, _ := s.Product(o.ProductID)
			rows = append(rows, FactRow{
				Order:    o,
				Product:  product,
				Customer: c,
				Discount: s.DiscountTotal(o.ID),
			})
		}
	}
	return rows
}

// ResolveProducts drives the join from the product side: every product
// appears at least once, paired with each of its orders, or with a nil Order
// when it has none. The customer side is attached left-style per order.
func (s *Store) ResolveProducts() []FactRow {
	byProduct := make(map[int64][]*models.Order, len(s.products))
	for i := range s.orders {
		o := &s.orders[i]
		byProduct[o.ProductID] = append(byProduct[o.ProductID], o)
	}

	rows := make([]FactRow, 0, len(s.orders)+len(s.products))
	for i := range s.products {
		p := &s.products[i]
		matched := byProduct[p.ID]
		if len(matched) == 0 {
			rows = append(rows, FactRow{Product: p})
			continue
		}
		for _, o := range matched {
			customer, _ := s.Customer(o.CustomerID)
			rows = append(rows, FactRow{
				Order:    o,
				Product:  p,
				Customer: customer,
				Discount: s.DiscountTotal(o.ID),
			})
		}
	}
	return rows
}
