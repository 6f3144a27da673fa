package reports

import (
	"github.com/shopspring/decimal"

	"salesboard/internal/engine"
)

type ProductOrderRow struct {
	ProductID      int64               `json:"product_id"`
	ProductName    string              `json:"product_name"`
	Category       string              `json:"category"`
	Price          decimal.Decimal     `json:"price"`
	OrderID        *int64              `json:"order_id"`
	Quantity       *int64              `json:"quantity"`
	CustomerName   *string             `json:"customer_name"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	TotalAmount    decimal.NullDecimal `json:"total_amount"`
}

// ProductsWithOrders lists every product joined with each of its orders, or
// a bare row for products never ordered, ordered by product then order id.
func ProductsWithOrders(store *engine.Store) []ProductOrderRow {
	rows := store.ResolveProducts()

	out := make([]ProductOrderRow, 0, len(rows))
	for _, r := range rows {
		row := ProductOrderRow{
			ProductID:      r.Product.ID,
			ProductName:    r.Product.Name,
			Category:       r.Product.Category,
			Price:          r.Product.Price,
			DiscountAmount: r.Discount,
			TotalAmount:    r.NetAmount(),
		}
		if r.Order != nil {
			orderID, quantity := r.Order.ID, r.Order.Quantity
			row.OrderID = &orderID
			row.Quantity = &quantity
		}
		if r.Customer != nil {
			name := r.Customer.Name
			row.CustomerName = &name
		}
		out = append(out, row)
	}

	sortSlice(out, func(a, b ProductOrderRow) int {
		switch {
		case a.ProductID != b.ProductID:
			if a.ProductID < b.ProductID {
				return -1
			}
			return 1
		case a.OrderID == nil || b.OrderID == nil:
			return 0
		case *a.OrderID < *b.OrderID:
			return -1
		case *a.OrderID > *b.OrderID:
			return 1
		}
		return 0
	})
	return out
}

type ProductDiscountTotal struct {
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Price         decimal.Decimal `json:"price"`
	CustomerName  *string         `json:"customer_name"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// ProductsWithTotalDiscounts sums discounts and net amounts per product and
// customer, descending by total discount. Products without orders appear
// once with zeros and a null customer.
func ProductsWithTotalDiscounts(store *engine.Store) []ProductDiscountTotal {
	rows := store.ResolveProducts()

	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			customer := ""
			if r.Customer != nil {
				customer = r.Customer.Name
			}
			return engine.Key(idPart(r.Product.ID), r.Product.Name, r.Product.Price.String(), customer)
		},
		map[string]engine.Reducer{
			"total_discount": engine.Sum(discountOf),
			"total_amount":   engine.Sum(engine.FactRow.NetAmount),
		},
		nil,
	)
	engine.SortResults(results, func(a, b engine.AggregateResult) int {
		if c := cmpMetricDesc("total_discount")(a, b); c != 0 {
			return c
		}
		return cmpIDParts(a.Key, b.Key, 0)
	})

	out := make([]ProductDiscountTotal, 0, len(results))
	for _, res := range results {
		row := ProductDiscountTotal{
			ProductID:     parseID(res.Key.Part(0)),
			ProductName:   res.Key.Part(1),
			TotalDiscount: res.MetricOrZero("total_discount"),
			TotalAmount:   res.MetricOrZero("total_amount"),
		}
		row.Price, _ = decimal.NewFromString(res.Key.Part(2))
		if name := res.Key.Part(3); name != "" {
			row.CustomerName = &name
		}
		out = append(out, row)
	}
	return out
}

type ProductTopCustomer struct {
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	City         string          `json:"city"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
}

// TopCustomersForProduct ranks one product's customers by spend, descending,
// and returns the requested page. The sort runs over the product's own
// customer groups only, and equal spends break by customer id so pages never
// overlap.
func TopCustomersForProduct(store *engine.Store, productID int64, page, pageSize int) ([]ProductTopCustomer, error) {
	filter := engine.OrderFilter{ProductID: &productID}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, &engine.ValidationError{Field: "page", Reason: "must be at least 1"}
	}
	if pageSize < 1 {
		return nil, &engine.ValidationError{Field: "page_size", Reason: "must be at least 1"}
	}

	orders := filter.Apply(store.Orders())
	rows := store.ResolveOrders(orders, engine.InnerJoin, engine.Include{Product: true, Customer: true})

	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(
				idPart(r.Customer.ID), r.Customer.Name, r.Customer.City,
				r.Product.Name, r.Product.Price.String(),
			)
		},
		map[string]engine.Reducer{
			"total_spent": engine.Sum(engine.FactRow.GrossAmount),
		},
		nil,
	)
	engine.SortResults(results, func(a, b engine.AggregateResult) int {
		if c := cmpMetricDesc("total_spent")(a, b); c != 0 {
			return c
		}
		return cmpIDParts(a.Key, b.Key, 0)
	})

	offset := (page - 1) * pageSize
	if offset >= len(results) {
		return []ProductTopCustomer{}, nil
	}
	end := offset + pageSize
	if end > len(results) {
		end = len(results)
	}

	out := make([]ProductTopCustomer, 0, end-offset)
	for _, res := range results[offset:end] {
		row := ProductTopCustomer{
			CustomerID:   parseID(res.Key.Part(0)),
			CustomerName: res.Key.Part(1),
			City:         res.Key.Part(2),
			ProductID:    productID,
			ProductName:  res.Key.Part(3),
			TotalSpent:   res.MetricOrZero("total_spent"),
		}
		row.ProductPrice, _ = decimal.NewFromString(res.Key.Part(4))
		out = append(out, row)
	}
	return out, nil
}

type ProductAnalyticsRow struct {
	ProductID           int64               `json:"id"`
	Name                string              `json:"name"`
	Category            string              `json:"category"`
	TotalAmount         decimal.Decimal     `json:"total_amount"`
	TotalRevenue        decimal.Decimal     `json:"total_revenue"`
	AvgDiscountPercent  decimal.NullDecimal `json:"avg_discount_percent"`
	RepeatCustomerCount int64               `json:"repeat_customer_count"`
	TopCustomer         *string             `json:"top_customer"`
	CategoryRank        int64               `json:"category_rank"`
}

// ProductAnalytics assembles per-product gross and net totals, the ratio-safe
// average discount percent, repeat-customer counts, the top customer by order
// count, and a dense rank within the product's category by order count,
// descending by net revenue.
func ProductAnalytics(store *engine.Store) []ProductAnalyticsRow {
	rows := store.ResolveProducts()

	totals := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Product.ID), r.Product.Name, r.Product.Category)
		},
		map[string]engine.Reducer{
			"total_amount":         engine.Sum(engine.FactRow.GrossAmount),
			"total_revenue":        engine.Sum(engine.FactRow.NetAmount),
			"avg_discount_percent": engine.Avg(discountPercent),
			"orders_count":         engine.Count(engine.FactRow.Quantity),
		},
		nil,
	)

	categoryRank := make(map[int64]int64, len(totals))
	for _, r := range engine.Rank(totals,
		func(res engine.AggregateResult) string { return res.Key.Part(2) },
		cmpMetricDesc("orders_count"),
		engine.DenseRank,
	) {
		categoryRank[parseID(r.Key.Part(0))] = r.Rank
	}

	repeatCounts := repeatCustomersByProduct(store)
	topCustomer := topCustomerPerProduct(rows)

	engine.SortResults(totals, cmpMetricDesc("total_revenue"))

	out := make([]ProductAnalyticsRow, 0, len(totals))
	for _, res := range totals {
		id := parseID(res.Key.Part(0))
		out = append(out, ProductAnalyticsRow{
			ProductID:           id,
			Name:                res.Key.Part(1),
			Category:            res.Key.Part(2),
			TotalAmount:         res.MetricOrZero("total_amount"),
			TotalRevenue:        res.MetricOrZero("total_revenue"),
			AvgDiscountPercent:  res.Metric("avg_discount_percent"),
			RepeatCustomerCount: repeatCounts[id],
			TopCustomer:         topCustomer[id],
			CategoryRank:        categoryRank[id],
		})
	}
	return out
}

var hundred = decimal.NewFromInt(100)

// discountPercent is the row's discount as a percentage of its gross amount.
// A zero or missing gross yields no value, never a division error.
func discountPercent(r engine.FactRow) decimal.NullDecimal {
	gross := r.GrossAmount()
	if !gross.Valid || gross.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return engine.NullFrom(r.Discount.Div(gross.Decimal).Mul(hundred))
}

// repeatCustomersByProduct counts, per product, the distinct customers with
// more than one order of that product.
func repeatCustomersByProduct(store *engine.Store) map[int64]int64 {
	rows := store.ResolveAll(engine.LeftJoin, engine.Include{})

	pairs := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Order.ProductID), idPart(r.Order.CustomerID))
		},
		map[string]engine.Reducer{
			"orders": engine.CountRows(),
		},
		func(res engine.AggregateResult) bool { return res.MetricInt("orders") > 1 },
	)

	counts := make(map[int64]int64)
	for _, res := range pairs {
		counts[parseID(res.Key.Part(0))]++
	}
	return counts
}

// topCustomerPerProduct picks each product's customer with the most orders:
// group, sort within the product partition, take the first.
func topCustomerPerProduct(rows []engine.FactRow) map[int64]*string {
	withCustomer := make([]engine.FactRow, 0, len(rows))
	for _, r := range rows {
		if r.Order != nil && r.Customer != nil {
			withCustomer = append(withCustomer, r)
		}
	}

	perCustomer := engine.Aggregate(withCustomer,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Product.ID), r.Customer.Name)
		},
		map[string]engine.Reducer{
			"orders": engine.CountRows(),
		},
		nil,
	)

	ranked := engine.Rank(perCustomer,
		func(res engine.AggregateResult) string { return res.Key.Part(0) },
		cmpMetricDesc("orders"),
		engine.StandardRank,
	)

	top := make(map[int64]*string)
	for _, r := range ranked {
		id := parseID(r.Key.Part(0))
		if _, done := top[id]; done {
			continue
		}
		name := r.Key.Part(1)
		top[id] = &name
	}
	return top
}

type MonthlyProductSalesRow struct {
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Month         string          `json:"month"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// MonthlyProductSales sums quantity and net revenue per product per month,
// optionally for a single product, ordered by product then month.
func MonthlyProductSales(store *engine.Store, productID *int64) ([]MonthlyProductSalesRow, error) {
	filter := engine.OrderFilter{ProductID: productID}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	orders := filter.Apply(store.Orders())
	rows := store.ResolveOrders(orders, engine.InnerJoin, engine.Include{Product: true})

	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Product.ID), r.Product.Name, monthBucket(r.Order.OrderDate))
		},
		map[string]engine.Reducer{
			"total_quantity": engine.Sum(engine.FactRow.Quantity),
			"total_revenue":  engine.Sum(engine.FactRow.NetAmount),
		},
		nil,
	)
	engine.SortResults(results, func(a, b engine.AggregateResult) int {
		if c := cmpIDParts(a.Key, b.Key, 0); c != 0 {
			return c
		}
		return cmpParts(a.Key, b.Key, 2)
	})

	out := make([]MonthlyProductSalesRow, 0, len(results))
	for _, res := range results {
		out = append(out, MonthlyProductSalesRow{
			ProductID:     parseID(res.Key.Part(0)),
			ProductName:   res.Key.Part(1),
			Month:         res.Key.Part(2),
			TotalQuantity: res.MetricInt("total_quantity"),
			TotalRevenue:  res.MetricOrZero("total_revenue"),
		})
	}
	return out, nil
}

type ProductProfitabilityRow struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`
}

// ProductProfitability compares each product's net revenue against its gross
// amount, descending by the difference.
func ProductProfitability(store *engine.Store) []ProductProfitabilityRow {
	rows := store.ResolveAll(engine.InnerJoin, engine.Include{Product: true})

	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Product.ID), r.Product.Name)
		},
		map[string]engine.Reducer{
			"revenue": engine.Sum(engine.FactRow.NetAmount),
			"cost":    engine.Sum(engine.FactRow.GrossAmount),
		},
		nil,
	)
	engine.SortResults(results, func(a, b engine.AggregateResult) int {
		aProfit := a.MetricOrZero("revenue").Sub(a.MetricOrZero("cost"))
		bProfit := b.MetricOrZero("revenue").Sub(b.MetricOrZero("cost"))
		return cmpDecimal(bProfit, aProfit)
	})

	out := make([]ProductProfitabilityRow, 0, len(results))
	for _, res := range results {
		revenue := res.MetricOrZero("revenue")
		cost := res.MetricOrZero("cost")
		out = append(out, ProductProfitabilityRow{
			ProductID:   parseID(res.Key.Part(0)),
			ProductName: res.Key.Part(1),
			Revenue:     revenue,
			Cost:        cost,
			Profit:      revenue.Sub(cost),
		})
	}
	return out
}
