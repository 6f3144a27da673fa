package reports

import (
	"github.com/shopspring/decimal"

	"salesboard/internal/engine"
)

type MonthlyProductRevenue struct {
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Month          string          `json:"month"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
}

// MonthlyRevenuePerProduct sums net revenue (discounts subtracted) per
// product per calendar month, ordered by product then month.
func MonthlyRevenuePerProduct(store *engine.Store) []MonthlyProductRevenue {
	rows := store.ResolveAll(engine.InnerJoin, engine.Include{Product: true})

	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Product.ID), r.Product.Name, monthBucket(r.Order.OrderDate))
		},
		map[string]engine.Reducer{
			"monthly_revenue": engine.Sum(engine.FactRow.NetAmount),
		},
		nil,
	)
	engine.SortResults(results, func(a, b engine.AggregateResult) int {
		if c := cmpIDParts(a.Key, b.Key, 0); c != 0 {
			return c
		}
		return cmpParts(a.Key, b.Key, 2)
	})

	out := make([]MonthlyProductRevenue, 0, len(results))
	for _, res := range results {
		out = append(out, MonthlyProductRevenue{
			ProductID:      parseID(res.Key.Part(0)),
			ProductName:    res.Key.Part(1),
			Month:          res.Key.Part(2),
			MonthlyRevenue: res.MetricOrZero("monthly_revenue"),
		})
	}
	return out
}

type WeeklyOrderCount struct {
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	WeekStart    string          `json:"week_start"`
	OrdersCount  int64           `json:"orders_count"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// WeeklyOrderCounts groups orders by customer, product, and week (starting
// Monday), ordered by week, customer, product.
func WeeklyOrderCounts(store *engine.Store) []WeeklyOrderCount {
	rows := store.ResolveAll(engine.InnerJoin, engine.Include{Product: true, Customer: true})

	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(
				weekStart(r.Order.OrderDate).Format("2006-01-02"),
				idPart(r.Customer.ID), r.Customer.Name,
				idPart(r.Product.ID), r.Product.Name,
			)
		},
		map[string]engine.Reducer{
			"orders_count": engine.CountRows(),
			"revenue":      engine.Sum(engine.FactRow.NetAmount),
		},
		nil,
	)
	engine.SortResults(results, func(a, b engine.AggregateResult) int {
		if c := cmpParts(a.Key, b.Key, 0); c != 0 {
			return c
		}
		return cmpIDParts(a.Key, b.Key, 1, 3)
	})

	out := make([]WeeklyOrderCount, 0, len(results))
	for _, res := range results {
		out = append(out, WeeklyOrderCount{
			CustomerID:   parseID(res.Key.Part(1)),
			CustomerName: res.Key.Part(2),
			ProductID:    parseID(res.Key.Part(3)),
			ProductName:  res.Key.Part(4),
			WeekStart:    res.Key.Part(0),
			OrdersCount:  res.MetricInt("orders_count"),
			Revenue:      res.MetricOrZero("revenue"),
		})
	}
	return out
}

type CategoryOrderLeader struct {
	Category     string `json:"category"`
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	OrdersCount  int64  `json:"orders_count"`
}

// CategoryOrderLeaders counts each customer's orders within each product
// category, ordered by category then count descending.
func CategoryOrderLeaders(store *engine.Store) []CategoryOrderLeader {
	rows := store.ResolveAll(engine.InnerJoin, engine.Include{Product: true, Customer: true})

	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(r.Product.Category, idPart(r.Customer.ID), r.Customer.Name)
		},
		map[string]engine.Reducer{
			"orders_count": engine.CountRows(),
		},
		nil,
	)
	engine.SortResults(results, func(a, b engine.AggregateResult) int {
		if c := cmpParts(a.Key, b.Key, 0); c != 0 {
			return c
		}
		return cmpMetricDesc("orders_count")(a, b)
	})

	out := make([]CategoryOrderLeader, 0, len(results))
	for _, res := range results {
		out = append(out, CategoryOrderLeader{
			Category:     res.Key.Part(0),
			CustomerID:   parseID(res.Key.Part(1)),
			CustomerName: res.Key.Part(2),
			OrdersCount:  res.MetricInt("orders_count"),
		})
	}
	return out
}

type OverallStats struct {
	TotalOrders    int64           `json:"total_orders"`
	TotalItemsSold int64           `json:"total_items_sold"`
	GrossRevenue   decimal.Decimal `json:"gross_revenue"`
	TotalDiscounts decimal.Decimal `json:"total_discounts"`
	NetRevenue     decimal.Decimal `json:"net_revenue"`
}

// Overall reduces the whole order book to a single stats row.
func Overall(store *engine.Store) OverallStats {
	rows := store.ResolveAll(engine.InnerJoin, engine.Include{Product: true})

	results := engine.Aggregate(rows,
		func(engine.FactRow) engine.GroupKey { return engine.Key() },
		map[string]engine.Reducer{
			"total_orders":    engine.CountRows(),
			"total_items":     engine.Sum(engine.FactRow.Quantity),
			"gross_revenue":   engine.Sum(engine.FactRow.GrossAmount),
			"total_discounts": engine.Sum(discountOf),
			"net_revenue":     engine.Sum(engine.FactRow.NetAmount),
		},
		nil,
	)
	if len(results) == 0 {
		return OverallStats{}
	}
	res := results[0]
	return OverallStats{
		TotalOrders:    res.MetricInt("total_orders"),
		TotalItemsSold: res.MetricInt("total_items"),
		GrossRevenue:   res.MetricOrZero("gross_revenue"),
		TotalDiscounts: res.MetricOrZero("total_discounts"),
		NetRevenue:     res.MetricOrZero("net_revenue"),
	}
}

type RepeatCustomerCount struct {
	RepeatCustomerCount int64 `json:"repeat_customer_count"`
}

// RepeatCustomers counts distinct customers having more than one order for
// the same product, optionally restricted to one product.
func RepeatCustomers(store *engine.Store, productID *int64) (RepeatCustomerCount, error) {
	filter := engine.OrderFilter{ProductID: productID}
	if err := filter.Validate(); err != nil {
		return RepeatCustomerCount{}, err
	}

	repeat := repeatCustomerSet(store, filter)
	return RepeatCustomerCount{RepeatCustomerCount: int64(len(repeat))}, nil
}

// repeatCustomerSet returns the ids of customers with any (customer,
// product) pair counting more than one order among the filtered orders.
func repeatCustomerSet(store *engine.Store, filter engine.OrderFilter) map[int64]struct{} {
	orders := filter.Apply(store.Orders())
	rows := store.ResolveOrders(orders, engine.LeftJoin, engine.Include{})

	pairs := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Order.CustomerID), idPart(r.Order.ProductID))
		},
		map[string]engine.Reducer{
			"orders": engine.CountRows(),
		},
		func(res engine.AggregateResult) bool { return res.MetricInt("orders") > 1 },
	)

	repeat := make(map[int64]struct{}, len(pairs))
	for _, res := range pairs {
		repeat[parseID(res.Key.Part(0))] = struct{}{}
	}
	return repeat
}

type ProductRepeatCustomers struct {
	ProductID           int64  `json:"product_id"`
	ProductName         string `json:"product_name"`
	RepeatCustomerCount int64  `json:"repeat_customer_count"`
}

// RepeatCustomersPerProduct counts, per product, the distinct repeat
// customers among the filtered orders, descending by count. The repeat set
// itself honors only the date range, matching the report's original shape:
// a customer repeats on any product within the window.
func RepeatCustomersPerProduct(store *engine.Store, filter engine.OrderFilter) ([]ProductRepeatCustomers, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	repeat := repeatCustomerSet(store, engine.OrderFilter{From: filter.From, To: filter.To})

	orders := filter.Apply(store.Orders())
	joined := store.ResolveOrders(orders, engine.InnerJoin, engine.Include{Product: true})
	rows := make([]engine.FactRow, 0, len(joined))
	for _, r := range joined {
		if _, ok := repeat[r.Order.CustomerID]; ok {
			rows = append(rows, r)
		}
	}

	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Product.ID), r.Product.Name)
		},
		map[string]engine.Reducer{
			"repeat_customers": engine.CountDistinct(customerIDPart),
		},
		nil,
	)
	engine.SortResults(results, func(a, b engine.AggregateResult) int {
		if c := cmpMetricDesc("repeat_customers")(a, b); c != 0 {
			return c
		}
		return cmpIDParts(a.Key, b.Key, 0)
	})

	out := make([]ProductRepeatCustomers, 0, len(results))
	for _, res := range results {
		out = append(out, ProductRepeatCustomers{
			ProductID:           parseID(res.Key.Part(0)),
			ProductName:         res.Key.Part(1),
			RepeatCustomerCount: res.MetricInt("repeat_customers"),
		})
	}
	return out, nil
}

type SalesRollupRow struct {
	CategoryName *string         `json:"category_name"`
	ProductName  *string         `json:"product_name"`
	TotalItems   int64           `json:"total_items"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// SalesRollup computes the category × product subtotal hierarchy over net
// revenue: per-product rows, per-category subtotals, and the grand total,
// with subtotal rows carrying null dimensions and sorting last.
func SalesRollup(store *engine.Store) []SalesRollupRow {
	rows := store.ResolveAll(engine.LeftJoin, engine.Include{Product: true})

	rolled := engine.Rollup(rows,
		[]func(engine.FactRow) string{
			func(r engine.FactRow) string {
				if r.Product == nil {
					return ""
				}
				return r.Product.Category
			},
			func(r engine.FactRow) string {
				if r.Product == nil {
					return ""
				}
				return r.Product.Name
			},
		},
		map[string]engine.Reducer{
			"total_items":   engine.Sum(engine.FactRow.Quantity),
			"total_revenue": engine.Sum(engine.FactRow.NetAmount),
		},
	)

	out := make([]SalesRollupRow, 0, len(rolled))
	for _, row := range rolled {
		out = append(out, SalesRollupRow{
			CategoryName: row.Dimension(0),
			ProductName:  row.Dimension(1),
			TotalItems:   row.MetricOrZero("total_items").IntPart(),
			TotalRevenue: row.MetricOrZero("total_revenue"),
		})
	}
	return out
}

type WeeklyProductSalesRow struct {
	ProductID      int64           `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Week           string          `json:"week"`
	WeeklyQuantity int64           `json:"weekly_quantity"`
	WeeklyRevenue  decimal.Decimal `json:"weekly_revenue"`
	RunningRevenue decimal.Decimal `json:"running_revenue"`
}

// WeeklyProductSales groups net revenue per product per ISO week and adds a
// per-product running revenue total, ordered by product then week.
func WeeklyProductSales(store *engine.Store) []WeeklyProductSalesRow {
	rows := store.ResolveAll(engine.InnerJoin, engine.Include{Product: true})

	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Product.ID), r.Product.Name, isoWeekBucket(r.Order.OrderDate))
		},
		map[string]engine.Reducer{
			"weekly_quantity": engine.Sum(engine.FactRow.Quantity),
			"weekly_revenue":  engine.Sum(engine.FactRow.NetAmount),
		},
		nil,
	)
	// RunningSum requires each partition sorted ascending before it walks.
	engine.SortResults(results, func(a, b engine.AggregateResult) int {
		if c := cmpIDParts(a.Key, b.Key, 0); c != 0 {
			return c
		}
		return cmpParts(a.Key, b.Key, 2)
	})

	cumulative := engine.RunningSum(results,
		func(res engine.AggregateResult) string { return res.Key.Part(0) },
		"weekly_revenue", "running_revenue",
	)

	out := make([]WeeklyProductSalesRow, 0, len(cumulative))
	for _, res := range cumulative {
		out = append(out, WeeklyProductSalesRow{
			ProductID:      parseID(res.Key.Part(0)),
			ProductName:    res.Key.Part(1),
			Week:           res.Key.Part(2),
			WeeklyQuantity: res.MetricInt("weekly_quantity"),
			WeeklyRevenue:  res.MetricOrZero("weekly_revenue"),
			RunningRevenue: res.MetricOrZero("running_revenue"),
		})
	}
	return out
}

// customerIDPart keys COUNT(DISTINCT customer) reducers.
func customerIDPart(r engine.FactRow) string {
	if r.Order == nil {
		return ""
	}
	return idPart(r.Order.CustomerID)
}
