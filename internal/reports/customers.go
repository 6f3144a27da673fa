package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"salesboard/internal/engine"
)

// CustomerProductSpend is one customer × product spend line. Totals here do
// not subtract discounts; SalesRollup and the revenue reports do. The two
// behaviors are intentionally kept as distinct operations.
type CustomerProductSpend struct {
	Name       string          `json:"name"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	Product    string          `json:"products"`
}

// TotalSpentByCustomers groups orders by customer and product and sums
// price × quantity, ordered by customer then product name.
func TotalSpentByCustomers(store *engine.Store) []CustomerProductSpend {
	rows := store.ResolveAll(engine.InnerJoin, engine.Include{Product: true, Customer: true})

	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Customer.ID), r.Customer.Name, r.Product.Name)
		},
		map[string]engine.Reducer{
			"total_spent": engine.Sum(engine.FactRow.GrossAmount),
		},
		nil,
	)
	engine.SortResults(results, func(a, b engine.AggregateResult) int {
		if c := cmpIDParts(a.Key, b.Key, 0); c != 0 {
			return c
		}
		return cmpParts(a.Key, b.Key, 2)
	})

	out := make([]CustomerProductSpend, 0, len(results))
	for _, res := range results {
		out = append(out, CustomerProductSpend{
			Name:       res.Key.Part(1),
			TotalSpent: res.MetricOrZero("total_spent"),
			Product:    res.Key.Part(2),
		})
	}
	return out
}

type SpendingCategoryRow struct {
	Name             string          `json:"name"`
	TotalOrders      int64           `json:"total_orders"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	SpendingCategory string          `json:"spending_category"`
}

var (
	spendingHigh   = decimal.NewFromInt(1000)
	spendingMedium = decimal.NewFromInt(500)
	spendingMidCap = decimal.NewFromInt(999)
)

// SpendingCategory buckets each customer's total spend into High (>= 1000),
// Medium (500–999) or Low. Customers without orders appear with zero spend.
func SpendingCategory(store *engine.Store) []SpendingCategoryRow {
	rows := store.ResolveCustomers()

	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(r.Customer.Name)
		},
		map[string]engine.Reducer{
			"total_orders": engine.Count(engine.FactRow.Quantity),
			"total_spent":  engine.Sum(engine.FactRow.GrossAmount),
		},
		nil,
	)
	engine.SortResults(results, func(a, b engine.AggregateResult) int {
		return cmpParts(a.Key, b.Key, 0)
	})

	out := make([]SpendingCategoryRow, 0, len(results))
	for _, res := range results {
		total := res.MetricOrZero("total_spent")
		bucket := "Low"
		switch {
		case total.GreaterThanOrEqual(spendingHigh):
			bucket = "High"
		case total.GreaterThanOrEqual(spendingMedium) && total.LessThanOrEqual(spendingMidCap):
			bucket = "Medium"
		}
		out = append(out, SpendingCategoryRow{
			Name:             res.Key.Part(0),
			TotalOrders:      res.MetricInt("total_orders"),
			TotalSpent:       total,
			SpendingCategory: bucket,
		})
	}
	return out
}

type HighValueCustomer struct {
	CustomerID int64           `json:"customer_id"`
	Name       string          `json:"name"`
	City       string          `json:"city"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// HighValueCustomers returns customers whose total spend reaches minAmount,
// descending by spend. minAmount must be positive.
func HighValueCustomers(store *engine.Store, minAmount decimal.Decimal) ([]HighValueCustomer, error) {
	if !minAmount.IsPositive() {
		return nil, &engine.ValidationError{Field: "min_amount", Reason: "must be positive"}
	}

	rows := store.ResolveAll(engine.InnerJoin, engine.Include{Product: true, Customer: true})
	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Customer.ID), r.Customer.Name, r.Customer.City)
		},
		map[string]engine.Reducer{
			"total_spent": engine.Sum(engine.FactRow.GrossAmount),
		},
		func(res engine.AggregateResult) bool {
			return res.MetricOrZero("total_spent").GreaterThanOrEqual(minAmount)
		},
	)
	engine.SortResults(results, cmpMetricDesc("total_spent"))

	out := make([]HighValueCustomer, 0, len(results))
	for _, res := range results {
		out = append(out, HighValueCustomer{
			CustomerID: parseID(res.Key.Part(0)),
			Name:       res.Key.Part(1),
			City:       res.Key.Part(2),
			TotalSpent: res.MetricOrZero("total_spent"),
		})
	}
	return out, nil
}

type CustomerActivity struct {
	CustomerID  int64               `json:"customer_id"`
	Name        string              `json:"name"`
	City        string              `json:"city"`
	TotalOrders int64               `json:"total_orders"`
	TotalSpent  decimal.Decimal     `json:"total_spent"`
	AvgQuantity decimal.NullDecimal `json:"avg_quantity"`
}

// CustomersByActivity keeps customers whose spend reaches minSpent or whose
// order count reaches minOrders, descending by spend. Both thresholds must
// be non-negative.
func CustomersByActivity(store *engine.Store, minSpent decimal.Decimal, minOrders int64) ([]CustomerActivity, error) {
	if minSpent.IsNegative() {
		return nil, &engine.ValidationError{Field: "min_spent", Reason: "must not be negative"}
	}
	if minOrders < 0 {
		return nil, &engine.ValidationError{Field: "min_orders", Reason: "must not be negative"}
	}

	rows := store.ResolveCustomers()
	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Customer.ID), r.Customer.Name, r.Customer.City)
		},
		map[string]engine.Reducer{
			"total_orders": engine.Count(engine.FactRow.Quantity),
			"total_spent":  engine.Sum(engine.FactRow.GrossAmount),
			"avg_quantity": engine.Avg(engine.FactRow.Quantity),
		},
		func(res engine.AggregateResult) bool {
			return res.MetricOrZero("total_spent").GreaterThanOrEqual(minSpent) ||
				res.MetricInt("total_orders") >= minOrders
		},
	)
	engine.SortResults(results, cmpMetricDesc("total_spent"))

	out := make([]CustomerActivity, 0, len(results))
	for _, res := range results {
		out = append(out, CustomerActivity{
			CustomerID:  parseID(res.Key.Part(0)),
			Name:        res.Key.Part(1),
			City:        res.Key.Part(2),
			TotalOrders: res.MetricInt("total_orders"),
			TotalSpent:  res.MetricOrZero("total_spent"),
			AvgQuantity: res.Metric("avg_quantity"),
		})
	}
	return out, nil
}

type CityTopSpender struct {
	CustomerName string          `json:"customer_name"`
	City         string          `json:"city"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
}

// TopSpenderPerCity returns, per city, every customer tied for the highest
// total spend, ordered by city.
func TopSpenderPerCity(store *engine.Store) []CityTopSpender {
	rows := store.ResolveAll(engine.InnerJoin, engine.Include{Product: true, Customer: true})
	results := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Customer.ID), r.Customer.Name, r.Customer.City)
		},
		map[string]engine.Reducer{
			"total_spent": engine.Sum(engine.FactRow.GrossAmount),
		},
		nil,
	)

	ranked := engine.Rank(results,
		func(res engine.AggregateResult) string { return res.Key.Part(2) },
		cmpMetricDesc("total_spent"),
		engine.StandardRank,
	)

	out := make([]CityTopSpender, 0)
	for _, r := range ranked {
		if r.Rank != 1 {
			continue
		}
		out = append(out, CityTopSpender{
			CustomerName: r.Key.Part(1),
			City:         r.Key.Part(2),
			TotalSpent:   r.MetricOrZero("total_spent"),
		})
	}
	sortSlice(out, func(a, b CityTopSpender) int {
		if a.City < b.City {
			return -1
		}
		if a.City > b.City {
			return 1
		}
		return 0
	})
	return out
}

type CategorySpend struct {
	Category string          `json:"category"`
	Spent    decimal.Decimal `json:"spent"`
	Discount decimal.Decimal `json:"discount"`
}

type CustomerAnalytics struct {
	CustomerID        int64           `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	City              string          `json:"city"`
	TotalOrders       int64           `json:"total_orders"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	AvgQuantity       decimal.Decimal `json:"avg_quantity"`
	TotalDiscount     decimal.Decimal `json:"total_discount"`
	LastOrderDate     *time.Time      `json:"last_order_date"`
	CityRank          int64           `json:"city_rank"`
	TopProduct        *string         `json:"top_product"`
	CategoryBreakdown []CategorySpend `json:"category_breakdown"`
}

// FullCustomerAnalytics assembles per-customer totals, the customer's rank
// within their city, their top product by quantity, and a per-category
// spend/discount breakdown. The four aggregations run independently and are
// joined back by customer id. Customers below minSpent are dropped; output
// is ordered by city.
func FullCustomerAnalytics(store *engine.Store, minSpent decimal.Decimal) ([]CustomerAnalytics, error) {
	if minSpent.IsNegative() {
		return nil, &engine.ValidationError{Field: "min_spent", Reason: "must not be negative"}
	}

	rows := store.ResolveCustomers()

	totals := engine.Aggregate(rows,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Customer.ID), r.Customer.Name, r.Customer.City)
		},
		map[string]engine.Reducer{
			"total_orders":   engine.Count(engine.FactRow.Quantity),
			"total_spent":    engine.Sum(engine.FactRow.GrossAmount),
			"avg_quantity":   engine.Avg(engine.FactRow.Quantity),
			"total_discount": engine.Sum(discountOf),
		},
		nil,
	)

	// City rank runs over every customer, zero spenders included, before the
	// minSpent cut.
	cityRank := make(map[int64]int64, len(totals))
	for _, r := range engine.Rank(totals,
		func(res engine.AggregateResult) string { return res.Key.Part(2) },
		cmpMetricDesc("total_spent"),
		engine.StandardRank,
	) {
		cityRank[parseID(r.Key.Part(0))] = r.Rank
	}

	topProduct := topProductPerCustomer(rows)
	breakdown := categoryBreakdownPerCustomer(rows)
	lastOrder := lastOrderDates(rows)

	engine.SortResults(totals, func(a, b engine.AggregateResult) int {
		return cmpParts(a.Key, b.Key, 2)
	})

	out := make([]CustomerAnalytics, 0, len(totals))
	for _, res := range totals {
		if res.MetricOrZero("total_spent").LessThan(minSpent) {
			continue
		}
		id := parseID(res.Key.Part(0))
		out = append(out, CustomerAnalytics{
			CustomerID:        id,
			CustomerName:      res.Key.Part(1),
			City:              res.Key.Part(2),
			TotalOrders:       res.MetricInt("total_orders"),
			TotalSpent:        res.MetricOrZero("total_spent"),
			AvgQuantity:       res.MetricOrZero("avg_quantity"),
			TotalDiscount:     res.MetricOrZero("total_discount"),
			LastOrderDate:     lastOrder[id],
			CityRank:          cityRank[id],
			TopProduct:        topProduct[id],
			CategoryBreakdown: breakdown[id],
		})
	}
	return out, nil
}

// topProductPerCustomer picks each customer's product with the highest
// summed quantity: group, sort within the customer partition, take the
// first. Ties resolve to the earliest-seen product.
func topProductPerCustomer(rows []engine.FactRow) map[int64]*string {
	withProduct := make([]engine.FactRow, 0, len(rows))
	for _, r := range rows {
		if r.Order != nil && r.Product != nil {
			withProduct = append(withProduct, r)
		}
	}

	perProduct := engine.Aggregate(withProduct,
		func(r engine.FactRow) engine.GroupKey {
			return engine.Key(idPart(r.Customer.ID), r.Product.Name)
		},
		map[string]engine.Reducer{
			"quantity": engine.Sum(engine.FactRow.Quantity),
		},
		nil,
	)

	ranked := engine.Rank(perProduct,
		func(res engine.AggregateResult) string { return res.Key.Part(0) },
		cmpMetricDesc("quantity"),
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

func categoryBreakdownPerCustomer(rows []engine.FactRow) map[int64][]CategorySpend {
	withOrder := make([]engine.FactRow, 0, len(rows))
	for _, r := range rows {
		if r.Order != nil {
			withOrder = append(withOrder, r)
		}
	}

	perCategory := engine.Aggregate(withOrder,
		func(r engine.FactRow) engine.GroupKey {
			category := ""
			if r.Product != nil {
				category = r.Product.Category
			}
			return engine.Key(idPart(r.Customer.ID), category)
		},
		map[string]engine.Reducer{
			"spent":    engine.Sum(engine.FactRow.GrossAmount),
			"discount": engine.Sum(discountOf),
		},
		nil,
	)
	engine.SortResults(perCategory, func(a, b engine.AggregateResult) int {
		return cmpParts(a.Key, b.Key, 1)
	})

	breakdown := make(map[int64][]CategorySpend)
	for _, res := range perCategory {
		id := parseID(res.Key.Part(0))
		breakdown[id] = append(breakdown[id], CategorySpend{
			Category: res.Key.Part(1),
			Spent:    res.MetricOrZero("spent"),
			Discount: res.MetricOrZero("discount"),
		})
	}
	return breakdown
}

func lastOrderDates(rows []engine.FactRow) map[int64]*time.Time {
	last := make(map[int64]*time.Time)
	for _, r := range rows {
		if r.Order == nil {
			continue
		}
		id := r.Customer.ID
		if prev, ok := last[id]; !ok || r.Order.OrderDate.After(*prev) {
			date := r.Order.OrderDate
			last[id] = &date
		}
	}
	return last
}
