package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testStore builds the snapshot most engine tests share:
//
//	Alice (NYC) buys 3 then 2 Widgets (10.00, Toys); order 1 carries a 5.00 discount.
//	Bob (Boston) buys 4 Gadgets (25.00, Tools).
//	Carol (NYC) has no orders; the Lamp (40.00, Home) has no orders.
//	Order 4 references product 99, which does not exist.
func testStore() *Store {
	return NewStore(
		[]models.Customer{
			{ID: 1, Name: "Alice", City: "NYC"},
			{ID: 2, Name: "Bob", City: "Boston"},
			{ID: 3, Name: "Carol", City: "NYC"},
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
			{ID: 4, CustomerID: 2, ProductID: 99, Quantity: 1, OrderDate: date("2024-01-04")},
		},
		[]models.Discount{
			{ID: 1, OrderID: 1, DiscountAmount: dec("5.00")},
		},
	)
}

func keyByCustomer(r FactRow) GroupKey {
	if r.Customer == nil {
		return Key("")
	}
	return Key(r.Customer.Name)
}

func TestAggregateSumAndCounts(t *testing.T) {
	store := testStore()
	rows := store.ResolveAll(InnerJoin, Include{Product: true, Customer: true})

	results := Aggregate(rows, keyByCustomer, map[string]Reducer{
		"gross":  Sum(FactRow.GrossAmount),
		"net":    Sum(FactRow.NetAmount),
		"orders": CountRows(),
	}, nil)

	require.Len(t, results, 2)

	// First-seen key order: Alice's order 1 precedes Bob's order 3.
	alice, bob := results[0], results[1]
	assert.Equal(t, "Alice", alice.Key.Part(0))
	assert.Equal(t, "Bob", bob.Key.Part(0))

	assert.True(t, alice.MetricOrZero("gross").Equal(dec("50.00")))
	assert.True(t, alice.MetricOrZero("net").Equal(dec("45.00")))
	assert.EqualValues(t, 2, alice.MetricInt("orders"))

	assert.True(t, bob.MetricOrZero("gross").Equal(dec("100.00")))
	assert.EqualValues(t, 1, bob.MetricInt("orders"))
}

func TestAggregateSumOfEmptyGroupIsZero(t *testing.T) {
	// A row with no product yields null gross; the sum still finalizes to 0.
	rows := []FactRow{{Order: &models.Order{ID: 1, Quantity: 2}}}

	results := Aggregate(rows, func(FactRow) GroupKey { return Key("all") }, map[string]Reducer{
		"gross": Sum(FactRow.GrossAmount),
	}, nil)

	require.Len(t, results, 1)
	m := results[0].Metric("gross")
	require.True(t, m.Valid)
	assert.True(t, m.Decimal.IsZero())
}

func TestAggregateAvgOverNoAddendsHasNoValue(t *testing.T) {
	rows := []FactRow{{Order: &models.Order{ID: 1, Quantity: 2}}}

	results := Aggregate(rows, func(FactRow) GroupKey { return Key("all") }, map[string]Reducer{
		"avg": Avg(FactRow.GrossAmount),
	}, nil)

	require.Len(t, results, 1)
	assert.False(t, results[0].Metric("avg").Valid)
	assert.True(t, results[0].MetricOrZero("avg").IsZero())
}

func TestAggregateCountSkipsNullsCountRowsDoesNot(t *testing.T) {
	store := testStore()
	// Left join keeps order 4 with a nil product, so gross is null there.
	rows := store.ResolveOrders(store.Orders(), LeftJoin, Include{Product: true})

	results := Aggregate(rows, func(FactRow) GroupKey { return Key("all") }, map[string]Reducer{
		"priced": Count(FactRow.GrossAmount),
		"rows":   CountRows(),
	}, nil)

	require.Len(t, results, 1)
	assert.EqualValues(t, 3, results[0].MetricInt("priced"))
	assert.EqualValues(t, 4, results[0].MetricInt("rows"))
}

func TestAggregateCountDistinct(t *testing.T) {
	store := testStore()
	rows := store.ResolveAll(InnerJoin, Include{Product: true, Customer: true})

	results := Aggregate(rows, func(FactRow) GroupKey { return Key("all") }, map[string]Reducer{
		"customers": CountDistinct(func(r FactRow) string { return r.Customer.Name }),
	}, nil)

	require.Len(t, results, 1)
	assert.EqualValues(t, 2, results[0].MetricInt("customers"))
}

func TestAggregateHavingRunsAfterReduction(t *testing.T) {
	store := testStore()
	rows := store.ResolveAll(InnerJoin, Include{Product: true, Customer: true})

	results := Aggregate(rows, keyByCustomer, map[string]Reducer{
		"gross": Sum(FactRow.GrossAmount),
	}, func(r AggregateResult) bool {
		return r.MetricOrZero("gross").GreaterThanOrEqual(dec("60"))
	})

	require.Len(t, results, 1)
	assert.Equal(t, "Bob", results[0].Key.Part(0))
}

func TestSortResultsIsStable(t *testing.T) {
	results := []AggregateResult{
		{Key: Key("b"), Metrics: map[string]decimal.NullDecimal{"v": NullFrom(dec("1"))}},
		{Key: Key("a"), Metrics: map[string]decimal.NullDecimal{"v": NullFrom(dec("1"))}},
		{Key: Key("c"), Metrics: map[string]decimal.NullDecimal{"v": NullFrom(dec("2"))}},
	}

	SortResults(results, func(a, b AggregateResult) int {
		return a.MetricOrZero("v").Cmp(b.MetricOrZero("v"))
	})

	// Equal values keep input order.
	assert.Equal(t, "b", results[0].Key.Part(0))
	assert.Equal(t, "a", results[1].Key.Part(0))
	assert.Equal(t, "c", results[2].Key.Part(0))
}
