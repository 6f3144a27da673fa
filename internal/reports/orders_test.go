package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/engine"
	"salesboard/internal/models"
)

func TestMonthlyRevenuePerProduct(t *testing.T) {
	out := MonthlyRevenuePerProduct(seedStore())
	require.Len(t, out, 4)

	// Product then month; revenue is net of discounts.
	assert.Equal(t, "Widget", out[0].ProductName)
	assert.Equal(t, "2024-01", out[0].Month)
	assert.True(t, out[0].MonthlyRevenue.Equal(dec("45.00")))

	assert.Equal(t, "2024-02", out[1].Month)
	assert.True(t, out[1].MonthlyRevenue.Equal(dec("50.00")))

	assert.Equal(t, "Gadget", out[2].ProductName)
	assert.Equal(t, "2024-01", out[2].Month)
	assert.True(t, out[2].MonthlyRevenue.Equal(dec("100.00")))
	assert.Equal(t, "2024-02", out[3].Month)
}

func TestWeeklyOrderCounts(t *testing.T) {
	out := WeeklyOrderCounts(seedStore())
	require.Len(t, out, 5)

	// Weeks start on Monday: Jan 2 2024 (Tuesday) falls in the Jan 1 week.
	assert.Equal(t, "2024-01-01", out[0].WeekStart)
	assert.Equal(t, "Alice", out[0].CustomerName)
	assert.EqualValues(t, 1, out[0].OrdersCount)
	assert.True(t, out[0].Revenue.Equal(dec("25.00")))

	assert.Equal(t, "2024-01-01", out[1].WeekStart)
	assert.Equal(t, "Bob", out[1].CustomerName)

	assert.Equal(t, "2024-01-08", out[2].WeekStart)
	assert.Equal(t, "Alice", out[2].CustomerName)

	// Within a week the sort is customer then product id.
	assert.Equal(t, "2024-02-05", out[3].WeekStart)
	assert.Equal(t, "Widget", out[3].ProductName)
	assert.Equal(t, "Gadget", out[4].ProductName)
}

func TestCategoryOrderLeaders(t *testing.T) {
	out := CategoryOrderLeaders(seedStore())
	require.Len(t, out, 4)

	assert.Equal(t, "Tools", out[0].Category)
	assert.Equal(t, "Tools", out[1].Category)
	assert.Equal(t, "Toys", out[2].Category)
	assert.Equal(t, "Alice", out[2].CustomerName)
	assert.EqualValues(t, 2, out[2].OrdersCount)
	assert.Equal(t, "Dave", out[3].CustomerName)
}

func TestOverall(t *testing.T) {
	out := Overall(seedStore())

	assert.EqualValues(t, 5, out.TotalOrders)
	assert.EqualValues(t, 16, out.TotalItemsSold)
	assert.True(t, out.GrossRevenue.Equal(dec("250.00")))
	assert.True(t, out.TotalDiscounts.Equal(dec("5.00")))
	assert.True(t, out.NetRevenue.Equal(dec("245.00")))
}

func TestOverallEmptyStore(t *testing.T) {
	out := Overall(engine.NewStore(nil, nil, nil, nil))
	assert.Zero(t, out.TotalOrders)
	assert.True(t, out.NetRevenue.IsZero())
}

func TestRepeatCustomers(t *testing.T) {
	// Only Alice orders the same product twice.
	out, err := RepeatCustomers(seedStore(), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.RepeatCustomerCount)

	out, err = RepeatCustomers(seedStore(), ptrInt(1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.RepeatCustomerCount)

	// Dave ordered the Gadget once; nobody repeats on product 2.
	out, err = RepeatCustomers(seedStore(), ptrInt(2))
	require.NoError(t, err)
	assert.EqualValues(t, 0, out.RepeatCustomerCount)

	_, err = RepeatCustomers(seedStore(), ptrInt(-1))
	assert.Error(t, err)
}

func TestRepeatCustomersPerProduct(t *testing.T) {
	out, err := RepeatCustomersPerProduct(seedStore(), engine.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, "Widget", out[0].ProductName)
	assert.EqualValues(t, 1, out[0].RepeatCustomerCount)
}

func TestRepeatCustomersPerProductDateWindow(t *testing.T) {
	// Restricting the window to January keeps Alice's two Widget orders but
	// drops Dave entirely.
	from, to := date("2024-01-01"), date("2024-01-31")
	out, err := RepeatCustomersPerProduct(seedStore(), engine.OrderFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Widget", out[0].ProductName)

	// A window covering a single order leaves no repeats.
	from, to = date("2024-02-01"), date("2024-02-28")
	out, err = RepeatCustomersPerProduct(seedStore(), engine.OrderFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRepeatCustomersPerProductValidation(t *testing.T) {
	from, to := date("2024-02-01"), date("2024-01-01")
	_, err := RepeatCustomersPerProduct(seedStore(), engine.OrderFilter{From: &from, To: &to})
	assert.Error(t, err)
}

func TestSalesRollup(t *testing.T) {
	out := SalesRollup(seedStore())
	require.Len(t, out, 5)

	type row struct {
		cat, name string
		items     int64
		revenue   string
	}
	want := []row{
		{"Tools", "Gadget", 6, "150.00"},
		{"Tools", "", 6, "150.00"},
		{"Toys", "Widget", 10, "95.00"},
		{"Toys", "", 10, "95.00"},
		{"", "", 16, "245.00"},
	}
	for i, w := range want {
		got := out[i]
		assert.EqualValues(t, w.items, got.TotalItems, "row %d", i)
		assert.True(t, got.TotalRevenue.Equal(dec(w.revenue)), "row %d revenue %s", i, got.TotalRevenue)
		if w.cat == "" {
			assert.Nil(t, got.CategoryName, "row %d", i)
		} else {
			require.NotNil(t, got.CategoryName, "row %d", i)
			assert.Equal(t, w.cat, *got.CategoryName, "row %d", i)
		}
		if w.name == "" {
			assert.Nil(t, got.ProductName, "row %d", i)
		} else {
			require.NotNil(t, got.ProductName, "row %d", i)
			assert.Equal(t, w.name, *got.ProductName, "row %d", i)
		}
	}
}

func TestWeeklyProductSales(t *testing.T) {
	out := WeeklyProductSales(seedStore())
	require.Len(t, out, 5)

	// Widget sells in ISO weeks 1, 2 and 6; the running total accumulates.
	assert.Equal(t, "Widget", out[0].ProductName)
	assert.Equal(t, "2024-01", out[0].Week)
	assert.True(t, out[0].WeeklyRevenue.Equal(dec("25.00")))
	assert.True(t, out[0].RunningRevenue.Equal(dec("25.00")))

	assert.Equal(t, "2024-02", out[1].Week)
	assert.True(t, out[1].RunningRevenue.Equal(dec("45.00")))

	assert.Equal(t, "2024-06", out[2].Week)
	assert.True(t, out[2].RunningRevenue.Equal(dec("95.00")))

	// Gadget's running total restarts.
	assert.Equal(t, "Gadget", out[3].ProductName)
	assert.Equal(t, "2024-01", out[3].Week)
	assert.True(t, out[3].RunningRevenue.Equal(dec("100.00")))
	assert.Equal(t, "2024-06", out[4].Week)
	assert.True(t, out[4].RunningRevenue.Equal(dec("150.00")))
}

// TestSingleCustomerConsistency pins the relationship between the gross
// total-spent view and the discount-subtracting rollup on a minimal dataset:
// two Widget orders of 3 and 2 units at 10.00, one 5.00 discount.
func TestSingleCustomerConsistency(t *testing.T) {
	store := engine.NewStore(
		[]models.Customer{{ID: 1, Name: "Alice", City: "NYC"}},
		[]models.Product{{ID: 1, Name: "Widget", Price: dec("10"), Category: "Toys"}},
		[]models.Order{
			{ID: 1, CustomerID: 1, ProductID: 1, Quantity: 3, OrderDate: date("2024-01-02")},
			{ID: 2, CustomerID: 1, ProductID: 1, Quantity: 2, OrderDate: date("2024-01-09")},
		},
		[]models.Discount{{ID: 1, OrderID: 1, DiscountAmount: dec("5")}},
	)

	spent := TotalSpentByCustomers(store)
	require.Len(t, spent, 1)
	assert.True(t, spent[0].TotalSpent.Equal(dec("50")))

	rollup := SalesRollup(store)
	grand := rollup[len(rollup)-1]
	assert.Nil(t, grand.CategoryName)
	assert.True(t, grand.TotalRevenue.Equal(dec("45")))

	repeats, err := RepeatCustomers(store, ptrInt(1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, repeats.RepeatCustomerCount)
}
