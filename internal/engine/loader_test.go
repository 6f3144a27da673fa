package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
customers:
  - id: 1
    name: Alice
    city: NYC
  - id: 2
    name: Bob
    city: Boston
products:
  - id: 1
    name: Widget
    price: "10.00"
    category: Toys
orders:
  - id: 1
    customer_id: 1
    product_id: 1
    quantity: 3
    order_date: "2024-01-02"
  - id: 2
    customer_id: 1
    product_id: 1
    quantity: 2
    order_date: "2024-01-09"
discounts:
  - id: 1
    order_id: 1
    discount_amount: "5.00"
  - id: 2
    order_id: 1
    discount_amount: "1.50"
`

func TestParseSnapshot(t *testing.T) {
	store, err := ParseSnapshot([]byte(seedYAML))
	require.NoError(t, err)

	assert.Len(t, store.Customers(), 2)
	assert.Len(t, store.Products(), 1)
	assert.Len(t, store.Orders(), 2)

	p, ok := store.Product(1)
	require.True(t, ok)
	assert.True(t, p.Price.Equal(dec("10.00")))
	assert.Equal(t, "2024-01-02", store.Orders()[0].OrderDate.Format("2006-01-02"))

	// Two discounts on order 1 sum into one amount.
	assert.True(t, store.DiscountTotal(1).Equal(dec("6.50")))
	assert.True(t, store.DiscountTotal(2).IsZero())

	assert.NotEqual(t, store.SnapshotID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestParseSnapshotRejectsBadRows(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"negative price", `
products:
  - id: 1
    name: Widget
    price: "-1"
    category: Toys
`},
		{"price not a number", `
products:
  - id: 1
    name: Widget
    price: "ten"
    category: Toys
`},
		{"zero quantity", `
orders:
  - id: 1
    customer_id: 1
    product_id: 1
    quantity: 0
    order_date: "2024-01-02"
`},
		{"bad date", `
orders:
  - id: 1
    customer_id: 1
    product_id: 1
    quantity: 1
    order_date: "02/01/2024"
`},
		{"negative discount", `
discounts:
  - id: 1
    order_id: 1
    discount_amount: "-5"
`},
		{"not yaml", `{{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSnapshot([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadSnapshotFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	store, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Len(t, store.Orders(), 2)

	_, err = LoadSnapshot(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
