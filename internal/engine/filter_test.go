package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrInt(v int64) *int64       { return &v }
func ptrDate(s string) *time.Time { t := date(s); return &t }

func TestOrderFilterValidate(t *testing.T) {
	assert.NoError(t, OrderFilter{}.Validate())
	assert.NoError(t, OrderFilter{ProductID: ptrInt(1), From: ptrDate("2024-01-01"), To: ptrDate("2024-01-31")}.Validate())

	for name, f := range map[string]OrderFilter{
		"zero product":     {ProductID: ptrInt(0)},
		"negative product": {ProductID: ptrInt(-3)},
		"zero customer":    {CustomerID: ptrInt(0)},
		"inverted range":   {From: ptrDate("2024-02-01"), To: ptrDate("2024-01-01")},
	} {
		err := f.Validate()
		require.Error(t, err, name)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, name)
	}
}

func TestOrderFilterApply(t *testing.T) {
	store := testStore()
	orders := store.Orders()

	assert.Len(t, OrderFilter{}.Apply(orders), 4)
	assert.Len(t, OrderFilter{ProductID: ptrInt(1)}.Apply(orders), 2)
	assert.Len(t, OrderFilter{CustomerID: ptrInt(2)}.Apply(orders), 2)

	// Date bounds are inclusive on both ends.
	ranged := OrderFilter{From: ptrDate("2024-01-02"), To: ptrDate("2024-01-03")}.Apply(orders)
	require.Len(t, ranged, 2)
	assert.EqualValues(t, 1, ranged[0].ID)
	assert.EqualValues(t, 3, ranged[1].ID)

	combined := OrderFilter{ProductID: ptrInt(1), From: ptrDate("2024-01-05")}.Apply(orders)
	require.Len(t, combined, 1)
	assert.EqualValues(t, 2, combined[0].ID)
}
