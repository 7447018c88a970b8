package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kallerup/pickline/internal/domain/catalog"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNew_RejectsMissingItem(t *testing.T) {
	_, err := New(catalog.Item{}, dec("1"))
	require.ErrorIs(t, err, ErrNoItem)
}

func TestNew_RejectsNonPositiveQuantity(t *testing.T) {
	it := catalog.NewDiscreteItem("pump", dec("8500"), dec("12"))

	for _, qty := range []string{"0", "-2"} {
		_, err := New(it, dec(qty))

		var iqErr *InvalidQuantityError
		require.ErrorAs(t, err, &iqErr)
		assert.Equal(t, "pump", iqErr.Item)
	}
}

func TestTotalPrice(t *testing.T) {
	it := catalog.NewBulkItem("oil", dec("40.50"), "litre")

	o, err := New(it, dec("2.5"))
	require.NoError(t, err)

	assert.True(t, dec("101.25").Equal(o.TotalPrice()))
}

func TestString(t *testing.T) {
	it := catalog.NewDiscreteItem("servo motor", dec("4300"), dec("1.1"))

	o, err := New(it, dec("2"))
	require.NoError(t, err)

	assert.Equal(t, "servo motor x 2", o.String())
}
