package cart_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhaySingh4321/shop-managerr/internal/apperr"
	"github.com/AbhaySingh4321/shop-managerr/internal/cart"
	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
)

func TestAddLine(t *testing.T) {
	t.Run("Should merge the same product into one line", func(t *testing.T) {
		l := ledger.New()
		rice, err := l.CreateProduct("Rice", 10, "kg", decimal.Zero)
		require.NoError(t, err)

		c := cart.New()
		require.NoError(t, c.AddLine(l, rice.ID, 5))
		require.NoError(t, c.AddLine(l, rice.ID, 3))

		lines := c.Lines()
		require.Len(t, lines, 1, "same product must never produce two lines")
		assert.Equal(t, 8, lines[0].Quantity)
		assert.Equal(t, "Rice", lines[0].ProductName)
	})

	t.Run("Should count staged quantity against stock", func(t *testing.T) {
		l := ledger.New()
		rice, err := l.CreateProduct("Rice", 10, "kg", decimal.Zero)
		require.NoError(t, err)

		c := cart.New()
		require.NoError(t, c.AddLine(l, rice.ID, 7))

		err = c.AddLine(l, rice.ID, 4)
		assert.ErrorIs(t, err, apperr.InsufficientStockErr)

		lines := c.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 7, lines[0].Quantity, "rejected add must not change the line")
	})

	t.Run("Should reject non-positive quantity", func(t *testing.T) {
		l := ledger.New()
		rice, err := l.CreateProduct("Rice", 10, "kg", decimal.Zero)
		require.NoError(t, err)

		c := cart.New()
		assert.ErrorIs(t, c.AddLine(l, rice.ID, 0), apperr.InvalidQuantityErr)
		assert.ErrorIs(t, c.AddLine(l, rice.ID, -2), apperr.InvalidQuantityErr)
	})
}

func TestRemoveLine(t *testing.T) {
	l := ledger.New()
	rice, err := l.CreateProduct("Rice", 10, "kg", decimal.Zero)
	require.NoError(t, err)
	beans, err := l.CreateProduct("Beans", 10, "kg", decimal.Zero)
	require.NoError(t, err)

	c := cart.New()
	require.NoError(t, c.AddLine(l, rice.ID, 5))
	require.NoError(t, c.AddLine(l, beans.ID, 2))

	c.RemoveLine(rice.ID)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, beans.ID, lines[0].ProductID)
}

func TestValidateCommit(t *testing.T) {
	l := ledger.New()
	rice, err := l.CreateProduct("Rice", 10, "kg", decimal.Zero)
	require.NoError(t, err)

	t.Run("Should reject an empty cart", func(t *testing.T) {
		c := cart.New()
		assert.ErrorIs(t, c.ValidateCommit("Alice"), apperr.EmptyCartErr)
	})

	t.Run("Should reject a blank customer name", func(t *testing.T) {
		c := cart.New()
		require.NoError(t, c.AddLine(l, rice.ID, 1))
		assert.ErrorIs(t, c.ValidateCommit("   "), apperr.EmptyCustomerNameErr)
	})
}
