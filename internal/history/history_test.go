package history_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhaySingh4321/shop-managerr/internal/history"
	"github.com/AbhaySingh4321/shop-managerr/internal/model"
)

func day(d int, hour int) time.Time {
	return time.Date(2025, time.March, d, hour, 0, 0, 0, time.Local)
}

func TestFilterSales(t *testing.T) {
	rice := model.Product{ID: uuid.New(), Name: "Rice"}
	beans := model.Product{ID: uuid.New(), Name: "Beans"}
	products := []model.Product{rice, beans}

	sales := []model.SaleRecord{
		{ID: uuid.New(), CustomerName: "Alice", ProductID: rice.ID, Quantity: 3, Timestamp: day(10, 9)},
		{ID: uuid.New(), CustomerName: "Bob", ProductID: beans.ID, Quantity: 1, Timestamp: day(12, 23)},
		{ID: uuid.New(), CustomerName: "Carol", ProductID: uuid.New(), Quantity: 2, Timestamp: day(14, 0)},
	}

	t.Run("Should return everything for an empty filter", func(t *testing.T) {
		rows := history.FilterSales(sales, products, history.Filter{})
		require.Len(t, rows, 3)
	})

	t.Run("Should match customer name case-insensitively", func(t *testing.T) {
		rows := history.FilterSales(sales, products, history.Filter{Query: "aLiCe"})
		require.Len(t, rows, 1)
		assert.Equal(t, "Alice", rows[0].Record.CustomerName)
	})

	t.Run("Should match the resolved product name", func(t *testing.T) {
		rows := history.FilterSales(sales, products, history.Filter{Query: "beans"})
		require.Len(t, rows, 1)
		assert.Equal(t, "Bob", rows[0].Record.CustomerName)
	})

	t.Run("Should display a placeholder for orphaned records", func(t *testing.T) {
		rows := history.FilterSales(sales, products, history.Filter{Query: "carol"})
		require.Len(t, rows, 1)
		assert.Equal(t, history.UnknownProductName, rows[0].ProductName)
	})

	t.Run("Should include the whole boundary days", func(t *testing.T) {
		f := history.Filter{From: day(10, 15), To: day(12, 1)}
		rows := history.FilterSales(sales, products, f)
		require.Len(t, rows, 2, "09:00 on the from-day and 23:00 on the to-day are both inside")
	})

	t.Run("Should exclude records outside the range", func(t *testing.T) {
		f := history.Filter{From: day(11, 0), To: day(13, 0)}
		rows := history.FilterSales(sales, products, f)
		require.Len(t, rows, 1)
		assert.Equal(t, "Bob", rows[0].Record.CustomerName)
	})

	t.Run("Should treat zero bounds as unbounded", func(t *testing.T) {
		rows := history.FilterSales(sales, products, history.Filter{From: day(12, 0)})
		require.Len(t, rows, 2)

		rows = history.FilterSales(sales, products, history.Filter{To: day(12, 0)})
		require.Len(t, rows, 2)
	})

	t.Run("Should not mutate the input", func(t *testing.T) {
		before := make([]model.SaleRecord, len(sales))
		copy(before, sales)
		history.FilterSales(sales, products, history.Filter{Query: "rice", From: day(1, 0), To: day(28, 0)})
		assert.Equal(t, before, sales)
	})
}

func TestFilterRestocks(t *testing.T) {
	rice := model.Product{ID: uuid.New(), Name: "Rice"}
	products := []model.Product{rice}

	restocks := []model.RestockRecord{
		{ID: uuid.New(), SupplierName: "Acme Supplies", ProductID: rice.ID, Quantity: 20, Timestamp: day(5, 10)},
		{ID: uuid.New(), SupplierName: "Globex", ProductID: uuid.New(), Quantity: 5, Timestamp: day(20, 10)},
	}

	t.Run("Should match supplier name", func(t *testing.T) {
		rows := history.FilterRestocks(restocks, products, history.Filter{Query: "acme"})
		require.Len(t, rows, 1)
		assert.Equal(t, "Rice", rows[0].ProductName)
	})

	t.Run("Should combine text and date filters", func(t *testing.T) {
		f := history.Filter{Query: "globex", From: day(6, 0)}
		rows := history.FilterRestocks(restocks, products, f)
		require.Len(t, rows, 1)
		assert.Equal(t, history.UnknownProductName, rows[0].ProductName)
	})
}
