package reconcile_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhaySingh4321/shop-managerr/internal/event"
	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/model"
	"github.com/AbhaySingh4321/shop-managerr/internal/reconcile"
	"github.com/AbhaySingh4321/shop-managerr/internal/repository"
	"github.com/AbhaySingh4321/shop-managerr/internal/storage/db"
)

type fakeProductRepo struct {
	repository.ProductRepository
	products []model.Product
	err      error
}

func (f *fakeProductRepo) WithDB(_ db.DB) repository.ProductRepository { return f }
func (f *fakeProductRepo) ListAllProducts(_ context.Context) ([]model.Product, error) {
	return f.products, f.err
}

type fakeSaleRepo struct {
	repository.SaleRepository
	sales []model.SaleRecord
}

func (f *fakeSaleRepo) WithDB(_ db.DB) repository.SaleRepository { return f }
func (f *fakeSaleRepo) ListAllSales(_ context.Context) ([]model.SaleRecord, error) {
	return f.sales, nil
}

type fakeRestockRepo struct {
	repository.RestockRepository
	restocks []model.RestockRecord
}

func (f *fakeRestockRepo) WithDB(_ db.DB) repository.RestockRepository { return f }
func (f *fakeRestockRepo) ListAllRestocks(_ context.Context) ([]model.RestockRecord, error) {
	return f.restocks, nil
}

func TestReconcile(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("Should replace the product mirror wholesale", func(t *testing.T) {
		l := ledger.New()
		stale, err := l.CreateProduct("Stale", 5, "kg", decimal.Zero)
		require.NoError(t, err)

		fresh := []model.Product{
			{ID: uuid.New(), Name: "Beans", Stock: 3},
			{ID: uuid.New(), Name: "Apples", Stock: 8},
		}
		r := reconcile.New(logger, l, &fakeProductRepo{products: fresh}, &fakeSaleRepo{}, &fakeRestockRepo{})

		require.NoError(t, r.Reconcile(ctx, event.TableProducts))

		_, ok := l.Product(stale.ID)
		assert.False(t, ok, "local-only state must be discarded")

		products := l.Products()
		require.Len(t, products, 2)
		assert.Equal(t, "Apples", products[0].Name, "products must come back sorted by name")
	})

	t.Run("Should sort re-fetched sales most recent first", func(t *testing.T) {
		l := ledger.New()
		now := time.Now()
		sales := []model.SaleRecord{
			{ID: uuid.New(), CustomerName: "old", Timestamp: now.Add(-time.Hour)},
			{ID: uuid.New(), CustomerName: "new", Timestamp: now},
		}
		r := reconcile.New(logger, l, &fakeProductRepo{}, &fakeSaleRepo{sales: sales}, &fakeRestockRepo{})

		require.NoError(t, r.Reconcile(ctx, event.TableSales))

		got := l.Sales()
		require.Len(t, got, 2)
		assert.Equal(t, "new", got[0].CustomerName)
	})

	t.Run("Should propagate fetch errors without touching the mirror", func(t *testing.T) {
		l := ledger.New()
		_, err := l.CreateProduct("Kept", 5, "kg", decimal.Zero)
		require.NoError(t, err)

		r := reconcile.New(logger, l, &fakeProductRepo{err: errors.New("store down")}, &fakeSaleRepo{}, &fakeRestockRepo{})

		err = r.Reconcile(ctx, event.TableProducts)
		require.Error(t, err)
		assert.Len(t, l.Products(), 1)
	})

	t.Run("Should sync all three tables on session start", func(t *testing.T) {
		l := ledger.New()
		r := reconcile.New(logger, l,
			&fakeProductRepo{products: []model.Product{{ID: uuid.New(), Name: "Rice", Stock: 10}}},
			&fakeSaleRepo{sales: []model.SaleRecord{{ID: uuid.New()}}},
			&fakeRestockRepo{restocks: []model.RestockRecord{{ID: uuid.New()}}},
		)

		require.NoError(t, r.SyncAll(ctx))

		sum := l.Summarize()
		assert.Equal(t, 1, sum.TotalProducts)
		assert.Equal(t, 1, sum.TotalSales)
		assert.Equal(t, 1, sum.TotalRestocks)
	})
}
