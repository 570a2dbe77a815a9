// Package reconcile replaces the local mirror with fresh store reads after
// remote change notifications. Replacing wholesale instead of patching trades
// any optimistic local state for strong agreement with the source of truth.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AbhaySingh4321/shop-managerr/internal/event"
	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/repository"
)

type Reconciler struct {
	logger      *slog.Logger
	ledger      *ledger.Ledger
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	restockRepo repository.RestockRepository
}

var _ event.Reconciler = (*Reconciler)(nil)

func New(
	logger *slog.Logger,
	ldg *ledger.Ledger,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	restockRepo repository.RestockRepository,
) *Reconciler {
	return &Reconciler{
		logger:      logger.With(slog.String("service", "reconcile")),
		ledger:      ldg,
		productRepo: productRepo,
		saleRepo:    saleRepo,
		restockRepo: restockRepo,
	}
}

// Reconcile re-fetches the table's full contents and swaps the corresponding
// mirror. Products come back sorted by name, records by timestamp descending.
func (r *Reconciler) Reconcile(ctx context.Context, table event.Table) error {
	switch table {
	case event.TableProducts:
		products, err := r.productRepo.ListAllProducts(ctx)
		if err != nil {
			return fmt.Errorf("list all products: %w", err)
		}
		r.ledger.ReplaceProducts(products)
		r.logger.DebugContext(ctx, "products mirror replaced", slog.Int("count", len(products)))

	case event.TableSales:
		sales, err := r.saleRepo.ListAllSales(ctx)
		if err != nil {
			return fmt.Errorf("list all sales: %w", err)
		}
		r.ledger.ReplaceSales(sales)
		r.logger.DebugContext(ctx, "sales mirror replaced", slog.Int("count", len(sales)))

	case event.TableRestock:
		restocks, err := r.restockRepo.ListAllRestocks(ctx)
		if err != nil {
			return fmt.Errorf("list all restocks: %w", err)
		}
		r.ledger.ReplaceRestocks(restocks)
		r.logger.DebugContext(ctx, "restock mirror replaced", slog.Int("count", len(restocks)))

	default:
		return fmt.Errorf("unknown table: %s", table)
	}

	return nil
}

// SyncAll rebuilds the whole mirror, used on session start before any
// notification has arrived.
func (r *Reconciler) SyncAll(ctx context.Context) error {
	for _, table := range event.Tables {
		if err := r.Reconcile(ctx, table); err != nil {
			return err
		}
	}
	return nil
}
