package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/AbhaySingh4321/shop-managerr/internal/apperr"
	"github.com/AbhaySingh4321/shop-managerr/internal/cart"
	"github.com/AbhaySingh4321/shop-managerr/internal/event"
	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/model"
	"github.com/AbhaySingh4321/shop-managerr/internal/repository"
	"github.com/AbhaySingh4321/shop-managerr/internal/storage/db"
	"github.com/AbhaySingh4321/shop-managerr/pkg/outbox"
	"github.com/AbhaySingh4321/shop-managerr/pkg/ptr"
)

// PendingProductEntry is a product creation queued before a single batched
// insert. Entries live only until the batch is committed or discarded.
type PendingProductEntry struct {
	Name  string
	Stock int
	Unit  string
	Price decimal.Decimal
}

type InventoryService interface {
	CreateProduct(ctx context.Context, entry PendingProductEntry) (model.Product, error)
	CreateProducts(ctx context.Context, entries []PendingProductEntry) ([]model.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	RecordSale(ctx context.Context, customerName string, productID uuid.UUID, quantity int) (model.SaleRecord, error)
	DeleteSale(ctx context.Context, saleID uuid.UUID) error
	CommitCart(ctx context.Context, c *cart.Cart, customerName string) cart.CommitResult

	RecordRestock(ctx context.Context, supplierName string, productID uuid.UUID, quantity int, notes string) (model.RestockRecord, error)
	DeleteRestock(ctx context.Context, restockID uuid.UUID) error
}

// inventoryService validates every mutation against the ledger mirror, writes
// the store together with the change notifications in one transaction, then
// applies the same mutation to the mirror.
//
// The stock value written is derived from the mirror snapshot read just before
// the transaction (read-then-write). Two sessions racing on one product can
// both pass validation and both win the update, driving stock below zero in
// the store. Known defect, left in place; hardening it requires a server-side
// conditional decrement.
type inventoryService struct {
	logger        *slog.Logger
	db            db.DB
	ledger        *ledger.Ledger
	productRepo   repository.ProductRepository
	saleRepo      repository.SaleRepository
	restockRepo   repository.RestockRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewInventoryService(
	logger *slog.Logger,
	db db.DB,
	ldg *ledger.Ledger,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	restockRepo repository.RestockRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) InventoryService {
	return &inventoryService{
		logger:        logger.With(slog.String("service", "inventory")),
		db:            db,
		ledger:        ldg,
		productRepo:   productRepo,
		saleRepo:      saleRepo,
		restockRepo:   restockRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, entry PendingProductEntry) (model.Product, error) {
	products, err := s.CreateProducts(ctx, []PendingProductEntry{entry})
	if err != nil {
		return model.Product{}, err
	}
	return products[0], nil
}

func (s *inventoryService) CreateProducts(ctx context.Context, entries []PendingProductEntry) ([]model.Product, error) {
	if len(entries) == 0 {
		return nil, apperr.ValidationErr.WrapParent(errors.New("no product entries"))
	}

	now := time.Now()
	products := make([]model.Product, 0, len(entries))
	queued := make([]string, 0, len(entries))

	for _, entry := range entries {
		if err := validateProductEntry(entry); err != nil {
			return nil, err
		}
		if err := s.ledger.ValidateNewName(entry.Name, queued...); err != nil {
			return nil, err
		}
		queued = append(queued, entry.Name)

		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate uuid v7: %w", err)
		}
		products = append(products, model.Product{
			ID:        id,
			Name:      strings.TrimSpace(entry.Name),
			Stock:     entry.Stock,
			Unit:      entry.Unit,
			Price:     entry.Price,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.productRepo.WithDB(tx).CreateProducts(ctx, products); err != nil {
			return fmt.Errorf("create products: %w", err)
		}
		return s.notifyChanged(ctx, tx, event.TableProducts)
	}); err != nil {
		return nil, apperr.RemoteFailureErr.WrapParent(err)
	}

	for _, p := range products {
		if err := s.ledger.AddProduct(p); err != nil {
			s.logger.WarnContext(ctx, "mirror rejected committed product",
				slog.String("product_id", p.ID.String()), slog.Any("error", err))
		}
	}

	return products, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, ok := s.ledger.Product(productID); !ok {
		return apperr.ProductNotFoundErr
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.productRepo.WithDB(tx).DeleteProduct(ctx, productID); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return s.notifyChanged(ctx, tx, event.TableProducts)
	}); err != nil {
		return apperr.RemoteFailureErr.WrapParent(err)
	}

	// Historical sale/restock rows stay behind on purpose; they resolve to a
	// placeholder name from here on.
	if err := s.ledger.RemoveProduct(productID); err != nil {
		s.logger.WarnContext(ctx, "mirror product already gone",
			slog.String("product_id", productID.String()))
	}

	return nil
}

func (s *inventoryService) RecordSale(ctx context.Context, customerName string, productID uuid.UUID, quantity int) (model.SaleRecord, error) {
	if strings.TrimSpace(customerName) == "" {
		return model.SaleRecord{}, apperr.EmptyCustomerNameErr
	}

	p, err := s.ledger.ValidateSale(productID, quantity)
	if err != nil {
		return model.SaleRecord{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.SaleRecord{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	rec := model.SaleRecord{
		ID:           id,
		CustomerName: strings.TrimSpace(customerName),
		ProductID:    productID,
		Quantity:     quantity,
		Timestamp:    time.Now(),
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.productRepo.WithDB(tx).UpdateStock(ctx, productID, p.Stock-quantity); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.ProductNotFoundErr
			}
			return fmt.Errorf("update stock: %w", err)
		}
		if err := s.saleRepo.WithDB(tx).CreateSale(ctx, rec); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.notifyChanged(ctx, tx, event.TableProducts); err != nil {
			return err
		}
		return s.notifyChanged(ctx, tx, event.TableSales)
	}); err != nil {
		return model.SaleRecord{}, s.remoteOrDomainErr(err)
	}

	if err := s.ledger.ApplySaleRecord(rec); err != nil {
		// The store accepted the sale but the mirror moved underneath us
		// (remote refresh between validation and apply). The next
		// reconciliation settles it.
		s.logger.WarnContext(ctx, "mirror rejected committed sale",
			slog.String("sale_id", rec.ID.String()), slog.Any("error", err))
	}

	return rec, nil
}

func (s *inventoryService) DeleteSale(ctx context.Context, saleID uuid.UUID) error {
	rec, ok := s.ledger.Sale(saleID)
	if !ok {
		return apperr.SaleNotFoundErr
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if p, ok := s.ledger.Product(rec.ProductID); ok {
			if err := s.productRepo.WithDB(tx).UpdateStock(ctx, rec.ProductID, p.Stock+rec.Quantity); err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("restore stock: %w", err)
			}
		}
		if err := s.saleRepo.WithDB(tx).DeleteSale(ctx, saleID); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}
		if err := s.notifyChanged(ctx, tx, event.TableProducts); err != nil {
			return err
		}
		return s.notifyChanged(ctx, tx, event.TableSales)
	}); err != nil {
		return apperr.RemoteFailureErr.WrapParent(err)
	}

	s.ledger.ReverseSale(rec)
	return nil
}

// CommitCart applies each staged line as its own sale, in order. A line
// failing mid-way halts the commit: earlier lines stay applied (no rollback)
// and the result names the failed line. The cart is cleared only after every
// line succeeded.
func (s *inventoryService) CommitCart(ctx context.Context, c *cart.Cart, customerName string) cart.CommitResult {
	if err := c.ValidateCommit(customerName); err != nil {
		return cart.CommitResult{Err: err}
	}

	var applied []model.SaleRecord
	for _, line := range c.Lines() {
		rec, err := s.RecordSale(ctx, customerName, line.ProductID, line.Quantity)
		if err != nil {
			line := line
			return cart.CommitResult{
				Applied:    applied,
				FailedLine: &line,
				Err:        err,
			}
		}
		applied = append(applied, rec)
	}

	c.Reset()
	return cart.CommitResult{Applied: applied}
}

func (s *inventoryService) RecordRestock(ctx context.Context, supplierName string, productID uuid.UUID, quantity int, notes string) (model.RestockRecord, error) {
	if strings.TrimSpace(supplierName) == "" {
		return model.RestockRecord{}, apperr.ValidationErr.WrapParent(errors.New("supplier name is required"))
	}

	p, err := s.ledger.ValidateRestock(productID, quantity)
	if err != nil {
		return model.RestockRecord{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.RestockRecord{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	rec := model.RestockRecord{
		ID:           id,
		SupplierName: strings.TrimSpace(supplierName),
		ProductID:    productID,
		Quantity:     quantity,
		Notes:        strings.TrimSpace(notes),
		Timestamp:    time.Now(),
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.productRepo.WithDB(tx).UpdateStock(ctx, productID, p.Stock+quantity); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.ProductNotFoundErr
			}
			return fmt.Errorf("update stock: %w", err)
		}
		if err := s.restockRepo.WithDB(tx).CreateRestock(ctx, rec); err != nil {
			return fmt.Errorf("create restock: %w", err)
		}
		if err := s.notifyChanged(ctx, tx, event.TableProducts); err != nil {
			return err
		}
		return s.notifyChanged(ctx, tx, event.TableRestock)
	}); err != nil {
		return model.RestockRecord{}, s.remoteOrDomainErr(err)
	}

	if err := s.ledger.ApplyRestockRecord(rec); err != nil {
		s.logger.WarnContext(ctx, "mirror rejected committed restock",
			slog.String("restock_id", rec.ID.String()), slog.Any("error", err))
	}

	return rec, nil
}

func (s *inventoryService) DeleteRestock(ctx context.Context, restockID uuid.UUID) error {
	rec, ok := s.ledger.Restock(restockID)
	if !ok {
		return apperr.RestockNotFoundErr
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if p, ok := s.ledger.Product(rec.ProductID); ok {
			// Floored at zero: intervening sales may already have consumed
			// the restocked units.
			restored := p.Stock - rec.Quantity
			if restored < 0 {
				restored = 0
			}
			if err := s.productRepo.WithDB(tx).UpdateStock(ctx, rec.ProductID, restored); err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("reduce stock: %w", err)
			}
		}
		if err := s.restockRepo.WithDB(tx).DeleteRestock(ctx, restockID); err != nil {
			return fmt.Errorf("delete restock: %w", err)
		}
		if err := s.notifyChanged(ctx, tx, event.TableProducts); err != nil {
			return err
		}
		return s.notifyChanged(ctx, tx, event.TableRestock)
	}); err != nil {
		return apperr.RemoteFailureErr.WrapParent(err)
	}

	s.ledger.ReverseRestock(rec)
	return nil
}

// notifyChanged enqueues the table's change notification in the same
// transaction as the write it describes, so a committed write always has its
// signal and an aborted one never does.
func (s *inventoryService) notifyChanged(ctx context.Context, tx db.DB, table event.Table) error {
	ev := event.TableChangedEvent{
		Table:     table,
		ChangedAt: time.Now(),
	}

	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal table changed event: %w", err)
	}

	if err := s.outboxMsgRepo.
		WithDB(tx).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        table.Topic(),
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: ptr.New(string(table)),
		}); err != nil {
		return fmt.Errorf("create outbox msg: %w", err)
	}

	return nil
}

// remoteOrDomainErr keeps domain errors raised inside the transaction intact
// and wraps everything else as a remote failure, message surfaced verbatim.
func (s *inventoryService) remoteOrDomainErr(err error) error {
	if errors.Is(err, apperr.ProductNotFoundErr) {
		return apperr.ProductNotFoundErr
	}
	return apperr.RemoteFailureErr.WrapParent(err)
}

func validateProductEntry(entry PendingProductEntry) error {
	if strings.TrimSpace(entry.Name) == "" {
		return apperr.ValidationErr.WrapParent(errors.New("product name is required"))
	}
	if strings.TrimSpace(entry.Unit) == "" {
		return apperr.ValidationErr.WrapParent(errors.New("unit is required"))
	}
	if entry.Stock < 0 {
		return apperr.ValidationErr.WrapParent(fmt.Errorf("stock %d is negative", entry.Stock))
	}
	if entry.Price.IsNegative() {
		return apperr.ValidationErr.WrapParent(errors.New("price is negative"))
	}
	return nil
}
