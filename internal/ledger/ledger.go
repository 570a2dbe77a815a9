package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AbhaySingh4321/shop-managerr/internal/apperr"
	"github.com/AbhaySingh4321/shop-managerr/internal/model"
)

// Ledger is the in-memory mirror of the authoritative store: products keyed by
// id plus the cached sale and restock record lists. It owns the stock
// arithmetic that must hold across sales, restocks and reversals.
//
// The mirror is mutated from two paths only: the reconciler replacing a whole
// table after a remote change notification, and the initiating session
// applying its own write right after the store confirmed it. It is therefore
// eventually consistent with the store, never ahead of it.
type Ledger struct {
	mu       sync.RWMutex
	products map[uuid.UUID]model.Product
	sales    []model.SaleRecord
	restocks []model.RestockRecord
}

func New() *Ledger {
	return &Ledger{
		products: make(map[uuid.UUID]model.Product),
	}
}

// Product returns a snapshot of the product with the given id.
func (l *Ledger) Product(id uuid.UUID) (model.Product, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.products[id]
	return p, ok
}

// ValidateSale checks the sale preconditions against the current mirror
// without mutating it. It returns the product snapshot the check ran against
// so callers can derive the post-sale stock from the same value.
func (l *Ledger) ValidateSale(productID uuid.UUID, quantity int) (model.Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.validateSaleLocked(productID, quantity)
}

func (l *Ledger) validateSaleLocked(productID uuid.UUID, quantity int) (model.Product, error) {
	if quantity <= 0 {
		return model.Product{}, apperr.InvalidQuantityErr
	}

	p, ok := l.products[productID]
	if !ok {
		return model.Product{}, apperr.ProductNotFoundErr
	}

	if p.Stock < quantity {
		return model.Product{}, apperr.InsufficientStockErr.WrapParent(
			fmt.Errorf("available %d, requested %d", p.Stock, quantity))
	}

	return p, nil
}

// ApplySale validates and applies a sale, emitting the SaleRecord that
// represents it. Stock is decremented by quantity; the record is cached as the
// most recent sale.
func (l *Ledger) ApplySale(productID uuid.UUID, quantity int) (model.SaleRecord, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.SaleRecord{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	rec := model.SaleRecord{
		ID:        id,
		ProductID: productID,
		Quantity:  quantity,
		Timestamp: time.Now(),
	}

	if err := l.ApplySaleRecord(rec); err != nil {
		return model.SaleRecord{}, err
	}

	return rec, nil
}

// ApplySaleRecord applies an already-built sale record, typically one the
// store just accepted. Preconditions are re-checked against the mirror so a
// concurrent remote refresh cannot drive stock negative through this path.
func (l *Ledger) ApplySaleRecord(rec model.SaleRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.validateSaleLocked(rec.ProductID, rec.Quantity)
	if err != nil {
		return err
	}

	p.Stock -= rec.Quantity
	l.products[p.ID] = p
	l.sales = append([]model.SaleRecord{rec}, l.sales...)

	return nil
}

// ValidateRestock checks the restock preconditions without mutating the
// mirror.
func (l *Ledger) ValidateRestock(productID uuid.UUID, quantity int) (model.Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.validateRestockLocked(productID, quantity)
}

func (l *Ledger) validateRestockLocked(productID uuid.UUID, quantity int) (model.Product, error) {
	if quantity <= 0 {
		return model.Product{}, apperr.InvalidQuantityErr
	}

	p, ok := l.products[productID]
	if !ok {
		return model.Product{}, apperr.ProductNotFoundErr
	}

	return p, nil
}

// ApplyRestock validates and applies a restock, emitting the RestockRecord
// that represents it.
func (l *Ledger) ApplyRestock(productID uuid.UUID, quantity int, supplier, notes string) (model.RestockRecord, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.RestockRecord{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	rec := model.RestockRecord{
		ID:           id,
		SupplierName: supplier,
		ProductID:    productID,
		Quantity:     quantity,
		Notes:        notes,
		Timestamp:    time.Now(),
	}

	if err := l.ApplyRestockRecord(rec); err != nil {
		return model.RestockRecord{}, err
	}

	return rec, nil
}

// ApplyRestockRecord applies an already-built restock record.
func (l *Ledger) ApplyRestockRecord(rec model.RestockRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.validateRestockLocked(rec.ProductID, rec.Quantity)
	if err != nil {
		return err
	}

	p.Stock += rec.Quantity
	l.products[p.ID] = p
	l.restocks = append([]model.RestockRecord{rec}, l.restocks...)

	return nil
}

// ReverseSale restores the referenced product's stock by the record's quantity
// and removes the record from the mirror. It is not idempotent: reversing the
// same record twice double-restores, so callers must invoke it exactly once
// per record id. A missing product (deleted by another session) only removes
// the record.
func (l *Ledger) ReverseSale(rec model.SaleRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.products[rec.ProductID]; ok {
		p.Stock += rec.Quantity
		l.products[p.ID] = p
	}

	l.sales = removeSale(l.sales, rec.ID)
}

// ReverseRestock decrements the referenced product's stock by the record's
// quantity, floored at 0, and removes the record. The floor is deliberately
// asymmetric with ReverseSale: when intervening sales already consumed the
// restocked units, reversing the restock must not push stock negative.
func (l *Ledger) ReverseRestock(rec model.RestockRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.products[rec.ProductID]; ok {
		p.Stock -= rec.Quantity
		if p.Stock < 0 {
			p.Stock = 0
		}
		l.products[p.ID] = p
	}

	l.restocks = removeRestock(l.restocks, rec.ID)
}

// ValidateNewName rejects a product name colliding case-insensitively with any
// existing product. Extra pending names (a batch being staged) participate in
// the check as well.
func (l *Ledger) ValidateNewName(name string, pending ...string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.validateNewNameLocked(name, pending...)
}

func (l *Ledger) validateNewNameLocked(name string, pending ...string) error {
	for _, p := range l.products {
		if model.NameEquals(p.Name, name) {
			return apperr.DuplicateNameErr.WrapParent(fmt.Errorf("name %q taken by product %s", name, p.ID))
		}
	}
	for _, pn := range pending {
		if model.NameEquals(pn, name) {
			return apperr.DuplicateNameErr.WrapParent(fmt.Errorf("name %q already queued", name))
		}
	}
	return nil
}

// CreateProduct validates and adds a new product to the mirror, emitting the
// Product it built.
func (l *Ledger) CreateProduct(name string, stock int, unit string, price decimal.Decimal) (model.Product, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	p := model.Product{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Stock:     stock,
		Unit:      unit,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := l.AddProduct(p); err != nil {
		return model.Product{}, err
	}

	return p, nil
}

// AddProduct adds an already-built product, re-running the duplicate-name and
// non-negative-stock checks against the mirror.
func (l *Ledger) AddProduct(p model.Product) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p.Stock < 0 {
		return apperr.ValidationErr.WrapParent(fmt.Errorf("stock %d is negative", p.Stock))
	}

	if err := l.validateNewNameLocked(p.Name); err != nil {
		return err
	}

	l.products[p.ID] = p
	return nil
}

// RemoveProduct deletes the product from the mirror. Historical sale and
// restock records are kept; their product reference resolves to the
// "Unknown product" placeholder from then on.
func (l *Ledger) RemoveProduct(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.products[id]; !ok {
		return apperr.ProductNotFoundErr
	}

	delete(l.products, id)
	return nil
}

// Sale returns the cached sale record with the given id.
func (l *Ledger) Sale(id uuid.UUID) (model.SaleRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, rec := range l.sales {
		if rec.ID == id {
			return rec, true
		}
	}
	return model.SaleRecord{}, false
}

// Restock returns the cached restock record with the given id.
func (l *Ledger) Restock(id uuid.UUID) (model.RestockRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, rec := range l.restocks {
		if rec.ID == id {
			return rec, true
		}
	}
	return model.RestockRecord{}, false
}

// ReplaceProducts swaps the whole product mirror for a fresh store read.
func (l *Ledger) ReplaceProducts(products []model.Product) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	l.products = m
}

// ReplaceSales swaps the cached sale list for a fresh store read, most recent
// first.
func (l *Ledger) ReplaceSales(sales []model.SaleRecord) {
	sorted := make([]model.SaleRecord, len(sales))
	copy(sorted, sales)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sales = sorted
}

// ReplaceRestocks swaps the cached restock list for a fresh store read, most
// recent first.
func (l *Ledger) ReplaceRestocks(restocks []model.RestockRecord) {
	sorted := make([]model.RestockRecord, len(restocks))
	copy(sorted, restocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	l.restocks = sorted
}

func removeSale(sales []model.SaleRecord, id uuid.UUID) []model.SaleRecord {
	out := sales[:0]
	for _, rec := range sales {
		if rec.ID != id {
			out = append(out, rec)
		}
	}
	return out
}

func removeRestock(restocks []model.RestockRecord, id uuid.UUID) []model.RestockRecord {
	out := restocks[:0]
	for _, rec := range restocks {
		if rec.ID != id {
			out = append(out, rec)
		}
	}
	return out
}
