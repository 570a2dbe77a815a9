package cart

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/AbhaySingh4321/shop-managerr/internal/apperr"
	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/model"
)

// Line is one staged (product, quantity) pair of an uncommitted multi-item
// sale. The product name is denormalized for display only. Lines are never
// persisted.
type Line struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
}

// Cart stages sale lines against a stock snapshot before a single commit.
// Adding the same product twice merges into one line by summing quantities.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// AddLine stages quantity units of the product. The stock check covers the
// quantity already staged for the same product plus the new quantity, so a
// cart can never request more than the snapshot holds.
func (c *Cart) AddLine(ldg *ledger.Ledger, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperr.InvalidQuantityErr
	}

	p, ok := ldg.Product(productID)
	if !ok {
		return apperr.ProductNotFoundErr
	}

	staged := 0
	idx := -1
	for i, line := range c.lines {
		if line.ProductID == productID {
			staged = line.Quantity
			idx = i
			break
		}
	}

	if p.Stock < staged+quantity {
		return apperr.InsufficientStockErr.WrapParent(
			fmt.Errorf("available %d, requested %d (of which %d already staged)", p.Stock, staged+quantity, staged))
	}

	if idx >= 0 {
		c.lines[idx].Quantity += quantity
		return nil
	}

	c.lines = append(c.lines, Line{
		ProductID:   productID,
		ProductName: p.Name,
		Quantity:    quantity,
	})
	return nil
}

// RemoveLine drops the whole line for the product. There is no partial
// decrement.
func (c *Cart) RemoveLine(productID uuid.UUID) {
	out := c.lines[:0]
	for _, line := range c.lines {
		if line.ProductID != productID {
			out = append(out, line)
		}
	}
	c.lines = out
}

// Lines returns a copy of the staged lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of staged lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Reset discards all staged lines.
func (c *Cart) Reset() {
	c.lines = nil
}

// ValidateCommit checks the commit preconditions: a non-empty customer name
// and at least one line.
func (c *Cart) ValidateCommit(customerName string) error {
	if strings.TrimSpace(customerName) == "" {
		return apperr.EmptyCustomerNameErr
	}
	if len(c.lines) == 0 {
		return apperr.EmptyCartErr
	}
	return nil
}

// CommitResult reports a cart commit: the sale records that were applied and,
// when the commit halted mid-way, the line that failed. Applied lines are not
// rolled back.
type CommitResult struct {
	Applied    []model.SaleRecord
	FailedLine *Line
	Err        error
}

// Completed reports whether every line was applied.
func (r CommitResult) Completed() bool {
	return r.Err == nil && r.FailedLine == nil
}
