package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level below which a product is flagged on the
// dashboard.
const LowStockThreshold = 50

type Product struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Stock     int             `json:"stock"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsLowStock reports whether the product should appear in the low-stock view.
func (p Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}

// NameEquals compares product names case-insensitively, the same rule used for
// the duplicate-name check at creation time.
func NameEquals(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
