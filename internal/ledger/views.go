package ledger

import (
	"sort"
	"strings"

	"github.com/AbhaySingh4321/shop-managerr/internal/model"
)

// Summary is the dashboard aggregate view, recomputed on demand.
type Summary struct {
	TotalProducts int `json:"total_products"`
	TotalSales    int `json:"total_sales"`
	TotalRestocks int `json:"total_restocks"`
	LowStockCount int `json:"low_stock_count"`
}

// Products returns all products sorted by name.
func (l *Ledger) Products() []model.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Product, 0, len(l.products))
	for _, p := range l.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// SellableProducts returns the products with stock remaining, sorted by name.
// This backs the sale form's product picker.
func (l *Ledger) SellableProducts() []model.Product {
	all := l.Products()
	out := all[:0]
	for _, p := range all {
		if p.Stock > 0 {
			out = append(out, p)
		}
	}
	return out
}

// LowStock returns the products below the low-stock threshold, sorted by name.
func (l *Ledger) LowStock() []model.Product {
	all := l.Products()
	out := all[:0]
	for _, p := range all {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

// Sales returns the cached sale records, most recent first.
func (l *Ledger) Sales() []model.SaleRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.SaleRecord, len(l.sales))
	copy(out, l.sales)
	return out
}

// Restocks returns the cached restock records, most recent first.
func (l *Ledger) Restocks() []model.RestockRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.RestockRecord, len(l.restocks))
	copy(out, l.restocks)
	return out
}

// Summarize recomputes the dashboard aggregates.
func (l *Ledger) Summarize() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	lowStock := 0
	for _, p := range l.products {
		if p.IsLowStock() {
			lowStock++
		}
	}

	return Summary{
		TotalProducts: len(l.products),
		TotalSales:    len(l.sales),
		TotalRestocks: len(l.restocks),
		LowStockCount: lowStock,
	}
}
