// Package history filters sale and restock records for display. Everything in
// here is pure: records are matched against a text query and an inclusive
// calendar-day date range, never mutated.
package history

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AbhaySingh4321/shop-managerr/internal/model"
)

// UnknownProductName is displayed when a record references a product that has
// since been deleted.
const UnknownProductName = "Unknown product"

// Filter bounds a history query. Dates are calendar days: From is widened to
// 00:00:00 and To to 23:59:59.999999999 in the date's location. Zero values
// leave that side unbounded, and an empty query matches everything.
type Filter struct {
	Query string
	From  time.Time
	To    time.Time
}

func (f Filter) matchTime(ts time.Time) bool {
	if !f.From.IsZero() {
		from := startOfDay(f.From)
		if ts.Before(from) {
			return false
		}
	}
	if !f.To.IsZero() {
		to := endOfDay(f.To)
		if ts.After(to) {
			return false
		}
	}
	return true
}

func (f Filter) matchText(values ...string) bool {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// SaleRow is a sale record resolved for display.
type SaleRow struct {
	Record      model.SaleRecord `json:"record"`
	ProductName string           `json:"product_name"`
}

// RestockRow is a restock record resolved for display.
type RestockRow struct {
	Record      model.RestockRecord `json:"record"`
	ProductName string              `json:"product_name"`
}

// FilterSales returns the sales matching the filter, preserving input order.
// The text query matches the customer name or the resolved product name,
// case-insensitively.
func FilterSales(sales []model.SaleRecord, products []model.Product, f Filter) []SaleRow {
	names := nameIndex(products)

	out := make([]SaleRow, 0, len(sales))
	for _, rec := range sales {
		name := resolveName(names, rec.ProductID)
		if !f.matchTime(rec.Timestamp) || !f.matchText(rec.CustomerName, name) {
			continue
		}
		out = append(out, SaleRow{Record: rec, ProductName: name})
	}
	return out
}

// FilterRestocks returns the restocks matching the filter, preserving input
// order. The text query matches the supplier name or the resolved product
// name, case-insensitively.
func FilterRestocks(restocks []model.RestockRecord, products []model.Product, f Filter) []RestockRow {
	names := nameIndex(products)

	out := make([]RestockRow, 0, len(restocks))
	for _, rec := range restocks {
		name := resolveName(names, rec.ProductID)
		if !f.matchTime(rec.Timestamp) || !f.matchText(rec.SupplierName, name) {
			continue
		}
		out = append(out, RestockRow{Record: rec, ProductName: name})
	}
	return out
}

func nameIndex(products []model.Product) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names
}

func resolveName(names map[uuid.UUID]string, id uuid.UUID) string {
	if name, ok := names[id]; ok {
		return name
	}
	return UnknownProductName
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
