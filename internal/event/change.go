package event

import (
	"fmt"
	"time"
)

// Table identifies which store table a change notification refers to.
type Table string

const (
	TableProducts Table = "products"
	TableSales    Table = "sales"
	TableRestock  Table = "restock"
)

// Tables lists every table carrying a change feed, one subscription each.
var Tables = []Table{TableProducts, TableSales, TableRestock}

// Validate implements the enum contract used by the request validator.
func (t Table) Validate() error {
	switch t {
	case TableProducts, TableSales, TableRestock:
		return nil
	default:
		return fmt.Errorf("unknown table: %s", t)
	}
}

// Topic returns the change-feed topic for the table.
func (t Table) Topic() string {
	return fmt.Sprintf("inventory.%s.changed", t)
}

// TableChangedEvent is the undifferentiated "something changed" signal.
// Inserts, updates and deletes all produce the same event; consumers re-fetch
// the whole table rather than patching incrementally.
type TableChangedEvent struct {
	Table     Table     `json:"table"`
	ChangedAt time.Time `json:"changed_at"`
}
