package model

import (
	"time"

	"github.com/google/uuid"
)

// RestockRecord is a completed stock increment against one product.
type RestockRecord struct {
	ID           uuid.UUID `json:"id"`
	SupplierName string    `json:"supplier_name"`
	ProductID    uuid.UUID `json:"product_id"`
	Quantity     int       `json:"quantity"`
	Notes        string    `json:"notes"`
	Timestamp    time.Time `json:"timestamp"`
}
