package model

import (
	"time"

	"github.com/google/uuid"
)

// SaleRecord is a completed stock decrement against one product.
type SaleRecord struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customer_name"`
	ProductID    uuid.UUID `json:"product_id"`
	Quantity     int       `json:"quantity"`
	Timestamp    time.Time `json:"timestamp"`
}
