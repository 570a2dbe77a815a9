package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AbhaySingh4321/shop-managerr/internal/model"
	"github.com/AbhaySingh4321/shop-managerr/internal/storage/db"
)

type RestockRepository interface {
	WithDB(db db.DB) RestockRepository
	CreateRestock(ctx context.Context, restock model.RestockRecord) error
	DeleteRestock(ctx context.Context, restockID uuid.UUID) error
	ListAllRestocks(ctx context.Context) ([]model.RestockRecord, error)
}

type restockRepository struct {
	db db.DB
}

func NewRestockRepository(db db.DB) RestockRepository {
	return &restockRepository{db: db}
}

func (r restockRepository) WithDB(db db.DB) RestockRepository {
	return &restockRepository{db: db}
}

func (r restockRepository) CreateRestock(ctx context.Context, restock model.RestockRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO restock (id, supplier_name, product_id, quantity, notes, timestamp)
		VALUES (@id, @supplier_name, @product_id, @quantity, @notes, @timestamp);
	`, pgx.NamedArgs{
		"id":            restock.ID,
		"supplier_name": restock.SupplierName,
		"product_id":    restock.ProductID,
		"quantity":      restock.Quantity,
		"notes":         restock.Notes,
		"timestamp":     restock.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("create restock: %w", err)
	}

	return nil
}

func (r restockRepository) DeleteRestock(ctx context.Context, restockID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM restock WHERE id = @id;
	`, pgx.NamedArgs{"id": restockID}); err != nil {
		return fmt.Errorf("delete restock: %w", err)
	}

	return nil
}

func (r restockRepository) ListAllRestocks(ctx context.Context) ([]model.RestockRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, supplier_name, product_id, quantity, notes, timestamp
		FROM restock
		ORDER BY timestamp DESC;
	`)
	if err != nil {
		return nil, fmt.Errorf("list all restocks: %w", err)
	}
	defer rows.Close()

	var restocks []model.RestockRecord
	for rows.Next() {
		var rec model.RestockRecord
		if err := rows.Scan(&rec.ID, &rec.SupplierName, &rec.ProductID, &rec.Quantity, &rec.Notes, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan restock: %w", err)
		}
		restocks = append(restocks, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restocks: %w", err)
	}

	return restocks, nil
}
