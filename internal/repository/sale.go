package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AbhaySingh4321/shop-managerr/internal/model"
	"github.com/AbhaySingh4321/shop-managerr/internal/storage/db"
)

type SaleRepository interface {
	WithDB(db db.DB) SaleRepository
	CreateSale(ctx context.Context, sale model.SaleRecord) error
	DeleteSale(ctx context.Context, saleID uuid.UUID) error
	ListAllSales(ctx context.Context) ([]model.SaleRecord, error)
}

type saleRepository struct {
	db db.DB
}

func NewSaleRepository(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) WithDB(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) CreateSale(ctx context.Context, sale model.SaleRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sales (id, customer_name, product_id, quantity, timestamp)
		VALUES (@id, @customer_name, @product_id, @quantity, @timestamp);
	`, pgx.NamedArgs{
		"id":            sale.ID,
		"customer_name": sale.CustomerName,
		"product_id":    sale.ProductID,
		"quantity":      sale.Quantity,
		"timestamp":     sale.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}

	return nil
}

func (r saleRepository) DeleteSale(ctx context.Context, saleID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM sales WHERE id = @id;
	`, pgx.NamedArgs{"id": saleID}); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}

	return nil
}

func (r saleRepository) ListAllSales(ctx context.Context) ([]model.SaleRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, customer_name, product_id, quantity, timestamp
		FROM sales
		ORDER BY timestamp DESC;
	`)
	if err != nil {
		return nil, fmt.Errorf("list all sales: %w", err)
	}
	defer rows.Close()

	var sales []model.SaleRecord
	for rows.Next() {
		var rec model.SaleRecord
		if err := rows.Scan(&rec.ID, &rec.CustomerName, &rec.ProductID, &rec.Quantity, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	return sales, nil
}
