package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/AbhaySingh4321/shop-managerr/internal/model"
	"github.com/AbhaySingh4321/shop-managerr/internal/storage/db"
)

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	CreateProducts(ctx context.Context, products []model.Product) error
	UpdateStock(ctx context.Context, productID uuid.UUID, stock int) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	ListAllProducts(ctx context.Context) ([]model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, stock, unit, price, created_at, updated_at)
		VALUES (@id, @name, @stock, @unit, @price, @created_at, @updated_at);
	`, pgx.NamedArgs{
		"id":         product.ID,
		"name":       product.Name,
		"stock":      product.Stock,
		"unit":       product.Unit,
		"price":      product.Price.String(),
		"created_at": product.CreatedAt,
		"updated_at": product.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

// CreateProducts inserts a staged batch in one round trip.
func (r productRepository) CreateProducts(ctx context.Context, products []model.Product) error {
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{p.ID, p.Name, p.Stock, p.Unit, p.Price.String(), p.CreatedAt, p.UpdatedAt})
	}

	if _, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"products"},
		[]string{"id", "name", "stock", "unit", "price", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy products: %w", err)
	}

	return nil
}

// UpdateStock writes an absolute stock value computed by the caller from its
// mirror snapshot. This is last-writer-wins: two sessions racing on the same
// product can both read stale stock and both win. Known defect; the hardened
// variant would be a conditional decrement server-side.
func (r productRepository) UpdateStock(ctx context.Context, productID uuid.UUID, stock int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET stock = @stock, updated_at = NOW()
		WHERE id = @id;
	`, pgx.NamedArgs{
		"id":    productID,
		"stock": stock,
	})
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r productRepository) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM products WHERE id = @id;
	`, pgx.NamedArgs{"id": productID}); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	return nil
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, stock, unit, price::text, created_at, updated_at
		FROM products
		ORDER BY name;
	`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var (
			p     model.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Stock, &p.Unit, &price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		p.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}
