package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhaySingh4321/shop-managerr/internal/apperr"
	"github.com/AbhaySingh4321/shop-managerr/internal/cart"
	"github.com/AbhaySingh4321/shop-managerr/internal/config"
	internalhttp "github.com/AbhaySingh4321/shop-managerr/internal/http"
	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/model"
	"github.com/AbhaySingh4321/shop-managerr/internal/service"
)

// fakeInventoryService applies mutations straight to the ledger mirror, standing
// in for the store-backed service.
type fakeInventoryService struct {
	ledger *ledger.Ledger
}

var _ service.InventoryService = (*fakeInventoryService)(nil)

func (f *fakeInventoryService) CreateProduct(_ context.Context, entry service.PendingProductEntry) (model.Product, error) {
	return f.ledger.CreateProduct(entry.Name, entry.Stock, entry.Unit, entry.Price)
}

func (f *fakeInventoryService) CreateProducts(_ context.Context, entries []service.PendingProductEntry) ([]model.Product, error) {
	out := make([]model.Product, 0, len(entries))
	for _, entry := range entries {
		p, err := f.ledger.CreateProduct(entry.Name, entry.Stock, entry.Unit, entry.Price)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeInventoryService) DeleteProduct(_ context.Context, productID uuid.UUID) error {
	return f.ledger.RemoveProduct(productID)
}

func (f *fakeInventoryService) RecordSale(_ context.Context, customerName string, productID uuid.UUID, quantity int) (model.SaleRecord, error) {
	rec, err := f.ledger.ApplySale(productID, quantity)
	if err != nil {
		return model.SaleRecord{}, err
	}
	rec.CustomerName = customerName
	return rec, nil
}

func (f *fakeInventoryService) DeleteSale(_ context.Context, saleID uuid.UUID) error {
	rec, ok := f.ledger.Sale(saleID)
	if !ok {
		return apperr.SaleNotFoundErr
	}
	f.ledger.ReverseSale(rec)
	return nil
}

func (f *fakeInventoryService) CommitCart(ctx context.Context, c *cart.Cart, customerName string) cart.CommitResult {
	result := cart.CommitResult{}
	if err := c.ValidateCommit(customerName); err != nil {
		result.Err = err
		return result
	}
	for _, line := range c.Lines() {
		rec, err := f.RecordSale(ctx, customerName, line.ProductID, line.Quantity)
		if err != nil {
			failed := line
			result.FailedLine = &failed
			result.Err = err
			return result
		}
		result.Applied = append(result.Applied, rec)
	}
	c.Reset()
	return result
}

func (f *fakeInventoryService) RecordRestock(_ context.Context, supplierName string, productID uuid.UUID, quantity int, notes string) (model.RestockRecord, error) {
	return f.ledger.ApplyRestock(productID, quantity, supplierName, notes)
}

func (f *fakeInventoryService) DeleteRestock(_ context.Context, restockID uuid.UUID) error {
	rec, ok := f.ledger.Restock(restockID)
	if !ok {
		return apperr.RestockNotFoundErr
	}
	f.ledger.ReverseRestock(rec)
	return nil
}

func newTestRouter(t *testing.T, ldg *ledger.Ledger, svc service.InventoryService) chi.Router {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpSvc, err := internalhttp.New(config.HTTP{Port: 0}, logger, ldg, svc)
	require.NoError(t, err)

	r := chi.NewRouter()
	httpSvc.RegisterHandlers(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHTTPHandlers(t *testing.T) {
	ldg := ledger.New()
	svc := &fakeInventoryService{ledger: ldg}
	router := newTestRouter(t, ldg, svc)

	rice, err := ldg.CreateProduct("Rice", 100, "kg", decimal.NewFromInt(2))
	require.NoError(t, err)
	beans, err := ldg.CreateProduct("Beans", 10, "kg", decimal.NewFromInt(3))
	require.NoError(t, err)

	t.Run("Should list products sorted by name", func(t *testing.T) {
		resp := doJSON(t, router, nethttp.MethodGet, "/products", nil)
		require.Equal(t, nethttp.StatusOK, resp.Code)

		var products []model.Product
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &products))
		require.Len(t, products, 2)
		assert.Equal(t, "Beans", products[0].Name)
		assert.Equal(t, "Rice", products[1].Name)
	})

	t.Run("Should create product and reject duplicate name", func(t *testing.T) {
		resp := doJSON(t, router, nethttp.MethodPost, "/products", map[string]any{
			"name": "Sugar", "stock": 30, "unit": "kg", "price": "1.50",
		})
		require.Equal(t, nethttp.StatusCreated, resp.Code)

		resp = doJSON(t, router, nethttp.MethodPost, "/products", map[string]any{
			"name": "  sugar ", "stock": 5, "unit": "kg", "price": "2",
		})
		assert.Equal(t, nethttp.StatusConflict, resp.Code)
		assert.Contains(t, resp.Body.String(), apperr.DuplicateNameCode)
	})

	t.Run("Should reject create with missing fields", func(t *testing.T) {
		resp := doJSON(t, router, nethttp.MethodPost, "/products", map[string]any{
			"stock": 5,
		})
		assert.Equal(t, nethttp.StatusBadRequest, resp.Code)
	})

	t.Run("Should record sale and surface insufficient stock", func(t *testing.T) {
		resp := doJSON(t, router, nethttp.MethodPost, "/sales", map[string]any{
			"customer_name": "Ana", "product_id": rice.ID, "quantity": 30,
		})
		require.Equal(t, nethttp.StatusCreated, resp.Code)

		var rec model.SaleRecord
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rec))
		assert.Equal(t, 30, rec.Quantity)

		resp = doJSON(t, router, nethttp.MethodPost, "/sales", map[string]any{
			"customer_name": "Ana", "product_id": beans.ID, "quantity": 999,
		})
		assert.Equal(t, nethttp.StatusUnprocessableEntity, resp.Code)
		assert.Contains(t, resp.Body.String(), apperr.InsufficientStockCode)
	})

	t.Run("Should report partial cart commit with 207", func(t *testing.T) {
		resp := doJSON(t, router, nethttp.MethodPost, "/sales/cart", map[string]any{
			"customer_name": "Ben",
			"lines": []map[string]any{
				{"product_id": rice.ID, "quantity": 10},
				{"product_id": beans.ID, "quantity": 999},
			},
		})
		require.Equal(t, nethttp.StatusMultiStatus, resp.Code)

		var body struct {
			Applied    []model.SaleRecord `json:"applied"`
			FailedLine *cart.Line         `json:"failed_line"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		require.Len(t, body.Applied, 1)
		require.NotNil(t, body.FailedLine)
		assert.Equal(t, beans.ID, body.FailedLine.ProductID)
	})

	t.Run("Should filter sale history by day and query", func(t *testing.T) {
		day := time.Now().Format("2006-01-02")
		resp := doJSON(t, router, nethttp.MethodGet, fmt.Sprintf("/sales?q=ana&from=%s&to=%s", day, day), nil)
		require.Equal(t, nethttp.StatusOK, resp.Code)

		var rows []map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rows))
		assert.NotEmpty(t, rows)
	})

	t.Run("Should reject malformed history date", func(t *testing.T) {
		resp := doJSON(t, router, nethttp.MethodGet, "/sales?from=yesterday", nil)
		assert.Equal(t, nethttp.StatusBadRequest, resp.Code)
	})

	t.Run("Should record restock and show dashboard counts", func(t *testing.T) {
		resp := doJSON(t, router, nethttp.MethodPost, "/restock", map[string]any{
			"supplier_name": "AgroSupply", "product_id": beans.ID, "quantity": 25, "notes": "weekly",
		})
		require.Equal(t, nethttp.StatusCreated, resp.Code)

		resp = doJSON(t, router, nethttp.MethodGet, "/dashboard", nil)
		require.Equal(t, nethttp.StatusOK, resp.Code)

		var dash struct {
			Summary  ledger.Summary  `json:"summary"`
			LowStock []model.Product `json:"low_stock"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &dash))
		assert.Equal(t, 3, dash.Summary.TotalProducts)
		assert.NotZero(t, dash.Summary.TotalSales)
		assert.NotEmpty(t, dash.LowStock)
	})

	t.Run("Should delete product and return 404 for unknown id", func(t *testing.T) {
		resp := doJSON(t, router, nethttp.MethodDelete, "/products/"+beans.ID.String(), nil)
		assert.Equal(t, nethttp.StatusNoContent, resp.Code)

		resp = doJSON(t, router, nethttp.MethodDelete, "/products/"+uuid.NewString(), nil)
		assert.Equal(t, nethttp.StatusNotFound, resp.Code)
	})
}
