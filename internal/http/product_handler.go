package http

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/service"
	"github.com/AbhaySingh4321/shop-managerr/pkg/validator"
)

type productHandler struct {
	ledger       *ledger.Ledger
	inventorySvc service.InventoryService
	validator    validator.Validator
}

func newProductHandler(ldg *ledger.Ledger, inventorySvc service.InventoryService, v validator.Validator) *productHandler {
	return &productHandler{
		ledger:       ldg,
		inventorySvc: inventorySvc,
		validator:    v,
	}
}

type createProductRequest struct {
	Name  string          `json:"name" validate:"required"`
	Stock int             `json:"stock" validate:"min=0"`
	Unit  string          `json:"unit" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

type createProductBatchRequest struct {
	Entries []createProductRequest `json:"entries" validate:"required,min=1,dive"`
}

func (h *productHandler) list(w http.ResponseWriter, _ *http.Request) error {
	return respondJSON(w, http.StatusOK, h.ledger.Products())
}

func (h *productHandler) listSellable(w http.ResponseWriter, _ *http.Request) error {
	return respondJSON(w, http.StatusOK, h.ledger.SellableProducts())
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) error {
	var req createProductRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		return err
	}

	product, err := h.inventorySvc.CreateProduct(r.Context(), service.PendingProductEntry{
		Name:  req.Name,
		Stock: req.Stock,
		Unit:  req.Unit,
		Price: req.Price,
	})
	if err != nil {
		return fmt.Errorf("inventory service create product: %w", err)
	}

	return respondJSON(w, http.StatusCreated, product)
}

func (h *productHandler) createBatch(w http.ResponseWriter, r *http.Request) error {
	var req createProductBatchRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		return err
	}

	entries := make([]service.PendingProductEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, service.PendingProductEntry{
			Name:  e.Name,
			Stock: e.Stock,
			Unit:  e.Unit,
			Price: e.Price,
		})
	}

	products, err := h.inventorySvc.CreateProducts(r.Context(), entries)
	if err != nil {
		return fmt.Errorf("inventory service create products: %w", err)
	}

	return respondJSON(w, http.StatusCreated, products)
}

func (h *productHandler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.inventorySvc.DeleteProduct(r.Context(), id); err != nil {
		return fmt.Errorf("inventory service delete product: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
