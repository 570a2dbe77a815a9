package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/AbhaySingh4321/shop-managerr/internal/cart"
	"github.com/AbhaySingh4321/shop-managerr/internal/http/apierr"
	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/model"
	"github.com/AbhaySingh4321/shop-managerr/internal/service"
	"github.com/AbhaySingh4321/shop-managerr/pkg/validator"
)

type saleHandler struct {
	ledger       *ledger.Ledger
	inventorySvc service.InventoryService
	validator    validator.Validator
}

func newSaleHandler(ldg *ledger.Ledger, inventorySvc service.InventoryService, v validator.Validator) *saleHandler {
	return &saleHandler{
		ledger:       ldg,
		inventorySvc: inventorySvc,
		validator:    v,
	}
}

type createSaleRequest struct {
	CustomerName string    `json:"customer_name" validate:"required"`
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
}

type cartLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type commitCartRequest struct {
	CustomerName string            `json:"customer_name" validate:"required"`
	Lines        []cartLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// commitCartResponse reports how far a cart commit got. A failed line leaves
// the already-applied records in place; nothing is rolled back.
type commitCartResponse struct {
	Applied    []model.SaleRecord    `json:"applied"`
	FailedLine *cart.Line            `json:"failed_line,omitempty"`
	Error      *apierr.ErrorResponse `json:"error,omitempty"`
}

func (h *saleHandler) list(w http.ResponseWriter, r *http.Request) error {
	filter, err := historyFilterFromQuery(r)
	if err != nil {
		return err
	}

	rows := filteredSales(h.ledger, filter)
	return respondJSON(w, http.StatusOK, rows)
}

func (h *saleHandler) create(w http.ResponseWriter, r *http.Request) error {
	var req createSaleRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		return err
	}

	rec, err := h.inventorySvc.RecordSale(r.Context(), req.CustomerName, req.ProductID, req.Quantity)
	if err != nil {
		return fmt.Errorf("inventory service record sale: %w", err)
	}

	return respondJSON(w, http.StatusCreated, rec)
}

func (h *saleHandler) commitCart(w http.ResponseWriter, r *http.Request) error {
	var req commitCartRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		return err
	}

	c := cart.New()
	for _, line := range req.Lines {
		if err := c.AddLine(h.ledger, line.ProductID, line.Quantity); err != nil {
			return fmt.Errorf("cart add line: %w", err)
		}
	}

	result := h.inventorySvc.CommitCart(r.Context(), c, req.CustomerName)
	if result.Completed() {
		return respondJSON(w, http.StatusCreated, commitCartResponse{Applied: result.Applied})
	}

	errRes := apierr.New(result.Err)
	return respondJSON(w, http.StatusMultiStatus, commitCartResponse{
		Applied:    result.Applied,
		FailedLine: result.FailedLine,
		Error:      &errRes,
	})
}

func (h *saleHandler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.inventorySvc.DeleteSale(r.Context(), id); err != nil {
		return fmt.Errorf("inventory service delete sale: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
