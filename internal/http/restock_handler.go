package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/service"
	"github.com/AbhaySingh4321/shop-managerr/pkg/validator"
)

type restockHandler struct {
	ledger       *ledger.Ledger
	inventorySvc service.InventoryService
	validator    validator.Validator
}

func newRestockHandler(ldg *ledger.Ledger, inventorySvc service.InventoryService, v validator.Validator) *restockHandler {
	return &restockHandler{
		ledger:       ldg,
		inventorySvc: inventorySvc,
		validator:    v,
	}
}

type createRestockRequest struct {
	SupplierName string    `json:"supplier_name" validate:"required"`
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	Notes        string    `json:"notes"`
}

func (h *restockHandler) list(w http.ResponseWriter, r *http.Request) error {
	filter, err := historyFilterFromQuery(r)
	if err != nil {
		return err
	}

	rows := filteredRestocks(h.ledger, filter)
	return respondJSON(w, http.StatusOK, rows)
}

func (h *restockHandler) create(w http.ResponseWriter, r *http.Request) error {
	var req createRestockRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		return err
	}

	rec, err := h.inventorySvc.RecordRestock(r.Context(), req.SupplierName, req.ProductID, req.Quantity, req.Notes)
	if err != nil {
		return fmt.Errorf("inventory service record restock: %w", err)
	}

	return respondJSON(w, http.StatusCreated, rec)
}

func (h *restockHandler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		return err
	}

	if err := h.inventorySvc.DeleteRestock(r.Context(), id); err != nil {
		return fmt.Errorf("inventory service delete restock: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
