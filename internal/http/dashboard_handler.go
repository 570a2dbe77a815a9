package http

import (
	"net/http"

	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
	"github.com/AbhaySingh4321/shop-managerr/internal/model"
)

type dashboardHandler struct {
	ledger *ledger.Ledger
}

func newDashboardHandler(ldg *ledger.Ledger) *dashboardHandler {
	return &dashboardHandler{ledger: ldg}
}

type dashboardResponse struct {
	Summary  ledger.Summary  `json:"summary"`
	LowStock []model.Product `json:"low_stock"`
}

func (h *dashboardHandler) summary(w http.ResponseWriter, _ *http.Request) error {
	return respondJSON(w, http.StatusOK, dashboardResponse{
		Summary:  h.ledger.Summarize(),
		LowStock: h.ledger.LowStock(),
	})
}
