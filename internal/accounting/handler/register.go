package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/export"
	"github.com/resto-pos/api/internal/service"
)

// ExportStore defines the database reads behind the CSV export.
type ExportStore interface {
	ListOrdersForExport(ctx context.Context) ([]database.ListOrdersForExportRow, error)
	ListAllOrderItems(ctx context.Context) ([]database.OrderItem, error)
}

// RegisterHandler handles the admin register maintenance actions: balance
// reset, bulk purge, payment reversal, and the global order export.
type RegisterHandler struct {
	cash  *service.CashService
	store ExportStore
}

func NewRegisterHandler(cash *service.CashService, store ExportStore) *RegisterHandler {
	return &RegisterHandler{cash: cash, store: store}
}

// RegisterRoutes registers register maintenance endpoints.
func (h *RegisterHandler) RegisterRoutes(r chi.Router) {
	r.Post("/reset", h.Reset)
	r.Post("/purge", h.Purge)
}

// RegisterPaymentRoutes registers the payment reversal endpoint.
func (h *RegisterHandler) RegisterPaymentRoutes(r chi.Router) {
	r.Delete("/{id}", h.DeletePayment)
}

func (h *RegisterHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.cash.ResetBalance(r.Context()); err != nil {
		log.Printf("ERROR: failed to reset register: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"balance": "0.00"})
}

type purgeRequest struct {
	Kind string `json:"kind"`
}

func (h *RegisterHandler) Purge(w http.ResponseWriter, r *http.Request) {
	var req purgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	deleted, err := h.cash.Purge(r.Context(), req.Kind)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPurgeKind) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid purge kind"})
			return
		}
		log.Printf("ERROR: failed to purge %s: %v", req.Kind, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"kind": req.Kind, "deleted": deleted})
}

func (h *RegisterHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment ID"})
		return
	}

	if err := h.cash.DeletePayment(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "payment not found"})
			return
		}
		log.Printf("ERROR: failed to delete payment: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportOrdersCSV streams every order as CSV with its dish list.
func (h *RegisterHandler) ExportOrdersCSV(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrdersForExport(r.Context())
	if err != nil {
		log.Printf("ERROR: failed to list orders for export: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListAllOrderItems(r.Context())
	if err != nil {
		log.Printf("ERROR: failed to list order items for export: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := export.OrdersCSV(w, orders, items); err != nil {
		log.Printf("ERROR: failed to write orders CSV: %v", err)
	}
}
