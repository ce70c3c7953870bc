package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto-pos/api/internal/middleware"
	"github.com/resto-pos/api/internal/service"
)

// ExpenseHandler handles expense entry and reversal.
type ExpenseHandler struct {
	cash *service.CashService
}

func NewExpenseHandler(cash *service.CashService) *ExpenseHandler {
	return &ExpenseHandler{cash: cash}
}

// RegisterRoutes registers expense endpoints.
func (h *ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

type createExpenseRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Description == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description is required"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	expense, err := h.cash.AddExpense(r.Context(), req.Description, amount, req.Category, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
		case errors.Is(err, service.ErrInvalidCategory):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		case errors.Is(err, service.ErrInsufficientFunds):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "insufficient funds"})
		default:
			log.Printf("ERROR: failed to create expense: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expense ID"})
		return
	}

	if err := h.cash.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrExpenseNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "expense not found"})
			return
		}
		log.Printf("ERROR: failed to delete expense: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
