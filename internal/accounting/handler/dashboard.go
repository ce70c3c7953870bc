// Package handler exposes the accountant-facing HTTP endpoints: the cash
// dashboard, expense entry, and register maintenance actions.
package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/service"
)

// --- Store interface ---

// DashboardStore defines the database reads behind the dashboard view.
type DashboardStore interface {
	ListPayableOrders(ctx context.Context) ([]database.ListOrdersRow, error)
	ListPayments(ctx context.Context) ([]database.ListPaymentsRow, error)
	ListExpenses(ctx context.Context) ([]database.Expense, error)
}

// --- DashboardHandler ---

type DashboardHandler struct {
	store DashboardStore
	cash  *service.CashService
}

func NewDashboardHandler(store DashboardStore, cash *service.CashService) *DashboardHandler {
	return &DashboardHandler{store: store, cash: cash}
}

// RegisterRoutes registers dashboard endpoints.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.GetDashboard)
}

// --- Response types ---

type dashboardResponse struct {
	Balance       string                 `json:"balance"`
	PayableOrders []payableOrderResponse `json:"payable_orders"`
	Payments      []paymentResponse      `json:"payments"`
	Expenses      []expenseResponse      `json:"expenses"`
}

type payableOrderResponse struct {
	ID          uuid.UUID `json:"id"`
	TableNumber int32     `json:"table_number"`
	Total       string    `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

type paymentResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	TableNumber int32     `json:"table_number"`
	Amount      string    `json:"amount"`
	Method      string    `json:"method"`
	CreatedAt   time.Time `json:"created_at"`
}

type expenseResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

func toExpenseResponse(e database.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      formatMoney(e.Amount),
		Category:    e.Category,
		CreatedAt:   e.CreatedAt,
	}
}

// --- Handler ---

// GetDashboard returns the register balance, orders awaiting payment, and the
// full payment and expense histories in one response.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	balance, err := h.cash.Balance(ctx)
	if err != nil {
		log.Printf("ERROR: get register balance: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	payable, err := h.store.ListPayableOrders(ctx)
	if err != nil {
		log.Printf("ERROR: list payable orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	payments, err := h.store.ListPayments(ctx)
	if err != nil {
		log.Printf("ERROR: list payments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	expenses, err := h.store.ListExpenses(ctx)
	if err != nil {
		log.Printf("ERROR: list expenses: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dashboardResponse{
		Balance:       balance.StringFixed(2),
		PayableOrders: make([]payableOrderResponse, 0, len(payable)),
		Payments:      make([]paymentResponse, 0, len(payments)),
		Expenses:      make([]expenseResponse, 0, len(expenses)),
	}
	for _, o := range payable {
		resp.PayableOrders = append(resp.PayableOrders, payableOrderResponse{
			ID:          o.ID,
			TableNumber: o.TableNumber,
			Total:       formatMoney(o.Total),
			CreatedAt:   o.CreatedAt,
		})
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, paymentResponse{
			ID:          p.ID,
			OrderID:     p.OrderID,
			TableNumber: p.TableNumber,
			Amount:      formatMoney(p.Amount),
			Method:      p.Method,
			CreatedAt:   p.CreatedAt,
		})
	}
	for _, e := range expenses {
		resp.Expenses = append(resp.Expenses, toExpenseResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Shared helpers ---

func formatMoney(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
