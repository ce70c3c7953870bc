package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto-pos/api/internal/accounting/handler"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/enum"
	"github.com/resto-pos/api/internal/middleware"
)

func setupExpenseRouter(backend *mockCashBackend) *chi.Mux {
	h := handler.NewExpenseHandler(newCashService(backend))
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret, &mockSessions{}))
	r.Route("/accounting/expenses", func(r chi.Router) {
		r.Use(middleware.RequireRole(enum.UserRoleAccountant, enum.UserRoleAdmin))
		h.RegisterRoutes(r)
	})
	return r
}

func TestCreateExpense(t *testing.T) {
	backend := newMockCashBackend()
	backend.balance = decToNum(decimal.RequireFromString("100.00"))
	router := setupExpenseRouter(backend)

	rr := doAuthRequest(t, router, "POST", "/accounting/expenses", map[string]string{
		"description": "vegetables",
		"amount":      "12.50",
		"category":    enum.ExpenseCategoryPurchase,
	}, accountantClaims())
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["description"] != "vegetables" || resp["amount"] != "12.50" {
		t.Errorf("unexpected response: %v", resp)
	}

	// Register debited.
	if got := numToDec(backend.balance); !got.Equal(decimal.RequireFromString("87.50")) {
		t.Errorf("balance: got %s, want 87.50", got)
	}
	if len(backend.expenses) != 1 {
		t.Errorf("expenses stored: got %d, want 1", len(backend.expenses))
	}
}

func TestCreateExpense_NegativeAmount(t *testing.T) {
	backend := newMockCashBackend()
	backend.balance = decToNum(decimal.RequireFromString("100.00"))
	router := setupExpenseRouter(backend)

	rr := doAuthRequest(t, router, "POST", "/accounting/expenses", map[string]string{
		"description": "refund",
		"amount":      "-5.00",
		"category":    enum.ExpenseCategoryOther,
	}, accountantClaims())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateExpense_UnknownCategory(t *testing.T) {
	backend := newMockCashBackend()
	backend.balance = decToNum(decimal.RequireFromString("100.00"))
	router := setupExpenseRouter(backend)

	rr := doAuthRequest(t, router, "POST", "/accounting/expenses", map[string]string{
		"description": "misc",
		"amount":      "5.00",
		"category":    "TRAVEL",
	}, accountantClaims())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateExpense_InsufficientFunds(t *testing.T) {
	backend := newMockCashBackend()
	backend.balance = decToNum(decimal.RequireFromString("10.00"))
	router := setupExpenseRouter(backend)

	rr := doAuthRequest(t, router, "POST", "/accounting/expenses", map[string]string{
		"description": "rent",
		"amount":      "500.00",
		"category":    enum.ExpenseCategoryBill,
	}, accountantClaims())
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}

	// Balance untouched on rejection.
	if got := numToDec(backend.balance); !got.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("balance: got %s, want 10.00", got)
	}
}

func TestDeleteExpense_CreditsBack(t *testing.T) {
	backend := newMockCashBackend()
	backend.balance = decToNum(decimal.RequireFromString("50.00"))
	expense := database.Expense{
		ID:       uuid.New(),
		Amount:   decToNum(decimal.RequireFromString("20.00")),
		Category: enum.ExpenseCategoryPurchase,
	}
	backend.expenses[expense.ID] = expense
	router := setupExpenseRouter(backend)

	rr := doAuthRequest(t, router, "DELETE", "/accounting/expenses/"+expense.ID.String(), nil, accountantClaims())
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}

	if got := numToDec(backend.balance); !got.Equal(decimal.RequireFromString("70.00")) {
		t.Errorf("balance: got %s, want 70.00", got)
	}
	if len(backend.expenses) != 0 {
		t.Error("expense not removed")
	}
}

func TestDeleteExpense_NotFound(t *testing.T) {
	router := setupExpenseRouter(newMockCashBackend())

	rr := doAuthRequest(t, router, "DELETE", "/accounting/expenses/"+uuid.NewString(), nil, adminClaims())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCreateExpense_ServerForbidden(t *testing.T) {
	router := setupExpenseRouter(newMockCashBackend())

	rr := doAuthRequest(t, router, "POST", "/accounting/expenses", map[string]string{
		"description": "misc",
		"amount":      "5.00",
		"category":    enum.ExpenseCategoryOther,
	}, serverOnlyClaims())
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}
