package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/resto-pos/api/internal/auth"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/enum"
	"github.com/resto-pos/api/internal/handler"
	"github.com/resto-pos/api/internal/middleware"
)

// --- Mock store ---

type mockDishStore struct {
	dishes map[uuid.UUID]database.Dish
}

func newMockDishStore() *mockDishStore {
	return &mockDishStore{dishes: make(map[uuid.UUID]database.Dish)}
}

func (m *mockDishStore) ListDishes(_ context.Context) ([]database.Dish, error) {
	var dishes []database.Dish
	for _, d := range m.dishes {
		dishes = append(dishes, d)
	}
	return dishes, nil
}

func (m *mockDishStore) GetDish(_ context.Context, id uuid.UUID) (database.Dish, error) {
	d, ok := m.dishes[id]
	if !ok {
		return database.Dish{}, pgx.ErrNoRows
	}
	return d, nil
}

func (m *mockDishStore) CreateDish(_ context.Context, arg database.CreateDishParams) (database.Dish, error) {
	d := database.Dish{
		ID:         uuid.New(),
		Name:       arg.Name,
		UnitPrice:  arg.UnitPrice,
		StockCount: arg.StockCount,
		Available:  arg.Available,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.dishes[d.ID] = d
	return d, nil
}

func (m *mockDishStore) UpdateDish(_ context.Context, arg database.UpdateDishParams) (database.Dish, error) {
	d, ok := m.dishes[arg.ID]
	if !ok {
		return database.Dish{}, pgx.ErrNoRows
	}
	d.Name = arg.Name
	d.UnitPrice = arg.UnitPrice
	d.StockCount = arg.StockCount
	d.Available = arg.Available
	d.UpdatedAt = time.Now()
	m.dishes[arg.ID] = d
	return d, nil
}

func (m *mockDishStore) SetDishStock(_ context.Context, arg database.SetDishStockParams) (database.Dish, error) {
	d, ok := m.dishes[arg.ID]
	if !ok {
		return database.Dish{}, pgx.ErrNoRows
	}
	d.StockCount = arg.StockCount
	d.Available = arg.Available
	d.UpdatedAt = time.Now()
	m.dishes[arg.ID] = d
	return d, nil
}

func (m *mockDishStore) DeleteDish(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := m.dishes[id]; !ok {
		return 0, nil
	}
	delete(m.dishes, id)
	return 1, nil
}

// --- Test helpers ---

func setupDishRouter(store *mockDishStore) *chi.Mux {
	h := handler.NewDishHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret, &mockSessions{}))
	r.Route("/dishes", func(r chi.Router) {
		h.RegisterReadRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.UserRoleKitchen, enum.UserRoleAdmin))
			h.RegisterWriteRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.UserRoleAdmin))
			h.RegisterAdminRoutes(r)
		})
	})
	return r
}

func kitchenClaims() auth.Claims {
	return auth.Claims{UserID: uuid.New(), Role: enum.UserRoleKitchen}
}

func seedDish(store *mockDishStore, name, price string, stock int32) database.Dish {
	d := database.Dish{
		ID:         uuid.New(),
		Name:       name,
		UnitPrice:  decimalToNumeric(decimal.RequireFromString(price)),
		StockCount: stock,
		Available:  stock > 0,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	store.dishes[d.ID] = d
	return d
}

// --- Tests ---

func TestListDishes(t *testing.T) {
	store := newMockDishStore()
	seedDish(store, "Burger", "8.50", 5)
	seedDish(store, "Fries", "3.00", 10)

	router := setupDishRouter(store)

	rr := doAuthRequest(t, router, "GET", "/dishes", nil, kitchenClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if got := len(decodeListResponse(t, rr)); got != 2 {
		t.Errorf("dish count: got %d, want 2", got)
	}
}

func TestCreateDish(t *testing.T) {
	store := newMockDishStore()
	router := setupDishRouter(store)

	rr := doAuthRequest(t, router, "POST", "/dishes", map[string]interface{}{
		"name":        "Burger",
		"unit_price":  "8.5",
		"stock_count": 5,
	}, kitchenClaims())
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["unit_price"] != "8.50" {
		t.Errorf("unit_price: got %v, want 8.50", resp["unit_price"])
	}
	if resp["available"] != true {
		t.Errorf("available: got %v, want true", resp["available"])
	}
}

func TestCreateDish_NegativePrice(t *testing.T) {
	router := setupDishRouter(newMockDishStore())

	rr := doAuthRequest(t, router, "POST", "/dishes", map[string]interface{}{
		"name":        "Burger",
		"unit_price":  "-1.00",
		"stock_count": 5,
	}, kitchenClaims())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateDish_ServerForbidden(t *testing.T) {
	router := setupDishRouter(newMockDishStore())

	rr := doAuthRequest(t, router, "POST", "/dishes", map[string]interface{}{
		"name":        "Burger",
		"unit_price":  "8.50",
		"stock_count": 5,
	}, serverClaims())
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestSetDishStock_ZeroFlipsAvailability(t *testing.T) {
	store := newMockDishStore()
	dish := seedDish(store, "Burger", "8.50", 5)

	router := setupDishRouter(store)

	rr := doAuthRequest(t, router, "PATCH", "/dishes/"+dish.ID.String()+"/stock",
		map[string]interface{}{"stock_count": 0}, kitchenClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["available"] != false {
		t.Errorf("available: got %v, want false at zero stock", resp["available"])
	}
}

func TestSetDishStock_RestockFlipsBack(t *testing.T) {
	store := newMockDishStore()
	dish := seedDish(store, "Burger", "8.50", 0)

	router := setupDishRouter(store)

	rr := doAuthRequest(t, router, "PATCH", "/dishes/"+dish.ID.String()+"/stock",
		map[string]interface{}{"stock_count": 7}, kitchenClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["available"] != true {
		t.Errorf("available: got %v, want true after restock", resp["available"])
	}
}

func TestDeleteDish_AdminOnly(t *testing.T) {
	store := newMockDishStore()
	dish := seedDish(store, "Burger", "8.50", 5)

	router := setupDishRouter(store)

	rr := doAuthRequest(t, router, "DELETE", "/dishes/"+dish.ID.String(), nil, kitchenClaims())
	if rr.Code != http.StatusForbidden {
		t.Fatalf("kitchen delete status: got %d, want %d", rr.Code, http.StatusForbidden)
	}

	rr = doAuthRequest(t, router, "DELETE", "/dishes/"+dish.ID.String(), nil, adminClaims())
	if rr.Code != http.StatusNoContent {
		t.Fatalf("admin delete status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}
}

func TestDeleteDish_NotFound(t *testing.T) {
	router := setupDishRouter(newMockDishStore())

	rr := doAuthRequest(t, router, "DELETE", "/dishes/"+uuid.NewString(), nil, adminClaims())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
