package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/resto-pos/api/internal/auth"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/enum"
	"github.com/resto-pos/api/internal/handler"
	"github.com/resto-pos/api/internal/middleware"
	"github.com/resto-pos/api/internal/service"
)

// --- Mock cart store ---

// mockCartBackend is a map-backed store for the cart service, reusing the
// order backend for the validate path.
type mockCartBackend struct {
	*mockOrderBackend
	lines map[uuid.UUID]database.CartItem // keyed by cart line ID
}

func newMockCartBackend() *mockCartBackend {
	return &mockCartBackend{
		mockOrderBackend: newMockOrderBackend(),
		lines:            make(map[uuid.UUID]database.CartItem),
	}
}

func (m *mockCartBackend) GetDish(_ context.Context, id uuid.UUID) (database.Dish, error) {
	d, ok := m.dishes[id]
	if !ok {
		return database.Dish{}, pgx.ErrNoRows
	}
	return d, nil
}

func (m *mockCartBackend) GetCartItemByDish(_ context.Context, arg database.GetCartItemByDishParams) (database.CartItem, error) {
	for _, line := range m.lines {
		if line.TabletID == arg.TabletID && line.DishID == arg.DishID {
			return line, nil
		}
	}
	return database.CartItem{}, pgx.ErrNoRows
}

func (m *mockCartBackend) CreateCartItem(_ context.Context, arg database.CreateCartItemParams) (database.CartItem, error) {
	line := database.CartItem{
		ID:       uuid.New(),
		TabletID: arg.TabletID,
		DishID:   arg.DishID,
		Quantity: arg.Quantity,
	}
	m.lines[line.ID] = line
	m.syncCartRows()
	return line, nil
}

func (m *mockCartBackend) UpdateCartItemQuantity(_ context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error) {
	line, ok := m.lines[arg.ID]
	if !ok {
		return database.CartItem{}, pgx.ErrNoRows
	}
	line.Quantity = arg.Quantity
	m.lines[arg.ID] = line
	m.syncCartRows()
	return line, nil
}

func (m *mockCartBackend) GetCartItem(_ context.Context, arg database.GetCartItemParams) (database.CartItem, error) {
	line, ok := m.lines[arg.ID]
	if !ok || line.TabletID != arg.TabletID {
		return database.CartItem{}, pgx.ErrNoRows
	}
	return line, nil
}

func (m *mockCartBackend) DeleteCartItem(_ context.Context, arg database.DeleteCartItemParams) (int64, error) {
	line, ok := m.lines[arg.ID]
	if !ok || line.TabletID != arg.TabletID {
		return 0, nil
	}
	delete(m.lines, arg.ID)
	m.syncCartRows()
	return 1, nil
}

func (m *mockCartBackend) DeleteCartItemsByTablet(_ context.Context, tabletID uuid.UUID) error {
	for id, line := range m.lines {
		if line.TabletID == tabletID {
			delete(m.lines, id)
		}
	}
	m.syncCartRows()
	return nil
}

// syncCartRows rebuilds the joined cart rows consumed by Contents and the
// order validation path.
func (m *mockCartBackend) syncCartRows() {
	rows := make(map[uuid.UUID][]database.ListCartItemsByTabletRow)
	for _, line := range m.lines {
		dish := m.dishes[line.DishID]
		rows[line.TabletID] = append(rows[line.TabletID], database.ListCartItemsByTabletRow{
			ID:         line.ID,
			DishID:     line.DishID,
			Name:       dish.Name,
			UnitPrice:  dish.UnitPrice,
			StockCount: dish.StockCount,
			Quantity:   line.Quantity,
		})
	}
	m.cart = rows
}

// --- Test helpers ---

func setupCartRouter(backend *mockCartBackend, sessions *mockSessions) *chi.Mux {
	cartService := service.NewCartService(backend)
	orderService := service.NewOrderService(backend, &mockPool{}, func(db database.DBTX) service.OrderStore {
		return backend
	})
	h := handler.NewCartHandler(cartService, orderService, testHub())

	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret, sessions))
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(enum.UserRoleTablet))
		r.Route("/cart", h.RegisterRoutes)
	})
	return r
}

// seedTabletWithDish registers an active tablet on a table plus one dish, and
// returns tablet claims for requests.
func seedTabletWithDish(backend *mockCartBackend, sessions *mockSessions, stock int32, price string) (auth.Claims, uuid.UUID) {
	tableID := uuid.New()
	tabletID := uuid.New()
	userID := uuid.New()

	backend.tables[tableID] = database.RestaurantTable{ID: tableID, TableNumber: 2}
	backend.tablets[tabletID] = database.Tablet{ID: tabletID, UserID: userID, TableID: tableID, Active: true}
	sessions.sessions = map[uuid.UUID]database.GetTabletSessionRow{
		tabletID: {SessionVersion: 1, Active: true},
	}

	dishID := uuid.New()
	backend.dishes[dishID] = database.Dish{
		ID:         dishID,
		Name:       "Burger",
		UnitPrice:  decimalToNumeric(decimal.RequireFromString(price)),
		StockCount: stock,
		Available:  stock > 0,
	}

	claims := auth.Claims{
		UserID:         userID,
		Role:           enum.UserRoleTablet,
		TabletID:       &tabletID,
		SessionVersion: 1,
	}
	return claims, dishID
}

// --- Tests ---

func TestAddCartItem(t *testing.T) {
	backend := newMockCartBackend()
	sessions := &mockSessions{}
	claims, dishID := seedTabletWithDish(backend, sessions, 5, "8.50")

	router := setupCartRouter(backend, sessions)

	rr := doAuthRequest(t, router, "POST", "/cart/items",
		map[string]interface{}{"dish_id": dishID, "quantity": 3}, claims)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["quantity"] != float64(3) {
		t.Errorf("quantity: got %v, want 3", resp["quantity"])
	}
}

func TestAddCartItem_ClampedToStock(t *testing.T) {
	backend := newMockCartBackend()
	sessions := &mockSessions{}
	claims, dishID := seedTabletWithDish(backend, sessions, 2, "8.50")

	router := setupCartRouter(backend, sessions)

	rr := doAuthRequest(t, router, "POST", "/cart/items",
		map[string]interface{}{"dish_id": dishID, "quantity": 9}, claims)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["quantity"] != float64(2) {
		t.Errorf("quantity: got %v, want 2 (clamped to stock)", resp["quantity"])
	}
}

func TestAddCartItem_OutOfStock(t *testing.T) {
	backend := newMockCartBackend()
	sessions := &mockSessions{}
	claims, dishID := seedTabletWithDish(backend, sessions, 0, "8.50")

	router := setupCartRouter(backend, sessions)

	rr := doAuthRequest(t, router, "POST", "/cart/items",
		map[string]interface{}{"dish_id": dishID, "quantity": 1}, claims)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestAddCartItem_StaffForbidden(t *testing.T) {
	backend := newMockCartBackend()
	sessions := &mockSessions{}
	_, dishID := seedTabletWithDish(backend, sessions, 5, "8.50")

	router := setupCartRouter(backend, sessions)

	rr := doAuthRequest(t, router, "POST", "/cart/items",
		map[string]interface{}{"dish_id": dishID, "quantity": 1}, serverClaims())
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestCartContents(t *testing.T) {
	backend := newMockCartBackend()
	sessions := &mockSessions{}
	claims, dishID := seedTabletWithDish(backend, sessions, 5, "8.50")

	router := setupCartRouter(backend, sessions)

	rr := doAuthRequest(t, router, "POST", "/cart/items",
		map[string]interface{}{"dish_id": dishID, "quantity": 2}, claims)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	rr = doAuthRequest(t, router, "GET", "/cart", nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["total"] != "17.00" {
		t.Errorf("total: got %v, want 17.00", resp["total"])
	}
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items: got %d, want 1", len(items))
	}
	line := items[0].(map[string]interface{})
	if line["line_total"] != "17.00" {
		t.Errorf("line_total: got %v, want 17.00", line["line_total"])
	}
}

func TestSetCartQuantity_ZeroRemoves(t *testing.T) {
	backend := newMockCartBackend()
	sessions := &mockSessions{}
	claims, dishID := seedTabletWithDish(backend, sessions, 5, "8.50")

	router := setupCartRouter(backend, sessions)

	rr := doAuthRequest(t, router, "POST", "/cart/items",
		map[string]interface{}{"dish_id": dishID, "quantity": 2}, claims)
	lineID := decodeResponse(t, rr)["id"].(string)

	rr = doAuthRequest(t, router, "PATCH", "/cart/items/"+lineID,
		map[string]interface{}{"quantity": 0}, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := decodeResponse(t, rr); resp["removed"] != true {
		t.Errorf("expected removed flag, got %v", resp)
	}
	if len(backend.lines) != 0 {
		t.Error("line should be deleted")
	}
}

func TestRemoveCartItem_NotFound(t *testing.T) {
	backend := newMockCartBackend()
	sessions := &mockSessions{}
	claims, _ := seedTabletWithDish(backend, sessions, 5, "8.50")

	router := setupCartRouter(backend, sessions)

	rr := doAuthRequest(t, router, "DELETE", "/cart/items/"+uuid.NewString(), nil, claims)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestValidateCart(t *testing.T) {
	backend := newMockCartBackend()
	sessions := &mockSessions{}
	claims, dishID := seedTabletWithDish(backend, sessions, 5, "8.50")

	router := setupCartRouter(backend, sessions)

	rr := doAuthRequest(t, router, "POST", "/cart/items",
		map[string]interface{}{"dish_id": dishID, "quantity": 2}, claims)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	rr = doAuthRequest(t, router, "POST", "/cart/validate", nil, claims)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["status"] != "PENDING" {
		t.Errorf("status: got %v, want PENDING", resp["status"])
	}
	if resp["total"] != "17.00" {
		t.Errorf("total: got %v, want 17.00", resp["total"])
	}

	// Cart cleared, stock decremented, table occupied.
	if len(backend.lines) != 0 {
		t.Error("cart should be cleared")
	}
	if got := backend.dishes[dishID].StockCount; got != 3 {
		t.Errorf("stock: got %d, want 3", got)
	}
	tabletID := *claims.TabletID
	tablet := backend.tablets[tabletID]
	if !backend.tables[tablet.TableID].Occupied {
		t.Error("table should be occupied after validation")
	}
}

func TestValidateCart_Empty(t *testing.T) {
	backend := newMockCartBackend()
	sessions := &mockSessions{}
	claims, _ := seedTabletWithDish(backend, sessions, 5, "8.50")

	router := setupCartRouter(backend, sessions)

	rr := doAuthRequest(t, router, "POST", "/cart/validate", nil, claims)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}
