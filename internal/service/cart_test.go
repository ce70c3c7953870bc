package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resto-pos/api/internal/database"
)

// mockCartStore implements CartStore with configurable behavior.
type mockCartStore struct {
	getTabletFn              func(ctx context.Context, id uuid.UUID) (database.Tablet, error)
	getDishFn                func(ctx context.Context, id uuid.UUID) (database.Dish, error)
	setDishStockFn           func(ctx context.Context, arg database.SetDishStockParams) (database.Dish, error)
	getCartItemByDishFn      func(ctx context.Context, arg database.GetCartItemByDishParams) (database.CartItem, error)
	createCartItemFn         func(ctx context.Context, arg database.CreateCartItemParams) (database.CartItem, error)
	updateCartItemQuantityFn func(ctx context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error)
	getCartItemFn            func(ctx context.Context, arg database.GetCartItemParams) (database.CartItem, error)
	deleteCartItemFn         func(ctx context.Context, arg database.DeleteCartItemParams) (int64, error)
	listCartItemsByTabletFn  func(ctx context.Context, tabletID uuid.UUID) ([]database.ListCartItemsByTabletRow, error)
}

func (m *mockCartStore) GetTablet(ctx context.Context, id uuid.UUID) (database.Tablet, error) {
	return m.getTabletFn(ctx, id)
}
func (m *mockCartStore) GetDish(ctx context.Context, id uuid.UUID) (database.Dish, error) {
	return m.getDishFn(ctx, id)
}
func (m *mockCartStore) SetDishStock(ctx context.Context, arg database.SetDishStockParams) (database.Dish, error) {
	return m.setDishStockFn(ctx, arg)
}
func (m *mockCartStore) GetCartItemByDish(ctx context.Context, arg database.GetCartItemByDishParams) (database.CartItem, error) {
	return m.getCartItemByDishFn(ctx, arg)
}
func (m *mockCartStore) CreateCartItem(ctx context.Context, arg database.CreateCartItemParams) (database.CartItem, error) {
	return m.createCartItemFn(ctx, arg)
}
func (m *mockCartStore) UpdateCartItemQuantity(ctx context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error) {
	return m.updateCartItemQuantityFn(ctx, arg)
}
func (m *mockCartStore) GetCartItem(ctx context.Context, arg database.GetCartItemParams) (database.CartItem, error) {
	return m.getCartItemFn(ctx, arg)
}
func (m *mockCartStore) DeleteCartItem(ctx context.Context, arg database.DeleteCartItemParams) (int64, error) {
	return m.deleteCartItemFn(ctx, arg)
}
func (m *mockCartStore) ListCartItemsByTablet(ctx context.Context, tabletID uuid.UUID) ([]database.ListCartItemsByTabletRow, error) {
	return m.listCartItemsByTabletFn(ctx, tabletID)
}

// defaultCartStore knows one tablet and one dish with the given stock;
// the cart starts empty.
func defaultCartStore(tabletID, dishID uuid.UUID, stock int32) *mockCartStore {
	return &mockCartStore{
		getTabletFn: func(ctx context.Context, id uuid.UUID) (database.Tablet, error) {
			if id == tabletID {
				return database.Tablet{ID: tabletID, Active: true}, nil
			}
			return database.Tablet{}, pgx.ErrNoRows
		},
		getDishFn: func(ctx context.Context, id uuid.UUID) (database.Dish, error) {
			if id == dishID {
				return database.Dish{ID: dishID, Name: "Couscous", UnitPrice: makeNumeric("12.50"), StockCount: stock, Available: stock > 0}, nil
			}
			return database.Dish{}, pgx.ErrNoRows
		},
		setDishStockFn: func(ctx context.Context, arg database.SetDishStockParams) (database.Dish, error) {
			return database.Dish{ID: arg.ID, StockCount: arg.StockCount, Available: arg.Available}, nil
		},
		getCartItemByDishFn: func(ctx context.Context, arg database.GetCartItemByDishParams) (database.CartItem, error) {
			return database.CartItem{}, pgx.ErrNoRows
		},
		createCartItemFn: func(ctx context.Context, arg database.CreateCartItemParams) (database.CartItem, error) {
			return database.CartItem{ID: uuid.New(), TabletID: arg.TabletID, DishID: arg.DishID, Quantity: arg.Quantity}, nil
		},
		updateCartItemQuantityFn: func(ctx context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error) {
			return database.CartItem{ID: arg.ID, Quantity: arg.Quantity}, nil
		},
	}
}

// =====================
// AddItem tests
// =====================

func TestAddItem_TabletNotFound(t *testing.T) {
	store := defaultCartStore(uuid.New(), uuid.New(), 5)
	svc := NewCartService(store)

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	if !errors.Is(err, ErrTabletNotFound) {
		t.Fatalf("expected ErrTabletNotFound, got: %v", err)
	}
}

func TestAddItem_DishNotFound(t *testing.T) {
	tabletID := uuid.New()
	store := defaultCartStore(tabletID, uuid.New(), 5)
	svc := NewCartService(store)

	_, err := svc.AddItem(context.Background(), tabletID, uuid.New(), 1)
	if !errors.Is(err, ErrDishNotFound) {
		t.Fatalf("expected ErrDishNotFound, got: %v", err)
	}
}

func TestAddItem_NewLine(t *testing.T) {
	tabletID := uuid.New()
	dishID := uuid.New()
	store := defaultCartStore(tabletID, dishID, 5)
	svc := NewCartService(store)

	item, err := svc.AddItem(context.Background(), tabletID, dishID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", item.Quantity)
	}
}

func TestAddItem_ClampedToStock(t *testing.T) {
	tabletID := uuid.New()
	dishID := uuid.New()
	store := defaultCartStore(tabletID, dishID, 2)
	svc := NewCartService(store)

	item, err := svc.AddItem(context.Background(), tabletID, dishID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 2 {
		t.Errorf("quantity clamped to stock: got %d, want 2", item.Quantity)
	}
}

func TestAddItem_ClampedToCap(t *testing.T) {
	tabletID := uuid.New()
	dishID := uuid.New()
	store := defaultCartStore(tabletID, dishID, 50)
	svc := NewCartService(store)

	item, err := svc.AddItem(context.Background(), tabletID, dishID, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != maxCartQuantity {
		t.Errorf("quantity capped: got %d, want %d", item.Quantity, maxCartQuantity)
	}
}

func TestAddItem_OutOfStockFlipsAvailability(t *testing.T) {
	tabletID := uuid.New()
	dishID := uuid.New()
	store := defaultCartStore(tabletID, dishID, 0)
	// Dish still flagged available even though stock is gone.
	store.getDishFn = func(ctx context.Context, id uuid.UUID) (database.Dish, error) {
		return database.Dish{ID: dishID, Name: "Couscous", StockCount: 0, Available: true}, nil
	}
	var capturedStock database.SetDishStockParams
	store.setDishStockFn = func(ctx context.Context, arg database.SetDishStockParams) (database.Dish, error) {
		capturedStock = arg
		return database.Dish{ID: arg.ID, StockCount: arg.StockCount, Available: arg.Available}, nil
	}
	svc := NewCartService(store)

	_, err := svc.AddItem(context.Background(), tabletID, dishID, 1)
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got: %v", err)
	}
	if capturedStock.ID != dishID || capturedStock.Available {
		t.Errorf("dish should be flipped unavailable, got: %+v", capturedStock)
	}
}

func TestAddItem_ExistingLineIncremented(t *testing.T) {
	tabletID := uuid.New()
	dishID := uuid.New()
	lineID := uuid.New()
	store := defaultCartStore(tabletID, dishID, 8)
	store.getCartItemByDishFn = func(ctx context.Context, arg database.GetCartItemByDishParams) (database.CartItem, error) {
		return database.CartItem{ID: lineID, TabletID: tabletID, DishID: dishID, Quantity: 2}, nil
	}
	svc := NewCartService(store)

	item, err := svc.AddItem(context.Background(), tabletID, dishID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ID != lineID {
		t.Errorf("expected existing line %v updated, got %v", lineID, item.ID)
	}
	// 2 + 3 = 5, within stock 8 and cap 10
	if item.Quantity != 5 {
		t.Errorf("quantity: got %d, want 5", item.Quantity)
	}
}

func TestAddItem_ExistingLineReclamped(t *testing.T) {
	tabletID := uuid.New()
	dishID := uuid.New()
	store := defaultCartStore(tabletID, dishID, 4)
	store.getCartItemByDishFn = func(ctx context.Context, arg database.GetCartItemByDishParams) (database.CartItem, error) {
		return database.CartItem{ID: uuid.New(), TabletID: tabletID, DishID: dishID, Quantity: 3}, nil
	}
	svc := NewCartService(store)

	item, err := svc.AddItem(context.Background(), tabletID, dishID, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3 + 5 = 8, clamped to stock 4
	if item.Quantity != 4 {
		t.Errorf("quantity: got %d, want 4", item.Quantity)
	}
}

// =====================
// SetQuantity tests
// =====================

func TestSetQuantity_LineNotFound(t *testing.T) {
	store := defaultCartStore(uuid.New(), uuid.New(), 5)
	store.getCartItemFn = func(ctx context.Context, arg database.GetCartItemParams) (database.CartItem, error) {
		return database.CartItem{}, pgx.ErrNoRows
	}
	svc := NewCartService(store)

	_, _, err := svc.SetQuantity(context.Background(), uuid.New(), uuid.New(), 2)
	if !errors.Is(err, ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound, got: %v", err)
	}
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	tabletID := uuid.New()
	lineID := uuid.New()
	store := defaultCartStore(tabletID, uuid.New(), 5)
	store.getCartItemFn = func(ctx context.Context, arg database.GetCartItemParams) (database.CartItem, error) {
		return database.CartItem{ID: lineID, TabletID: tabletID, Quantity: 2}, nil
	}
	deleted := false
	store.deleteCartItemFn = func(ctx context.Context, arg database.DeleteCartItemParams) (int64, error) {
		deleted = arg.ID == lineID && arg.TabletID == tabletID
		return 1, nil
	}
	svc := NewCartService(store)

	_, removed, err := svc.SetQuantity(context.Background(), tabletID, lineID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !removed || !deleted {
		t.Errorf("expected line removal, removed=%v deleted=%v", removed, deleted)
	}
}

func TestSetQuantity_ClampedToStock(t *testing.T) {
	tabletID := uuid.New()
	dishID := uuid.New()
	lineID := uuid.New()
	store := defaultCartStore(tabletID, dishID, 3)
	store.getCartItemFn = func(ctx context.Context, arg database.GetCartItemParams) (database.CartItem, error) {
		return database.CartItem{ID: lineID, TabletID: tabletID, DishID: dishID, Quantity: 1}, nil
	}
	svc := NewCartService(store)

	item, removed, err := svc.SetQuantity(context.Background(), tabletID, lineID, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Error("line should not be removed")
	}
	if item.Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", item.Quantity)
	}
}

// =====================
// RemoveItem / Contents tests
// =====================

func TestRemoveItem_NotFound(t *testing.T) {
	store := defaultCartStore(uuid.New(), uuid.New(), 5)
	store.deleteCartItemFn = func(ctx context.Context, arg database.DeleteCartItemParams) (int64, error) {
		return 0, nil
	}
	svc := NewCartService(store)

	err := svc.RemoveItem(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound, got: %v", err)
	}
}

func TestContents_Total(t *testing.T) {
	tabletID := uuid.New()
	store := defaultCartStore(tabletID, uuid.New(), 5)
	store.listCartItemsByTabletFn = func(ctx context.Context, id uuid.UUID) ([]database.ListCartItemsByTabletRow, error) {
		return []database.ListCartItemsByTabletRow{
			{ID: uuid.New(), Name: "Couscous", UnitPrice: makeNumeric("12.50"), Quantity: 2},
			{ID: uuid.New(), Name: "Harira", UnitPrice: makeNumeric("4.00"), Quantity: 3},
		}, nil
	}
	svc := NewCartService(store)

	lines, total, err := svc.Contents(context.Background(), tabletID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Errorf("lines: got %d, want 2", len(lines))
	}
	// 12.50*2 + 4.00*3 = 37.00
	if total.StringFixed(2) != "37.00" {
		t.Errorf("total: got %s, want 37.00", total.StringFixed(2))
	}
}

// =====================
// clampQuantity table
// =====================

func TestClampQuantity(t *testing.T) {
	cases := []struct {
		name     string
		quantity int32
		stock    int32
		want     int32
	}{
		{"within bounds", 3, 5, 3},
		{"below one", 0, 5, 1},
		{"negative", -2, 5, 1},
		{"above stock", 8, 5, 5},
		{"above cap", 15, 50, 10},
		{"stock above cap", 12, 11, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampQuantity(tc.quantity, tc.stock); got != tc.want {
				t.Errorf("clampQuantity(%d, %d) = %d, want %d", tc.quantity, tc.stock, got, tc.want)
			}
		})
	}
}
