package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resto-pos/api/internal/database"
	"github.com/shopspring/decimal"
)

// maxCartQuantity caps a single cart line regardless of stock.
const maxCartQuantity = 10

// Errors returned by the cart service.
var (
	ErrTabletNotFound   = errors.New("tablet not found")
	ErrDishNotFound     = errors.New("dish not found")
	ErrOutOfStock       = errors.New("dish is out of stock")
	ErrCartLineNotFound = errors.New("cart line not found")
)

// CartStore defines the DB methods needed for cart staging.
// Satisfied by *database.Queries.
type CartStore interface {
	GetTablet(ctx context.Context, id uuid.UUID) (database.Tablet, error)
	GetDish(ctx context.Context, id uuid.UUID) (database.Dish, error)
	SetDishStock(ctx context.Context, arg database.SetDishStockParams) (database.Dish, error)
	GetCartItemByDish(ctx context.Context, arg database.GetCartItemByDishParams) (database.CartItem, error)
	CreateCartItem(ctx context.Context, arg database.CreateCartItemParams) (database.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error)
	GetCartItem(ctx context.Context, arg database.GetCartItemParams) (database.CartItem, error)
	DeleteCartItem(ctx context.Context, arg database.DeleteCartItemParams) (int64, error)
	ListCartItemsByTablet(ctx context.Context, tabletID uuid.UUID) ([]database.ListCartItemsByTabletRow, error)
}

// CartService stages dish selections for a tablet before order validation.
type CartService struct {
	store CartStore
}

func NewCartService(store CartStore) *CartService {
	return &CartService{store: store}
}

// AddItem puts a dish in the tablet's cart, or bumps the existing line.
// The quantity is clamped to [1, min(10, stock)] on every mutation; a dish
// with no stock left is flipped to unavailable and rejected.
func (s *CartService) AddItem(ctx context.Context, tabletID, dishID uuid.UUID, quantity int32) (database.CartItem, error) {
	if _, err := s.store.GetTablet(ctx, tabletID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.CartItem{}, ErrTabletNotFound
		}
		return database.CartItem{}, fmt.Errorf("get tablet: %w", err)
	}

	dish, err := s.store.GetDish(ctx, dishID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.CartItem{}, ErrDishNotFound
		}
		return database.CartItem{}, fmt.Errorf("get dish: %w", err)
	}

	if dish.StockCount <= 0 {
		if dish.Available {
			if _, err := s.store.SetDishStock(ctx, database.SetDishStockParams{
				ID:         dish.ID,
				StockCount: 0,
				Available:  false,
			}); err != nil {
				return database.CartItem{}, fmt.Errorf("mark dish unavailable: %w", err)
			}
		}
		return database.CartItem{}, ErrOutOfStock
	}

	existing, err := s.store.GetCartItemByDish(ctx, database.GetCartItemByDishParams{
		TabletID: tabletID,
		DishID:   dishID,
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return database.CartItem{}, fmt.Errorf("get cart line: %w", err)
		}
		item, err := s.store.CreateCartItem(ctx, database.CreateCartItemParams{
			TabletID: tabletID,
			DishID:   dishID,
			Quantity: clampQuantity(quantity, dish.StockCount),
		})
		if err != nil {
			return database.CartItem{}, fmt.Errorf("create cart line: %w", err)
		}
		return item, nil
	}

	item, err := s.store.UpdateCartItemQuantity(ctx, database.UpdateCartItemQuantityParams{
		ID:       existing.ID,
		Quantity: clampQuantity(existing.Quantity+quantity, dish.StockCount),
	})
	if err != nil {
		return database.CartItem{}, fmt.Errorf("update cart line: %w", err)
	}
	return item, nil
}

// SetQuantity changes a cart line's quantity; zero or negative removes the
// line. Returns removed=true when the line was deleted.
func (s *CartService) SetQuantity(ctx context.Context, tabletID, itemID uuid.UUID, quantity int32) (database.CartItem, bool, error) {
	item, err := s.store.GetCartItem(ctx, database.GetCartItemParams{ID: itemID, TabletID: tabletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.CartItem{}, false, ErrCartLineNotFound
		}
		return database.CartItem{}, false, fmt.Errorf("get cart line: %w", err)
	}

	if quantity <= 0 {
		if _, err := s.store.DeleteCartItem(ctx, database.DeleteCartItemParams{ID: itemID, TabletID: tabletID}); err != nil {
			return database.CartItem{}, false, fmt.Errorf("delete cart line: %w", err)
		}
		return database.CartItem{}, true, nil
	}

	dish, err := s.store.GetDish(ctx, item.DishID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.CartItem{}, false, ErrDishNotFound
		}
		return database.CartItem{}, false, fmt.Errorf("get dish: %w", err)
	}

	updated, err := s.store.UpdateCartItemQuantity(ctx, database.UpdateCartItemQuantityParams{
		ID:       item.ID,
		Quantity: clampQuantity(quantity, dish.StockCount),
	})
	if err != nil {
		return database.CartItem{}, false, fmt.Errorf("update cart line: %w", err)
	}
	return updated, false, nil
}

// RemoveItem deletes a cart line unconditionally.
func (s *CartService) RemoveItem(ctx context.Context, tabletID, itemID uuid.UUID) error {
	rows, err := s.store.DeleteCartItem(ctx, database.DeleteCartItemParams{ID: itemID, TabletID: tabletID})
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	if rows == 0 {
		return ErrCartLineNotFound
	}
	return nil
}

// Contents returns the tablet's cart lines and the running total at current
// dish prices.
func (s *CartService) Contents(ctx context.Context, tabletID uuid.UUID) ([]database.ListCartItemsByTabletRow, decimal.Decimal, error) {
	lines, err := s.store.ListCartItemsByTablet(ctx, tabletID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("list cart lines: %w", err)
	}

	total := decimal.Zero
	for _, line := range lines {
		price := numericToDecimal(line.UnitPrice)
		total = total.Add(price.Mul(decimal.NewFromInt32(line.Quantity)))
	}
	return lines, total, nil
}

func clampQuantity(quantity, stock int32) int32 {
	max := stock
	if max > maxCartQuantity {
		max = maxCartQuantity
	}
	if quantity < 1 {
		quantity = 1
	}
	if quantity > max {
		quantity = max
	}
	return quantity
}
