package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrAlreadyPaid       = errors.New("order already has a payment")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order lifecycle.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetTablet(ctx context.Context, id uuid.UUID) (database.Tablet, error)
	ListCartItemsByTablet(ctx context.Context, tabletID uuid.UUID) ([]database.ListCartItemsByTabletRow, error)
	GetDishForUpdate(ctx context.Context, id uuid.UUID) (database.Dish, error)
	SetDishStock(ctx context.Context, arg database.SetDishStockParams) (database.Dish, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	DeleteCartItemsByTablet(ctx context.Context, tabletID uuid.UUID) error
	SetTableOccupied(ctx context.Context, arg database.SetTableOccupiedParams) error
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	MarkOrderServed(ctx context.Context, arg database.MarkOrderServedParams) (database.Order, error)
	MarkOrderPaid(ctx context.Context, arg database.MarkOrderPaidParams) (database.Order, error)
	GetPaymentByOrder(ctx context.Context, orderID uuid.UUID) (database.Payment, error)
	CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.Payment, error)
	CountUnpaidOrdersByTablet(ctx context.Context, tabletID uuid.UUID) (int64, error)
	EnsureRegister(ctx context.Context) error
	GetRegisterForUpdate(ctx context.Context) (database.CashRegister, error)
	SetRegisterBalance(ctx context.Context, balance pgtype.Numeric) (database.CashRegister, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// OrderService drives the pending → served → paid order lifecycle.
// store handles single-statement operations; multi-step mutations run on a
// fresh store bound to a transaction from pool.
type OrderService struct {
	store    OrderStore
	pool     TxBeginner
	newStore NewOrderStore
}

func NewOrderService(store OrderStore, pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{store: store, pool: pool, newStore: newStore}
}

// ValidateCartResult is the created order with its snapshot lines.
type ValidateCartResult struct {
	Order database.Order
	Items []database.OrderItem
}

// orderLine is a prepared snapshot line awaiting insert.
type orderLine struct {
	dishID    uuid.UUID
	dishName  string
	quantity  int32
	unitPrice decimal.Decimal
}

// ValidateCart converts the tablet's cart into an immutable order in one
// transaction: snapshot lines at current prices, decrement stock (floored at
// zero, availability flipped at zero), clear the cart, mark the table
// occupied. Dish rows are locked so two validations cannot both draw down the
// same stock.
func (s *OrderService) ValidateCart(ctx context.Context, tabletID uuid.UUID) (*ValidateCartResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	tablet, err := store.GetTablet(ctx, tabletID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTabletNotFound
		}
		return nil, fmt.Errorf("get tablet: %w", err)
	}

	lines, err := store.ListCartItemsByTablet(ctx, tabletID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	total := decimal.Zero
	prepared := make([]orderLine, 0, len(lines))

	for _, line := range lines {
		dish, err := store.GetDishForUpdate(ctx, line.DishID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrDishNotFound
			}
			return nil, fmt.Errorf("lock dish: %w", err)
		}

		price := numericToDecimal(dish.UnitPrice)
		total = total.Add(price.Mul(decimal.NewFromInt32(line.Quantity)))
		prepared = append(prepared, orderLine{
			dishID:    dish.ID,
			dishName:  dish.Name,
			quantity:  line.Quantity,
			unitPrice: price,
		})

		newStock := dish.StockCount - line.Quantity
		if newStock < 0 {
			newStock = 0
		}
		available := dish.Available
		if newStock == 0 {
			available = false
		}
		if _, err := store.SetDishStock(ctx, database.SetDishStockParams{
			ID:         dish.ID,
			StockCount: newStock,
			Available:  available,
		}); err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		TabletID: tabletID,
		Total:    decimalToNumeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(prepared))
	for _, line := range prepared {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   order.ID,
			DishID:    pgtype.UUID{Bytes: line.dishID, Valid: true},
			DishName:  line.dishName,
			Quantity:  line.quantity,
			UnitPrice: decimalToNumeric(line.unitPrice),
		})
		if err != nil {
			return nil, fmt.Errorf("create order line: %w", err)
		}
		items = append(items, item)
	}

	if err := store.DeleteCartItemsByTablet(ctx, tabletID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := store.SetTableOccupied(ctx, database.SetTableOccupiedParams{
		ID:       tablet.TableID,
		Occupied: true,
	}); err != nil {
		return nil, fmt.Errorf("mark table occupied: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &ValidateCartResult{Order: order, Items: items}, nil
}

// MarkServed moves a PENDING order to SERVED and records the acting staff.
func (s *OrderService) MarkServed(ctx context.Context, orderID, staffID uuid.UUID) (database.Order, error) {
	order, err := s.store.MarkOrderServed(ctx, database.MarkOrderServedParams{ID: orderID, ServedBy: staffID})
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return database.Order{}, fmt.Errorf("mark served: %w", err)
	}

	// No row updated: missing order or wrong status. Fetch to tell which.
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	return database.Order{}, ErrInvalidTransition
}

// RecordPaymentResult is the payment with the updated order.
type RecordPaymentResult struct {
	Order   database.Order
	Payment database.Payment
}

// RecordPayment settles a SERVED order in one transaction: create the cash
// payment for the order total, mark the order PAID, credit the register, and
// free the table when no unpaid orders remain on its tablet.
func (s *OrderService) RecordPayment(ctx context.Context, orderID, staffID uuid.UUID) (*RecordPaymentResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}

	// Defensive double-check: the unique constraint on payments.order_id is
	// the hard guarantee, this gives a cleaner error.
	if _, err := store.GetPaymentByOrder(ctx, orderID); err == nil {
		return nil, ErrAlreadyPaid
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing payment: %w", err)
	}

	if order.Status != database.OrderStatusSERVED {
		return nil, ErrInvalidTransition
	}

	payment, err := store.CreatePayment(ctx, database.CreatePaymentParams{
		OrderID: orderID,
		Amount:  order.Total,
		Method:  enum.PaymentMethodCash,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	paid, err := store.MarkOrderPaid(ctx, database.MarkOrderPaidParams{ID: orderID, PaidBy: staffID})
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}

	if err := store.EnsureRegister(ctx); err != nil {
		return nil, fmt.Errorf("ensure register: %w", err)
	}
	register, err := store.GetRegisterForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock register: %w", err)
	}
	balance := numericToDecimal(register.Balance).Add(numericToDecimal(order.Total))
	if _, err := store.SetRegisterBalance(ctx, decimalToNumeric(balance)); err != nil {
		return nil, fmt.Errorf("credit register: %w", err)
	}

	unpaid, err := store.CountUnpaidOrdersByTablet(ctx, order.TabletID)
	if err != nil {
		return nil, fmt.Errorf("count unpaid orders: %w", err)
	}
	if unpaid == 0 {
		tablet, err := store.GetTablet(ctx, order.TabletID)
		if err != nil {
			return nil, fmt.Errorf("get tablet: %w", err)
		}
		if err := store.SetTableOccupied(ctx, database.SetTableOccupiedParams{
			ID:       tablet.TableID,
			Occupied: false,
		}); err != nil {
			return nil, fmt.Errorf("free table: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &RecordPaymentResult{Order: paid, Payment: payment}, nil
}

// Delete removes an order and cascades its lines. Any payment row cascades
// with the order, but the register credit is deliberately left in place —
// reversing cash requires deleting the payment first (see CashService).
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	rows, err := s.store.DeleteOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if rows == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
