package database

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderStatus string

const (
	OrderStatusPENDING OrderStatus = "PENDING"
	OrderStatusSERVED  OrderStatus = "SERVED"
	OrderStatusPAID    OrderStatus = "PAID"
)

func (e *OrderStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderStatus(s)
	case string:
		*e = OrderStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderStatus: %T", src)
	}
	return nil
}

type NullOrderStatus struct {
	OrderStatus OrderStatus
	Valid       bool
}

func (ns *NullOrderStatus) Scan(value interface{}) error {
	if value == nil {
		ns.OrderStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.OrderStatus.Scan(value)
}

func (ns NullOrderStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.OrderStatus), nil
}

type User struct {
	ID             uuid.UUID
	Identifier     string
	HashedPassword string
	Role           string
	Superuser      bool
	CreatedAt      time.Time
}

type RestaurantTable struct {
	ID          uuid.UUID
	TableNumber int32
	SeatCount   int32
	Occupied    bool
}

type Tablet struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	TableID        uuid.UUID
	Active         bool
	Blocked        bool
	SessionVersion int32
	CreatedAt      time.Time
}

type Dish struct {
	ID         uuid.UUID
	Name       string
	UnitPrice  pgtype.Numeric
	StockCount int32
	Available  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CartItem struct {
	ID       uuid.UUID
	TabletID uuid.UUID
	DishID   uuid.UUID
	Quantity int32
}

type Order struct {
	ID        uuid.UUID
	TabletID  uuid.UUID
	Total     pgtype.Numeric
	Status    OrderStatus
	ServedBy  pgtype.UUID
	PaidBy    pgtype.UUID
	CreatedAt time.Time
}

// OrderItem keeps a snapshot of the dish name and unit price at order time.
// DishID is nullable so deleting a dish does not destroy order history.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	DishID    pgtype.UUID
	DishName  string
	Quantity  int32
	UnitPrice pgtype.Numeric
}

type Payment struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Amount    pgtype.Numeric
	Method    string
	CreatedAt time.Time
}

type Expense struct {
	ID          uuid.UUID
	Description string
	Amount      pgtype.Numeric
	Category    string
	CreatedBy   pgtype.UUID
	CreatedAt   time.Time
}

// CashRegister is a singleton row (id = 1), created lazily.
type CashRegister struct {
	ID        int32
	Balance   pgtype.Numeric
	UpdatedAt time.Time
}
