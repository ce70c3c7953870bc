package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (tablet_id, total)
VALUES ($1, $2)
RETURNING id, tablet_id, total, status, served_by, paid_by, created_at
`

type CreateOrderParams struct {
	TabletID uuid.UUID
	Total    pgtype.Numeric
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder, arg.TabletID, arg.Total)
	var i Order
	err := row.Scan(&i.ID, &i.TabletID, &i.Total, &i.Status, &i.ServedBy, &i.PaidBy, &i.CreatedAt)
	return i, err
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, dish_id, dish_name, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, dish_id, dish_name, quantity, unit_price
`

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	DishID    pgtype.UUID
	DishName  string
	Quantity  int32
	UnitPrice pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem, arg.OrderID, arg.DishID, arg.DishName, arg.Quantity, arg.UnitPrice)
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.DishID, &i.DishName, &i.Quantity, &i.UnitPrice)
	return i, err
}

const getOrder = `-- name: GetOrder :one
SELECT id, tablet_id, total, status, served_by, paid_by, created_at
FROM orders WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var i Order
	err := row.Scan(&i.ID, &i.TabletID, &i.Total, &i.Status, &i.ServedBy, &i.PaidBy, &i.CreatedAt)
	return i, err
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT id, tablet_id, total, status, served_by, paid_by, created_at
FROM orders WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderForUpdate, id)
	var i Order
	err := row.Scan(&i.ID, &i.TabletID, &i.Total, &i.Status, &i.ServedBy, &i.PaidBy, &i.CreatedAt)
	return i, err
}

const listOrders = `-- name: ListOrders :many
SELECT o.id, o.tablet_id, o.total, o.status, o.served_by, o.paid_by, o.created_at,
       rt.table_number
FROM orders o
JOIN tablets t ON t.id = o.tablet_id
JOIN restaurant_tables rt ON rt.id = t.table_id
WHERE ($1::text IS NULL OR o.status = $1::text)
ORDER BY o.created_at DESC
LIMIT $2 OFFSET $3
`

type ListOrdersParams struct {
	Status NullOrderStatus
	Limit  int32
	Offset int32
}

type ListOrdersRow struct {
	ID          uuid.UUID
	TabletID    uuid.UUID
	Total       pgtype.Numeric
	Status      OrderStatus
	ServedBy    pgtype.UUID
	PaidBy      pgtype.UUID
	CreatedAt   time.Time
	TableNumber int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]ListOrdersRow, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOrdersRow
	for rows.Next() {
		var i ListOrdersRow
		if err := rows.Scan(&i.ID, &i.TabletID, &i.Total, &i.Status, &i.ServedBy, &i.PaidBy,
			&i.CreatedAt, &i.TableNumber); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listPayableOrders = `-- name: ListPayableOrders :many
SELECT o.id, o.tablet_id, o.total, o.status, o.served_by, o.paid_by, o.created_at,
       rt.table_number
FROM orders o
JOIN tablets t ON t.id = o.tablet_id
JOIN restaurant_tables rt ON rt.id = t.table_id
WHERE o.status = 'SERVED'
  AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.order_id = o.id)
ORDER BY o.created_at
`

// ListPayableOrders returns served orders that have no payment yet.
func (q *Queries) ListPayableOrders(ctx context.Context) ([]ListOrdersRow, error) {
	rows, err := q.db.Query(ctx, listPayableOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOrdersRow
	for rows.Next() {
		var i ListOrdersRow
		if err := rows.Scan(&i.ID, &i.TabletID, &i.Total, &i.Status, &i.ServedBy, &i.PaidBy,
			&i.CreatedAt, &i.TableNumber); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getOrderWithTable = `-- name: GetOrderWithTable :one
SELECT o.id, o.total, o.status, o.created_at, rt.table_number
FROM orders o
JOIN tablets t ON t.id = o.tablet_id
JOIN restaurant_tables rt ON rt.id = t.table_id
WHERE o.id = $1
`

type GetOrderWithTableRow struct {
	ID          uuid.UUID
	Total       pgtype.Numeric
	Status      OrderStatus
	CreatedAt   time.Time
	TableNumber int32
}

func (q *Queries) GetOrderWithTable(ctx context.Context, id uuid.UUID) (GetOrderWithTableRow, error) {
	row := q.db.QueryRow(ctx, getOrderWithTable, id)
	var i GetOrderWithTableRow
	err := row.Scan(&i.ID, &i.Total, &i.Status, &i.CreatedAt, &i.TableNumber)
	return i, err
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT id, order_id, dish_id, dish_name, quantity, unit_price
FROM order_items WHERE order_id = $1
ORDER BY dish_name
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.DishID, &i.DishName, &i.Quantity, &i.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const markOrderServed = `-- name: MarkOrderServed :one
UPDATE orders SET status = 'SERVED', served_by = $2
WHERE id = $1 AND status = 'PENDING'
RETURNING id, tablet_id, total, status, served_by, paid_by, created_at
`

type MarkOrderServedParams struct {
	ID       uuid.UUID
	ServedBy uuid.UUID
}

// MarkOrderServed enforces the PENDING precondition atomically: pgx.ErrNoRows
// means the order is missing or not PENDING.
func (q *Queries) MarkOrderServed(ctx context.Context, arg MarkOrderServedParams) (Order, error) {
	row := q.db.QueryRow(ctx, markOrderServed, arg.ID, arg.ServedBy)
	var i Order
	err := row.Scan(&i.ID, &i.TabletID, &i.Total, &i.Status, &i.ServedBy, &i.PaidBy, &i.CreatedAt)
	return i, err
}

const markOrderPaid = `-- name: MarkOrderPaid :one
UPDATE orders SET status = 'PAID', paid_by = $2
WHERE id = $1 AND status = 'SERVED'
RETURNING id, tablet_id, total, status, served_by, paid_by, created_at
`

type MarkOrderPaidParams struct {
	ID     uuid.UUID
	PaidBy uuid.UUID
}

func (q *Queries) MarkOrderPaid(ctx context.Context, arg MarkOrderPaidParams) (Order, error) {
	row := q.db.QueryRow(ctx, markOrderPaid, arg.ID, arg.PaidBy)
	var i Order
	err := row.Scan(&i.ID, &i.TabletID, &i.Total, &i.Status, &i.ServedBy, &i.PaidBy, &i.CreatedAt)
	return i, err
}

const countUnpaidOrdersByTablet = `-- name: CountUnpaidOrdersByTablet :one
SELECT count(*) FROM orders WHERE tablet_id = $1 AND status <> 'PAID'
`

func (q *Queries) CountUnpaidOrdersByTablet(ctx context.Context, tabletID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countUnpaidOrdersByTablet, tabletID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteOrder = `-- name: DeleteOrder :execrows
DELETE FROM orders WHERE id = $1
`

func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteOrder, id)
	return tag.RowsAffected(), err
}

const deleteAllOrders = `-- name: DeleteAllOrders :execrows
DELETE FROM orders
`

func (q *Queries) DeleteAllOrders(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteAllOrders)
	return tag.RowsAffected(), err
}

const listOrdersForExport = `-- name: ListOrdersForExport :many
SELECT o.id, rt.table_number, u.identifier, o.total, o.status, o.created_at
FROM orders o
JOIN tablets t ON t.id = o.tablet_id
JOIN restaurant_tables rt ON rt.id = t.table_id
LEFT JOIN users u ON u.id = o.served_by
ORDER BY o.created_at
`

type ListOrdersForExportRow struct {
	ID          uuid.UUID
	TableNumber int32
	Identifier  pgtype.Text
	Total       pgtype.Numeric
	Status      OrderStatus
	CreatedAt   time.Time
}

const listAllOrderItems = `-- name: ListAllOrderItems :many
SELECT id, order_id, dish_id, dish_name, quantity, unit_price
FROM order_items
ORDER BY order_id, dish_name
`

func (q *Queries) ListAllOrderItems(ctx context.Context) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listAllOrderItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.DishID, &i.DishName, &i.Quantity, &i.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) ListOrdersForExport(ctx context.Context) ([]ListOrdersForExportRow, error) {
	rows, err := q.db.Query(ctx, listOrdersForExport)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOrdersForExportRow
	for rows.Next() {
		var i ListOrdersForExportRow
		if err := rows.Scan(&i.ID, &i.TableNumber, &i.Identifier, &i.Total, &i.Status, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
