package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createPayment = `-- name: CreatePayment :one
INSERT INTO payments (order_id, amount, method)
VALUES ($1, $2, $3)
RETURNING id, order_id, amount, method, created_at
`

type CreatePaymentParams struct {
	OrderID uuid.UUID
	Amount  pgtype.Numeric
	Method  string
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, createPayment, arg.OrderID, arg.Amount, arg.Method)
	var i Payment
	err := row.Scan(&i.ID, &i.OrderID, &i.Amount, &i.Method, &i.CreatedAt)
	return i, err
}

const getPayment = `-- name: GetPayment :one
SELECT id, order_id, amount, method, created_at
FROM payments WHERE id = $1
`

func (q *Queries) GetPayment(ctx context.Context, id uuid.UUID) (Payment, error) {
	row := q.db.QueryRow(ctx, getPayment, id)
	var i Payment
	err := row.Scan(&i.ID, &i.OrderID, &i.Amount, &i.Method, &i.CreatedAt)
	return i, err
}

const getPaymentByOrder = `-- name: GetPaymentByOrder :one
SELECT id, order_id, amount, method, created_at
FROM payments WHERE order_id = $1
`

func (q *Queries) GetPaymentByOrder(ctx context.Context, orderID uuid.UUID) (Payment, error) {
	row := q.db.QueryRow(ctx, getPaymentByOrder, orderID)
	var i Payment
	err := row.Scan(&i.ID, &i.OrderID, &i.Amount, &i.Method, &i.CreatedAt)
	return i, err
}

const listPayments = `-- name: ListPayments :many
SELECT p.id, p.order_id, p.amount, p.method, p.created_at, rt.table_number
FROM payments p
JOIN orders o ON o.id = p.order_id
JOIN tablets t ON t.id = o.tablet_id
JOIN restaurant_tables rt ON rt.id = t.table_id
ORDER BY p.created_at DESC
`

type ListPaymentsRow struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Amount      pgtype.Numeric
	Method      string
	CreatedAt   time.Time
	TableNumber int32
}

func (q *Queries) ListPayments(ctx context.Context) ([]ListPaymentsRow, error) {
	rows, err := q.db.Query(ctx, listPayments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPaymentsRow
	for rows.Next() {
		var i ListPaymentsRow
		if err := rows.Scan(&i.ID, &i.OrderID, &i.Amount, &i.Method, &i.CreatedAt, &i.TableNumber); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const sumPayments = `-- name: SumPayments :one
SELECT COALESCE(SUM(amount), 0)::numeric FROM payments
`

func (q *Queries) SumPayments(ctx context.Context) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumPayments)
	var sum pgtype.Numeric
	err := row.Scan(&sum)
	return sum, err
}

const deletePayment = `-- name: DeletePayment :execrows
DELETE FROM payments WHERE id = $1
`

func (q *Queries) DeletePayment(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deletePayment, id)
	return tag.RowsAffected(), err
}

const deleteAllPayments = `-- name: DeleteAllPayments :execrows
DELETE FROM payments
`

func (q *Queries) DeleteAllPayments(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteAllPayments)
	return tag.RowsAffected(), err
}
