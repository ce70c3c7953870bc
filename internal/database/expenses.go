package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (description, amount, category, created_by)
VALUES ($1, $2, $3, $4)
RETURNING id, description, amount, category, created_by, created_at
`

type CreateExpenseParams struct {
	Description string
	Amount      pgtype.Numeric
	Category    string
	CreatedBy   pgtype.UUID
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRow(ctx, createExpense, arg.Description, arg.Amount, arg.Category, arg.CreatedBy)
	var i Expense
	err := row.Scan(&i.ID, &i.Description, &i.Amount, &i.Category, &i.CreatedBy, &i.CreatedAt)
	return i, err
}

const getExpense = `-- name: GetExpense :one
SELECT id, description, amount, category, created_by, created_at
FROM expenses WHERE id = $1
`

func (q *Queries) GetExpense(ctx context.Context, id uuid.UUID) (Expense, error) {
	row := q.db.QueryRow(ctx, getExpense, id)
	var i Expense
	err := row.Scan(&i.ID, &i.Description, &i.Amount, &i.Category, &i.CreatedBy, &i.CreatedAt)
	return i, err
}

const listExpenses = `-- name: ListExpenses :many
SELECT id, description, amount, category, created_by, created_at
FROM expenses ORDER BY created_at DESC
`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := q.db.Query(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.ID, &i.Description, &i.Amount, &i.Category, &i.CreatedBy, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const sumExpenses = `-- name: SumExpenses :one
SELECT COALESCE(SUM(amount), 0)::numeric FROM expenses
`

func (q *Queries) SumExpenses(ctx context.Context) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumExpenses)
	var sum pgtype.Numeric
	err := row.Scan(&sum)
	return sum, err
}

const deleteExpense = `-- name: DeleteExpense :execrows
DELETE FROM expenses WHERE id = $1
`

func (q *Queries) DeleteExpense(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteExpense, id)
	return tag.RowsAffected(), err
}

const deleteAllExpenses = `-- name: DeleteAllExpenses :execrows
DELETE FROM expenses
`

func (q *Queries) DeleteAllExpenses(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteAllExpenses)
	return tag.RowsAffected(), err
}
