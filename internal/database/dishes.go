package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createDish = `-- name: CreateDish :one
INSERT INTO dishes (name, unit_price, stock_count, available)
VALUES ($1, $2, $3, $4)
RETURNING id, name, unit_price, stock_count, available, created_at, updated_at
`

type CreateDishParams struct {
	Name       string
	UnitPrice  pgtype.Numeric
	StockCount int32
	Available  bool
}

func (q *Queries) CreateDish(ctx context.Context, arg CreateDishParams) (Dish, error) {
	row := q.db.QueryRow(ctx, createDish, arg.Name, arg.UnitPrice, arg.StockCount, arg.Available)
	var i Dish
	err := row.Scan(&i.ID, &i.Name, &i.UnitPrice, &i.StockCount, &i.Available, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getDish = `-- name: GetDish :one
SELECT id, name, unit_price, stock_count, available, created_at, updated_at
FROM dishes WHERE id = $1
`

func (q *Queries) GetDish(ctx context.Context, id uuid.UUID) (Dish, error) {
	row := q.db.QueryRow(ctx, getDish, id)
	var i Dish
	err := row.Scan(&i.ID, &i.Name, &i.UnitPrice, &i.StockCount, &i.Available, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getDishForUpdate = `-- name: GetDishForUpdate :one
SELECT id, name, unit_price, stock_count, available, created_at, updated_at
FROM dishes WHERE id = $1
FOR UPDATE
`

// GetDishForUpdate row-locks the dish so concurrent cart validations cannot
// both decrement the same stock past zero.
func (q *Queries) GetDishForUpdate(ctx context.Context, id uuid.UUID) (Dish, error) {
	row := q.db.QueryRow(ctx, getDishForUpdate, id)
	var i Dish
	err := row.Scan(&i.ID, &i.Name, &i.UnitPrice, &i.StockCount, &i.Available, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listDishes = `-- name: ListDishes :many
SELECT id, name, unit_price, stock_count, available, created_at, updated_at
FROM dishes ORDER BY name
`

func (q *Queries) ListDishes(ctx context.Context) ([]Dish, error) {
	rows, err := q.db.Query(ctx, listDishes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Dish
	for rows.Next() {
		var i Dish
		if err := rows.Scan(&i.ID, &i.Name, &i.UnitPrice, &i.StockCount, &i.Available, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateDish = `-- name: UpdateDish :one
UPDATE dishes
SET name = $2, unit_price = $3, stock_count = $4, available = $5, updated_at = now()
WHERE id = $1
RETURNING id, name, unit_price, stock_count, available, created_at, updated_at
`

type UpdateDishParams struct {
	ID         uuid.UUID
	Name       string
	UnitPrice  pgtype.Numeric
	StockCount int32
	Available  bool
}

func (q *Queries) UpdateDish(ctx context.Context, arg UpdateDishParams) (Dish, error) {
	row := q.db.QueryRow(ctx, updateDish, arg.ID, arg.Name, arg.UnitPrice, arg.StockCount, arg.Available)
	var i Dish
	err := row.Scan(&i.ID, &i.Name, &i.UnitPrice, &i.StockCount, &i.Available, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const setDishStock = `-- name: SetDishStock :one
UPDATE dishes
SET stock_count = $2, available = $3, updated_at = now()
WHERE id = $1
RETURNING id, name, unit_price, stock_count, available, created_at, updated_at
`

type SetDishStockParams struct {
	ID         uuid.UUID
	StockCount int32
	Available  bool
}

func (q *Queries) SetDishStock(ctx context.Context, arg SetDishStockParams) (Dish, error) {
	row := q.db.QueryRow(ctx, setDishStock, arg.ID, arg.StockCount, arg.Available)
	var i Dish
	err := row.Scan(&i.ID, &i.Name, &i.UnitPrice, &i.StockCount, &i.Available, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const deleteDish = `-- name: DeleteDish :execrows
DELETE FROM dishes WHERE id = $1
`

func (q *Queries) DeleteDish(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteDish, id)
	return tag.RowsAffected(), err
}

const deleteAllDishes = `-- name: DeleteAllDishes :execrows
DELETE FROM dishes
`

func (q *Queries) DeleteAllDishes(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteAllDishes)
	return tag.RowsAffected(), err
}
