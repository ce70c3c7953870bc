package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createCartItem = `-- name: CreateCartItem :one
INSERT INTO cart_items (tablet_id, dish_id, quantity)
VALUES ($1, $2, $3)
RETURNING id, tablet_id, dish_id, quantity
`

type CreateCartItemParams struct {
	TabletID uuid.UUID
	DishID   uuid.UUID
	Quantity int32
}

func (q *Queries) CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, createCartItem, arg.TabletID, arg.DishID, arg.Quantity)
	var i CartItem
	err := row.Scan(&i.ID, &i.TabletID, &i.DishID, &i.Quantity)
	return i, err
}

const getCartItem = `-- name: GetCartItem :one
SELECT id, tablet_id, dish_id, quantity
FROM cart_items WHERE id = $1 AND tablet_id = $2
`

type GetCartItemParams struct {
	ID       uuid.UUID
	TabletID uuid.UUID
}

func (q *Queries) GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItem, arg.ID, arg.TabletID)
	var i CartItem
	err := row.Scan(&i.ID, &i.TabletID, &i.DishID, &i.Quantity)
	return i, err
}

const getCartItemByDish = `-- name: GetCartItemByDish :one
SELECT id, tablet_id, dish_id, quantity
FROM cart_items WHERE tablet_id = $1 AND dish_id = $2
`

type GetCartItemByDishParams struct {
	TabletID uuid.UUID
	DishID   uuid.UUID
}

func (q *Queries) GetCartItemByDish(ctx context.Context, arg GetCartItemByDishParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, getCartItemByDish, arg.TabletID, arg.DishID)
	var i CartItem
	err := row.Scan(&i.ID, &i.TabletID, &i.DishID, &i.Quantity)
	return i, err
}

const updateCartItemQuantity = `-- name: UpdateCartItemQuantity :one
UPDATE cart_items SET quantity = $2
WHERE id = $1
RETURNING id, tablet_id, dish_id, quantity
`

type UpdateCartItemQuantityParams struct {
	ID       uuid.UUID
	Quantity int32
}

func (q *Queries) UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, updateCartItemQuantity, arg.ID, arg.Quantity)
	var i CartItem
	err := row.Scan(&i.ID, &i.TabletID, &i.DishID, &i.Quantity)
	return i, err
}

const listCartItemsByTablet = `-- name: ListCartItemsByTablet :many
SELECT ci.id, ci.dish_id, d.name, d.unit_price, d.stock_count, ci.quantity
FROM cart_items ci
JOIN dishes d ON d.id = ci.dish_id
WHERE ci.tablet_id = $1
ORDER BY d.name
`

type ListCartItemsByTabletRow struct {
	ID         uuid.UUID
	DishID     uuid.UUID
	Name       string
	UnitPrice  pgtype.Numeric
	StockCount int32
	Quantity   int32
}

func (q *Queries) ListCartItemsByTablet(ctx context.Context, tabletID uuid.UUID) ([]ListCartItemsByTabletRow, error) {
	rows, err := q.db.Query(ctx, listCartItemsByTablet, tabletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListCartItemsByTabletRow
	for rows.Next() {
		var i ListCartItemsByTabletRow
		if err := rows.Scan(&i.ID, &i.DishID, &i.Name, &i.UnitPrice, &i.StockCount, &i.Quantity); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteCartItem = `-- name: DeleteCartItem :execrows
DELETE FROM cart_items WHERE id = $1 AND tablet_id = $2
`

type DeleteCartItemParams struct {
	ID       uuid.UUID
	TabletID uuid.UUID
}

func (q *Queries) DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteCartItem, arg.ID, arg.TabletID)
	return tag.RowsAffected(), err
}

const deleteCartItemsByTablet = `-- name: DeleteCartItemsByTablet :exec
DELETE FROM cart_items WHERE tablet_id = $1
`

func (q *Queries) DeleteCartItemsByTablet(ctx context.Context, tabletID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteCartItemsByTablet, tabletID)
	return err
}
