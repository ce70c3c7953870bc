package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const createTable = `-- name: CreateTable :one
INSERT INTO restaurant_tables (table_number, seat_count)
VALUES ($1, $2)
RETURNING id, table_number, seat_count, occupied
`

type CreateTableParams struct {
	TableNumber int32
	SeatCount   int32
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, createTable, arg.TableNumber, arg.SeatCount)
	var i RestaurantTable
	err := row.Scan(&i.ID, &i.TableNumber, &i.SeatCount, &i.Occupied)
	return i, err
}

const getTable = `-- name: GetTable :one
SELECT id, table_number, seat_count, occupied
FROM restaurant_tables WHERE id = $1
`

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, getTable, id)
	var i RestaurantTable
	err := row.Scan(&i.ID, &i.TableNumber, &i.SeatCount, &i.Occupied)
	return i, err
}

const listTables = `-- name: ListTables :many
SELECT id, table_number, seat_count, occupied
FROM restaurant_tables ORDER BY table_number
`

func (q *Queries) ListTables(ctx context.Context) ([]RestaurantTable, error) {
	rows, err := q.db.Query(ctx, listTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RestaurantTable
	for rows.Next() {
		var i RestaurantTable
		if err := rows.Scan(&i.ID, &i.TableNumber, &i.SeatCount, &i.Occupied); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const setTableOccupied = `-- name: SetTableOccupied :exec
UPDATE restaurant_tables SET occupied = $2 WHERE id = $1
`

type SetTableOccupiedParams struct {
	ID       uuid.UUID
	Occupied bool
}

func (q *Queries) SetTableOccupied(ctx context.Context, arg SetTableOccupiedParams) error {
	_, err := q.db.Exec(ctx, setTableOccupied, arg.ID, arg.Occupied)
	return err
}

const deleteTable = `-- name: DeleteTable :execrows
DELETE FROM restaurant_tables WHERE id = $1
`

func (q *Queries) DeleteTable(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteTable, id)
	return tag.RowsAffected(), err
}

const createTablet = `-- name: CreateTablet :one
INSERT INTO tablets (user_id, table_id)
VALUES ($1, $2)
RETURNING id, user_id, table_id, active, blocked, session_version, created_at
`

type CreateTabletParams struct {
	UserID  uuid.UUID
	TableID uuid.UUID
}

func (q *Queries) CreateTablet(ctx context.Context, arg CreateTabletParams) (Tablet, error) {
	row := q.db.QueryRow(ctx, createTablet, arg.UserID, arg.TableID)
	var i Tablet
	err := row.Scan(&i.ID, &i.UserID, &i.TableID, &i.Active, &i.Blocked, &i.SessionVersion, &i.CreatedAt)
	return i, err
}

const getTablet = `-- name: GetTablet :one
SELECT id, user_id, table_id, active, blocked, session_version, created_at
FROM tablets WHERE id = $1
`

func (q *Queries) GetTablet(ctx context.Context, id uuid.UUID) (Tablet, error) {
	row := q.db.QueryRow(ctx, getTablet, id)
	var i Tablet
	err := row.Scan(&i.ID, &i.UserID, &i.TableID, &i.Active, &i.Blocked, &i.SessionVersion, &i.CreatedAt)
	return i, err
}

const getTabletByUser = `-- name: GetTabletByUser :one
SELECT id, user_id, table_id, active, blocked, session_version, created_at
FROM tablets WHERE user_id = $1
`

func (q *Queries) GetTabletByUser(ctx context.Context, userID uuid.UUID) (Tablet, error) {
	row := q.db.QueryRow(ctx, getTabletByUser, userID)
	var i Tablet
	err := row.Scan(&i.ID, &i.UserID, &i.TableID, &i.Active, &i.Blocked, &i.SessionVersion, &i.CreatedAt)
	return i, err
}

const listTablets = `-- name: ListTablets :many
SELECT t.id, t.user_id, t.table_id, t.active, t.blocked, t.session_version, t.created_at,
       rt.table_number, u.identifier
FROM tablets t
JOIN restaurant_tables rt ON rt.id = t.table_id
JOIN users u ON u.id = t.user_id
ORDER BY rt.table_number
`

type ListTabletsRow struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	TableID        uuid.UUID
	Active         bool
	Blocked        bool
	SessionVersion int32
	CreatedAt      time.Time
	TableNumber    int32
	Identifier     string
}

func (q *Queries) ListTablets(ctx context.Context) ([]ListTabletsRow, error) {
	rows, err := q.db.Query(ctx, listTablets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListTabletsRow
	for rows.Next() {
		var i ListTabletsRow
		if err := rows.Scan(&i.ID, &i.UserID, &i.TableID, &i.Active, &i.Blocked, &i.SessionVersion,
			&i.CreatedAt, &i.TableNumber, &i.Identifier); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getTabletByTable = `-- name: GetTabletByTable :one
SELECT id, user_id, table_id, active, blocked, session_version, created_at
FROM tablets WHERE table_id = $1
`

func (q *Queries) GetTabletByTable(ctx context.Context, tableID uuid.UUID) (Tablet, error) {
	row := q.db.QueryRow(ctx, getTabletByTable, tableID)
	var i Tablet
	err := row.Scan(&i.ID, &i.UserID, &i.TableID, &i.Active, &i.Blocked, &i.SessionVersion, &i.CreatedAt)
	return i, err
}

const setTabletBlocked = `-- name: SetTabletBlocked :one
UPDATE tablets SET blocked = $2
WHERE id = $1
RETURNING id, user_id, table_id, active, blocked, session_version, created_at
`

type SetTabletBlockedParams struct {
	ID      uuid.UUID
	Blocked bool
}

func (q *Queries) SetTabletBlocked(ctx context.Context, arg SetTabletBlockedParams) (Tablet, error) {
	row := q.db.QueryRow(ctx, setTabletBlocked, arg.ID, arg.Blocked)
	var i Tablet
	err := row.Scan(&i.ID, &i.UserID, &i.TableID, &i.Active, &i.Blocked, &i.SessionVersion, &i.CreatedAt)
	return i, err
}

const bumpAllTabletSessions = `-- name: BumpAllTabletSessions :execrows
UPDATE tablets SET session_version = session_version + 1
`

// BumpAllTabletSessions invalidates every outstanding tablet token.
func (q *Queries) BumpAllTabletSessions(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, bumpAllTabletSessions)
	return tag.RowsAffected(), err
}

const getTabletSession = `-- name: GetTabletSession :one
SELECT session_version, blocked, active FROM tablets WHERE id = $1
`

type GetTabletSessionRow struct {
	SessionVersion int32
	Blocked        bool
	Active         bool
}

func (q *Queries) GetTabletSession(ctx context.Context, id uuid.UUID) (GetTabletSessionRow, error) {
	row := q.db.QueryRow(ctx, getTabletSession, id)
	var i GetTabletSessionRow
	err := row.Scan(&i.SessionVersion, &i.Blocked, &i.Active)
	return i, err
}
