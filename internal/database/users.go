package database

import (
	"context"

	"github.com/google/uuid"
)

const createUser = `-- name: CreateUser :one
INSERT INTO users (identifier, hashed_password, role, superuser)
VALUES ($1, $2, $3, $4)
RETURNING id, identifier, hashed_password, role, superuser, created_at
`

type CreateUserParams struct {
	Identifier     string
	HashedPassword string
	Role           string
	Superuser      bool
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.Identifier, arg.HashedPassword, arg.Role, arg.Superuser)
	var i User
	err := row.Scan(&i.ID, &i.Identifier, &i.HashedPassword, &i.Role, &i.Superuser, &i.CreatedAt)
	return i, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT id, identifier, hashed_password, role, superuser, created_at
FROM users WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var i User
	err := row.Scan(&i.ID, &i.Identifier, &i.HashedPassword, &i.Role, &i.Superuser, &i.CreatedAt)
	return i, err
}

const getUserByIdentifier = `-- name: GetUserByIdentifier :one
SELECT id, identifier, hashed_password, role, superuser, created_at
FROM users WHERE identifier = $1
`

func (q *Queries) GetUserByIdentifier(ctx context.Context, identifier string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByIdentifier, identifier)
	var i User
	err := row.Scan(&i.ID, &i.Identifier, &i.HashedPassword, &i.Role, &i.Superuser, &i.CreatedAt)
	return i, err
}

const listUsers = `-- name: ListUsers :many
SELECT id, identifier, hashed_password, role, superuser, created_at
FROM users ORDER BY identifier
`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(&i.ID, &i.Identifier, &i.HashedPassword, &i.Role, &i.Superuser, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateUser = `-- name: UpdateUser :one
UPDATE users SET identifier = $2, role = $3
WHERE id = $1
RETURNING id, identifier, hashed_password, role, superuser, created_at
`

type UpdateUserParams struct {
	ID         uuid.UUID
	Identifier string
	Role       string
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, updateUser, arg.ID, arg.Identifier, arg.Role)
	var i User
	err := row.Scan(&i.ID, &i.Identifier, &i.HashedPassword, &i.Role, &i.Superuser, &i.CreatedAt)
	return i, err
}

const updateUserPassword = `-- name: UpdateUserPassword :exec
UPDATE users SET hashed_password = $2 WHERE id = $1
`

type UpdateUserPasswordParams struct {
	ID             uuid.UUID
	HashedPassword string
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.Exec(ctx, updateUserPassword, arg.ID, arg.HashedPassword)
	return err
}

const deleteUser = `-- name: DeleteUser :execrows
DELETE FROM users WHERE id = $1
`

func (q *Queries) DeleteUser(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteUser, id)
	return tag.RowsAffected(), err
}
