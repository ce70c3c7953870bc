package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const ensureRegister = `-- name: EnsureRegister :exec
INSERT INTO cash_register (id, balance) VALUES (1, 0)
ON CONFLICT (id) DO NOTHING
`

// EnsureRegister lazily creates the singleton register row.
func (q *Queries) EnsureRegister(ctx context.Context) error {
	_, err := q.db.Exec(ctx, ensureRegister)
	return err
}

const getRegister = `-- name: GetRegister :one
SELECT id, balance, updated_at FROM cash_register WHERE id = 1
`

func (q *Queries) GetRegister(ctx context.Context) (CashRegister, error) {
	row := q.db.QueryRow(ctx, getRegister)
	var i CashRegister
	err := row.Scan(&i.ID, &i.Balance, &i.UpdatedAt)
	return i, err
}

const getRegisterForUpdate = `-- name: GetRegisterForUpdate :one
SELECT id, balance, updated_at FROM cash_register WHERE id = 1
FOR UPDATE
`

// GetRegisterForUpdate row-locks the register so concurrent credits and debits
// cannot lose updates. Callers must run inside a transaction and call
// EnsureRegister first.
func (q *Queries) GetRegisterForUpdate(ctx context.Context) (CashRegister, error) {
	row := q.db.QueryRow(ctx, getRegisterForUpdate)
	var i CashRegister
	err := row.Scan(&i.ID, &i.Balance, &i.UpdatedAt)
	return i, err
}

const setRegisterBalance = `-- name: SetRegisterBalance :one
UPDATE cash_register SET balance = $1, updated_at = now()
WHERE id = 1
RETURNING id, balance, updated_at
`

func (q *Queries) SetRegisterBalance(ctx context.Context, balance pgtype.Numeric) (CashRegister, error) {
	row := q.db.QueryRow(ctx, setRegisterBalance, balance)
	var i CashRegister
	err := row.Scan(&i.ID, &i.Balance, &i.UpdatedAt)
	return i, err
}
