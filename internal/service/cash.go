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

// Errors returned by the cash service.
var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidCategory   = errors.New("unknown expense category")
	ErrInsufficientFunds = errors.New("insufficient register balance")
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidPurgeKind  = errors.New("unknown purge kind")
)

// CashStore defines the DB methods needed by the register ledger.
// Satisfied by *database.Queries (and its WithTx variant).
type CashStore interface {
	EnsureRegister(ctx context.Context) error
	GetRegister(ctx context.Context) (database.CashRegister, error)
	GetRegisterForUpdate(ctx context.Context) (database.CashRegister, error)
	SetRegisterBalance(ctx context.Context, balance pgtype.Numeric) (database.CashRegister, error)
	CreateExpense(ctx context.Context, arg database.CreateExpenseParams) (database.Expense, error)
	GetExpense(ctx context.Context, id uuid.UUID) (database.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) (int64, error)
	SumExpenses(ctx context.Context) (pgtype.Numeric, error)
	DeleteAllExpenses(ctx context.Context) (int64, error)
	GetPayment(ctx context.Context, id uuid.UUID) (database.Payment, error)
	DeletePayment(ctx context.Context, id uuid.UUID) (int64, error)
	SumPayments(ctx context.Context) (pgtype.Numeric, error)
	DeleteAllPayments(ctx context.Context) (int64, error)
	DeleteAllOrders(ctx context.Context) (int64, error)
	DeleteAllDishes(ctx context.Context) (int64, error)
}

// NewCashStore creates a CashStore from a DBTX (pool or tx).
type NewCashStore func(db database.DBTX) CashStore

// CashService keeps the register balance consistent with payments and
// expenses. Every balance change locks the register row inside a transaction.
type CashService struct {
	store    CashStore
	pool     TxBeginner
	newStore NewCashStore
}

func NewCashService(store CashStore, pool TxBeginner, newStore NewCashStore) *CashService {
	return &CashService{store: store, pool: pool, newStore: newStore}
}

// Balance returns the current register balance, creating the singleton row on
// first use.
func (s *CashService) Balance(ctx context.Context) (decimal.Decimal, error) {
	if err := s.store.EnsureRegister(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("ensure register: %w", err)
	}
	register, err := s.store.GetRegister(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get register: %w", err)
	}
	return numericToDecimal(register.Balance), nil
}

// AddExpense debits the register and records the expense in one transaction.
// The debit is guarded: the register never goes negative.
func (s *CashService) AddExpense(ctx context.Context, description string, amount decimal.Decimal, category string, actorID uuid.UUID) (database.Expense, error) {
	if !amount.IsPositive() {
		return database.Expense{}, ErrInvalidAmount
	}
	if !enum.ValidExpenseCategory(category) {
		return database.Expense{}, ErrInvalidCategory
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Expense{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if err := store.EnsureRegister(ctx); err != nil {
		return database.Expense{}, fmt.Errorf("ensure register: %w", err)
	}
	register, err := store.GetRegisterForUpdate(ctx)
	if err != nil {
		return database.Expense{}, fmt.Errorf("lock register: %w", err)
	}

	balance := numericToDecimal(register.Balance)
	if amount.GreaterThan(balance) {
		return database.Expense{}, ErrInsufficientFunds
	}
	if _, err := store.SetRegisterBalance(ctx, decimalToNumeric(balance.Sub(amount))); err != nil {
		return database.Expense{}, fmt.Errorf("debit register: %w", err)
	}

	expense, err := store.CreateExpense(ctx, database.CreateExpenseParams{
		Description: description,
		Amount:      decimalToNumeric(amount),
		Category:    category,
		CreatedBy:   pgtype.UUID{Bytes: actorID, Valid: true},
	})
	if err != nil {
		return database.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Expense{}, fmt.Errorf("commit tx: %w", err)
	}
	return expense, nil
}

// DeleteExpense removes the expense and credits its amount back.
func (s *CashService) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	expense, err := store.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("get expense: %w", err)
	}
	if _, err := store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if err := store.EnsureRegister(ctx); err != nil {
		return fmt.Errorf("ensure register: %w", err)
	}
	register, err := store.GetRegisterForUpdate(ctx)
	if err != nil {
		return fmt.Errorf("lock register: %w", err)
	}
	balance := numericToDecimal(register.Balance).Add(numericToDecimal(expense.Amount))
	if _, err := store.SetRegisterBalance(ctx, decimalToNumeric(balance)); err != nil {
		return fmt.Errorf("credit register: %w", err)
	}

	return tx.Commit(ctx)
}

// DeletePayment removes the payment and debits its amount, floored at zero so
// a register already drained by expenses cannot go negative.
func (s *CashService) DeletePayment(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	payment, err := store.GetPayment(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("get payment: %w", err)
	}
	if _, err := store.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}

	if err := store.EnsureRegister(ctx); err != nil {
		return fmt.Errorf("ensure register: %w", err)
	}
	register, err := store.GetRegisterForUpdate(ctx)
	if err != nil {
		return fmt.Errorf("lock register: %w", err)
	}
	balance := numericToDecimal(register.Balance).Sub(numericToDecimal(payment.Amount))
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	if _, err := store.SetRegisterBalance(ctx, decimalToNumeric(balance)); err != nil {
		return fmt.Errorf("debit register: %w", err)
	}

	return tx.Commit(ctx)
}

// ResetBalance zeroes the register. Payment and expense history is untouched.
func (s *CashService) ResetBalance(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if err := store.EnsureRegister(ctx); err != nil {
		return fmt.Errorf("ensure register: %w", err)
	}
	if _, err := store.GetRegisterForUpdate(ctx); err != nil {
		return fmt.Errorf("lock register: %w", err)
	}
	if _, err := store.SetRegisterBalance(ctx, decimalToNumeric(decimal.Zero)); err != nil {
		return fmt.Errorf("reset register: %w", err)
	}

	return tx.Commit(ctx)
}

// Purge bulk-deletes one kind of record. Expense and payment purges apply a
// single aggregate adjustment to the register before the delete, mirroring the
// per-row delete rules; the payment adjustment is floored at zero. Order and
// dish purges cascade their dependent rows (order lines, payments, cart lines)
// without touching the register. Returns the number of rows removed.
func (s *CashService) Purge(ctx context.Context, kind string) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	var rows int64
	switch kind {
	case enum.PurgeKindOrders:
		rows, err = store.DeleteAllOrders(ctx)
		if err != nil {
			return 0, fmt.Errorf("purge orders: %w", err)
		}
	case enum.PurgeKindDishes:
		rows, err = store.DeleteAllDishes(ctx)
		if err != nil {
			return 0, fmt.Errorf("purge dishes: %w", err)
		}
	case enum.PurgeKindExpenses:
		sum, err := store.SumExpenses(ctx)
		if err != nil {
			return 0, fmt.Errorf("sum expenses: %w", err)
		}
		if err := s.adjustBalance(ctx, store, numericToDecimal(sum)); err != nil {
			return 0, err
		}
		rows, err = store.DeleteAllExpenses(ctx)
		if err != nil {
			return 0, fmt.Errorf("purge expenses: %w", err)
		}
	case enum.PurgeKindPayments:
		sum, err := store.SumPayments(ctx)
		if err != nil {
			return 0, fmt.Errorf("sum payments: %w", err)
		}
		if err := s.adjustBalance(ctx, store, numericToDecimal(sum).Neg()); err != nil {
			return 0, err
		}
		rows, err = store.DeleteAllPayments(ctx)
		if err != nil {
			return 0, fmt.Errorf("purge payments: %w", err)
		}
	default:
		return 0, ErrInvalidPurgeKind
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return rows, nil
}

// adjustBalance applies a signed delta to the locked register, floored at
// zero.
func (s *CashService) adjustBalance(ctx context.Context, store CashStore, delta decimal.Decimal) error {
	if err := store.EnsureRegister(ctx); err != nil {
		return fmt.Errorf("ensure register: %w", err)
	}
	register, err := store.GetRegisterForUpdate(ctx)
	if err != nil {
		return fmt.Errorf("lock register: %w", err)
	}
	balance := numericToDecimal(register.Balance).Add(delta)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	if _, err := store.SetRegisterBalance(ctx, decimalToNumeric(balance)); err != nil {
		return fmt.Errorf("adjust register: %w", err)
	}
	return nil
}
