package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// ValidationError reports bad caller input. Nothing was mutated and the
// message is safe to show to the user verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced purchase, item, or supplier that does
// not exist.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// OverpaymentError reports a payment amount exceeding the remaining debt.
// Remaining carries the balance read inside the payment transaction so the
// caller can offer "pay the full remaining amount".
type OverpaymentError struct {
	PurchaseID int
	Amount     decimal.Decimal
	Remaining  decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds remaining debt %s on purchase %d",
		e.Amount.StringFixed(2), e.Remaining.StringFixed(2), e.PurchaseID)
}

// ConcurrencyError reports a transient conflict with a concurrent writer
// (invoice-number collision, serialization failure, deadlock). The whole
// operation is safe to retry with fresh reads; retrying with the same stale
// amounts is not.
type ConcurrencyError struct {
	Op  string
	Err error
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("%s: conflicting concurrent update: %v", e.Op, e.Err)
}

func (e *ConcurrencyError) Unwrap() error { return e.Err }

// PersistenceError reports a storage failure. The enclosing transaction has
// rolled back, so no partial stock or financial state is visible.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Postgres error codes that mark a retriable write conflict.
const (
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// classifyPgError maps a storage error to the ledger taxonomy: unique
// violations and serialization failures become ConcurrencyError, everything
// else PersistenceError. op names the failed operation for the message.
func classifyPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
			return &ConcurrencyError{Op: op, Err: err}
		}
	}
	return &PersistenceError{Op: op, Err: err}
}

// isCheckViolation reports whether err is a CHECK constraint violation,
// used to translate qty_on_hand >= 0 failures into domain errors.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation
}
