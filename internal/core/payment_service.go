package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RecordPaymentInput is the input for repaying part of a purchase debt.
type RecordPaymentInput struct {
	PurchaseID int
	Amount     decimal.Decimal
	Method     PaymentMethod
	Note       string
	PaidAt     time.Time // zero means now
}

// DebtPaymentJournal appends repayment events against purchases and keeps the
// derived balance fields on the purchase in step. Payments are append-only:
// never updated or deleted, because they are the audit trail that proves how
// total_paid reached its current value.
type DebtPaymentJournal interface {
	// RecordPayment validates amount against the balance re-read under the
	// purchase row lock, appends the payment, and advances the purchase
	// through debt → installment → paid. Returns the updated purchase and
	// the new payment.
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*Purchase, *DebtPayment, error)

	// ListPayments returns a purchase's payments, newest first.
	ListPayments(ctx context.Context, purchaseID int) ([]DebtPayment, error)
}

type debtPaymentJournal struct {
	pool   *pgxpool.Pool
	ledger PurchaseLedger
}

// NewDebtPaymentJournal constructs a DebtPaymentJournal backed by PostgreSQL.
// ledger is used to return the refreshed purchase after a payment commits.
func NewDebtPaymentJournal(pool *pgxpool.Pool, ledger PurchaseLedger) DebtPaymentJournal {
	return &debtPaymentJournal{pool: pool, ledger: ledger}
}

func (j *debtPaymentJournal) RecordPayment(ctx context.Context, input RecordPaymentInput) (*Purchase, *DebtPayment, error) {
	if !input.Amount.IsPositive() {
		return nil, nil, validationErrorf("payment amount must be positive")
	}
	if !input.Method.Valid() {
		return nil, nil, validationErrorf("unknown payment method %q", input.Method)
	}
	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	tx, err := j.pool.Begin(ctx)
	if err != nil {
		return nil, nil, &PersistenceError{Op: "begin payment", Err: err}
	}
	defer tx.Rollback(ctx)

	// Re-read the balance under the row lock. The amount the UI validated
	// against may be stale by the time the user submits; this read is the one
	// that counts.
	var totalAmount, totalPaid, remaining decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT total_amount, total_paid, remaining_debt
		FROM purchases
		WHERE id = $1
		FOR UPDATE`,
		input.PurchaseID,
	).Scan(&totalAmount, &totalPaid, &remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, &NotFoundError{Entity: "purchase", ID: input.PurchaseID}
		}
		return nil, nil, classifyPgError(fmt.Sprintf("lock purchase %d", input.PurchaseID), err)
	}

	if input.Amount.GreaterThan(remaining) {
		return nil, nil, &OverpaymentError{
			PurchaseID: input.PurchaseID,
			Amount:     input.Amount,
			Remaining:  remaining,
		}
	}

	remainingAfter := remaining.Sub(input.Amount)
	newTotalPaid := totalPaid.Add(input.Amount)
	newStatus := DerivePaymentStatus(newTotalPaid, totalAmount)

	var note *string
	if input.Note != "" {
		note = &input.Note
	}

	payment := &DebtPayment{}
	var method string
	err = tx.QueryRow(ctx, `
		INSERT INTO debt_payments (purchase_id, paid_at, amount, method, remaining_after, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, purchase_id, paid_at, amount, method, remaining_after, note, created_at`,
		input.PurchaseID, paidAt.Format("2006-01-02"), input.Amount,
		string(input.Method), remainingAfter, note,
	).Scan(
		&payment.ID, &payment.PurchaseID, &payment.PaidAt, &payment.Amount,
		&method, &payment.RemainingAfter, &payment.Note, &payment.CreatedAt,
	)
	if err != nil {
		return nil, nil, classifyPgError("insert debt payment", err)
	}
	payment.Method = PaymentMethod(method)

	// The remaining_debt >= amount guard re-checks the balance at write time.
	// Zero rows affected means two writers raced and the caller must retry
	// against a fresh balance.
	tag, err := tx.Exec(ctx, `
		UPDATE purchases
		SET total_paid     = total_paid + $1,
		    remaining_debt = remaining_debt - $1,
		    payment_status = $2,
		    updated_at     = NOW()
		WHERE id = $3 AND remaining_debt >= $1`,
		input.Amount, string(newStatus), input.PurchaseID,
	)
	if err != nil {
		return nil, nil, classifyPgError(fmt.Sprintf("apply payment to purchase %d", input.PurchaseID), err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil, &ConcurrencyError{
			Op:  fmt.Sprintf("apply payment to purchase %d", input.PurchaseID),
			Err: errors.New("balance changed between read and write"),
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, classifyPgError("commit payment", err)
	}

	purchase, err := j.ledger.GetPurchase(ctx, input.PurchaseID)
	if err != nil {
		return nil, nil, err
	}
	return purchase, payment, nil
}

func (j *debtPaymentJournal) ListPayments(ctx context.Context, purchaseID int) ([]DebtPayment, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT id, purchase_id, paid_at, amount, method, remaining_after, note, created_at
		FROM debt_payments
		WHERE purchase_id = $1
		ORDER BY paid_at DESC, id DESC`,
		purchaseID,
	)
	if err != nil {
		return nil, &PersistenceError{Op: fmt.Sprintf("list payments for purchase %d", purchaseID), Err: err}
	}
	defer rows.Close()

	var payments []DebtPayment
	for rows.Next() {
		var p DebtPayment
		var method string
		if err := rows.Scan(
			&p.ID, &p.PurchaseID, &p.PaidAt, &p.Amount,
			&method, &p.RemainingAfter, &p.Note, &p.CreatedAt,
		); err != nil {
			return nil, &PersistenceError{Op: "scan debt payment", Err: err}
		}
		p.Method = PaymentMethod(method)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
