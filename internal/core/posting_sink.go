package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// FinancePosting is the payload a received purchase sends to the financial
// journal. Reference doubles as an idempotency key so a retried post cannot
// double-book the expense.
type FinancePosting struct {
	Date        time.Time
	Direction   string
	Category    string
	Subcategory string
	Amount      decimal.Decimal
	Description string
	Reference   string
}

// LedgerPostingSink receives best-effort postings from the purchase ledger.
// It is a soft dependency: callers log a Post failure and move on, never roll
// back the purchase because of it.
type LedgerPostingSink interface {
	Post(ctx context.Context, p FinancePosting) error
}

type financeEntrySink struct {
	pool *pgxpool.Pool
}

// NewFinanceEntrySink constructs a LedgerPostingSink writing to the
// finance_entries journal table.
func NewFinanceEntrySink(pool *pgxpool.Pool) LedgerPostingSink {
	return &financeEntrySink{pool: pool}
}

func (s *financeEntrySink) Post(ctx context.Context, p FinancePosting) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO finance_entries (entry_date, direction, category, subcategory, amount, description, reference, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'posted')
		ON CONFLICT (reference) DO NOTHING`,
		p.Date.Format("2006-01-02"), p.Direction, p.Category, p.Subcategory,
		p.Amount, p.Description, p.Reference,
	)
	if err != nil {
		return &PersistenceError{Op: "post finance entry", Err: err}
	}
	return nil
}
