package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DebtReportingService is the read-only projection over purchases with
// outstanding debt. It never writes, so it is safe to run concurrently with
// any purchase or payment.
type DebtReportingService interface {
	// ListOutstanding returns purchases with remaining_debt > 0, ordered by
	// due date ascending with undated debts last, each classified by urgency
	// relative to asOf.
	ListOutstanding(ctx context.Context, asOf time.Time) ([]DebtSummaryRow, error)

	// GetDebtStats aggregates the outstanding projection: total owed, open
	// purchase count, and how many are overdue as of asOf.
	GetDebtStats(ctx context.Context, asOf time.Time) (*DebtStats, error)
}

type debtReportingService struct {
	pool          *pgxpool.Pool
	dueSoonWindow int // days
}

// NewDebtReportingService constructs a DebtReportingService. dueSoonWindow is
// the number of days before the due date at which a debt counts as due_soon;
// zero or negative falls back to 7.
func NewDebtReportingService(pool *pgxpool.Pool, dueSoonWindow int) DebtReportingService {
	if dueSoonWindow <= 0 {
		dueSoonWindow = 7
	}
	return &debtReportingService{pool: pool, dueSoonWindow: dueSoonWindow}
}

func (s *debtReportingService) ListOutstanding(ctx context.Context, asOf time.Time) ([]DebtSummaryRow, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+purchaseColumns+` FROM purchases p
		WHERE p.remaining_debt > 0
		ORDER BY p.due_date ASC NULLS LAST, p.id ASC`,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "list outstanding debts", Err: err}
	}
	defer rows.Close()

	var result []DebtSummaryRow
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "scan outstanding purchase", Err: err}
		}
		row := DebtSummaryRow{
			Purchase: *p,
			Urgency:  DeriveUrgency(p.DueDate, asOf, s.dueSoonWindow),
		}
		if p.DueDate != nil {
			days := DaysUntil(*p.DueDate, asOf)
			row.DaysUntilDue = &days
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *debtReportingService) GetDebtStats(ctx context.Context, asOf time.Time) (*DebtStats, error) {
	stats := &DebtStats{TotalOutstanding: decimal.Zero}
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(remaining_debt), 0),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE due_date IS NOT NULL AND due_date < $1)
		FROM purchases
		WHERE remaining_debt > 0`,
		asOf.Format("2006-01-02"),
	).Scan(&stats.TotalOutstanding, &stats.OpenCount, &stats.OverdueCount)
	if err != nil {
		return nil, &PersistenceError{Op: "aggregate debt stats", Err: err}
	}
	return stats, nil
}
