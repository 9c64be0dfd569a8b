package core_test

import (
	"context"
	"testing"
	"time"

	"koperasi-ledger/internal/core"
)

func TestDebtReporting_Outstanding(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger, journal, suppliers, stock, sink := newServices(pool)
	reporting := core.NewDebtReportingService(pool, 7)

	asOf := date("2026-08-28")
	mk := func(supplier string, dueOffsetDays *int, amount string) *core.Purchase {
		t.Helper()
		input := core.CreatePurchaseInput{
			SupplierName: supplier,
			Date:         date("2026-08-01"),
			Credit:       true,
			Lines:        []core.PurchaseLineInput{{ItemID: 3, Quantity: d("1"), UnitCost: d(amount)}},
		}
		if dueOffsetDays != nil {
			due := asOf.AddDate(0, 0, *dueOffsetDays)
			input.DueDate = &due
		}
		p, err := ledger.CreatePurchase(ctx, input, suppliers, stock, sink)
		if err != nil {
			t.Fatalf("CreatePurchase: %v", err)
		}
		return p
	}
	offset := func(n int) *int { return &n }

	overdue := mk("Toko A", offset(-3), "100000")
	dueSoon := mk("Toko B", offset(2), "200000")
	normal := mk("Toko C", offset(30), "300000")
	undated := mk("Toko D", nil, "400000")

	// A settled purchase must not appear at all.
	settled := mk("Toko E", offset(1), "50000")
	if _, _, err := journal.RecordPayment(ctx, core.RecordPaymentInput{
		PurchaseID: settled.ID, Amount: d("50000"), Method: core.PaymentMethodCash,
	}); err != nil {
		t.Fatalf("settle purchase: %v", err)
	}

	rows, err := reporting.ListOutstanding(ctx, asOf)
	if err != nil {
		t.Fatalf("ListOutstanding: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 outstanding rows, got %d", len(rows))
	}

	t.Run("OrderedByDueDateUndatedLast", func(t *testing.T) {
		wantOrder := []int{overdue.ID, dueSoon.ID, normal.ID, undated.ID}
		for i, want := range wantOrder {
			if rows[i].Purchase.ID != want {
				t.Errorf("row %d = purchase %d, want %d", i, rows[i].Purchase.ID, want)
			}
		}
	})

	t.Run("UrgencyAndDays", func(t *testing.T) {
		byID := map[int]core.DebtSummaryRow{}
		for _, r := range rows {
			byID[r.Purchase.ID] = r
		}

		if r := byID[overdue.ID]; r.Urgency != core.UrgencyOverdue || r.DaysUntilDue == nil || *r.DaysUntilDue != -3 {
			t.Errorf("overdue row: urgency=%s days=%v", r.Urgency, r.DaysUntilDue)
		}
		if r := byID[dueSoon.ID]; r.Urgency != core.UrgencyDueSoon || r.DaysUntilDue == nil || *r.DaysUntilDue != 2 {
			t.Errorf("due_soon row: urgency=%s days=%v", r.Urgency, r.DaysUntilDue)
		}
		if r := byID[normal.ID]; r.Urgency != core.UrgencyNormal {
			t.Errorf("normal row: urgency=%s", r.Urgency)
		}
		if r := byID[undated.ID]; r.Urgency != core.UrgencyNormal || r.DaysUntilDue != nil {
			t.Errorf("undated row: urgency=%s days=%v", r.Urgency, r.DaysUntilDue)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		stats, err := reporting.GetDebtStats(ctx, asOf)
		if err != nil {
			t.Fatalf("GetDebtStats: %v", err)
		}
		if !stats.TotalOutstanding.Equal(d("1000000")) {
			t.Errorf("total = %s, want 1000000", stats.TotalOutstanding)
		}
		if stats.OpenCount != 4 {
			t.Errorf("open count = %d, want 4", stats.OpenCount)
		}
		if stats.OverdueCount != 1 {
			t.Errorf("overdue count = %d, want 1", stats.OverdueCount)
		}
	})
}

func TestDebtReporting_PartialPaymentStaysListed(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger, journal, suppliers, stock, sink := newServices(pool)
	reporting := core.NewDebtReportingService(pool, 7)

	p, err := ledger.CreatePurchase(ctx, core.CreatePurchaseInput{
		Date:   date("2026-08-01"),
		Credit: true,
		Lines:  []core.PurchaseLineInput{{ItemID: 3, Quantity: d("10"), UnitCost: d("14000")}},
	}, suppliers, stock, sink)
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if _, _, err := journal.RecordPayment(ctx, core.RecordPaymentInput{
		PurchaseID: p.ID, Amount: d("40000"), Method: core.PaymentMethodCash,
	}); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	rows, err := reporting.ListOutstanding(ctx, time.Now())
	if err != nil {
		t.Fatalf("ListOutstanding: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 outstanding row, got %d", len(rows))
	}
	if !rows[0].Purchase.RemainingDebt.Equal(d("100000")) {
		t.Errorf("remaining = %s, want 100000", rows[0].Purchase.RemainingDebt)
	}
	if rows[0].Purchase.PaymentStatus != core.PaymentStatusInstallment {
		t.Errorf("status = %s, want installment", rows[0].Purchase.PaymentStatus)
	}
}
