package core_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"koperasi-ledger/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE debt_payments, purchase_lines, purchases, invoice_sequences,
		               finance_entries, stock_items, suppliers RESTART IDENTITY CASCADE;

		INSERT INTO stock_items (code, name, unit, qty_on_hand, unit_cost, retail_price) VALUES
		('BRS-01', 'Beras Premium 5kg', 'sak', 20, 80000, 95000),
		('MNY-01', 'Minyak Goreng 2L', 'btl', 0, 0, 38000),
		('GLA-01', 'Gula Pasir 1kg', 'kg', 50, 14000, 17000);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newServices(pool *pgxpool.Pool) (core.PurchaseLedger, core.DebtPaymentJournal, core.SupplierDirectory, core.StockCatalog, core.LedgerPostingSink) {
	ledger := core.NewPurchaseLedger(pool)
	journal := core.NewDebtPaymentJournal(pool, ledger)
	suppliers := core.NewSupplierDirectory(pool)
	stock := core.NewStockCatalog(pool, nil)
	sink := core.NewFinanceEntrySink(pool)
	return ledger, journal, suppliers, stock, sink
}

func TestPurchase_CashFlow(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger, _, suppliers, stock, sink := newServices(pool)

	p, err := ledger.CreatePurchase(ctx, core.CreatePurchaseInput{
		SupplierName: "Toko Makmur",
		Date:         date("2026-08-28"),
		ShippingCost: d("20000"),
		Receiving:    core.ReceivingStatusReceived,
		Lines: []core.PurchaseLineInput{
			{ItemID: 1, Quantity: d("10"), UnitCost: d("85000")},
			{ItemID: 2, Quantity: d("24"), UnitCost: d("32000")},
		},
	}, suppliers, stock, sink)
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	// 10*85000 + 24*32000 + 20000 shipping
	if !p.TotalAmount.Equal(d("1638000")) {
		t.Errorf("total = %s, want 1638000", p.TotalAmount)
	}
	if p.PaymentStatus != core.PaymentStatusPaid {
		t.Errorf("status = %s, want paid", p.PaymentStatus)
	}
	if !p.RemainingDebt.IsZero() {
		t.Errorf("remaining = %s, want 0", p.RemainingDebt)
	}
	if !strings.HasPrefix(p.InvoiceNumber, "PB-20260828-") {
		t.Errorf("invoice = %q, want PB-20260828-<seq>", p.InvoiceNumber)
	}
	if len(p.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(p.Lines))
	}
	if p.SupplierID == nil {
		t.Error("expected supplier to be created and linked")
	}

	t.Run("StockIncreasedAndRecosted", func(t *testing.T) {
		it, err := stock.GetItem(ctx, 1)
		if err != nil {
			t.Fatalf("GetItem: %v", err)
		}
		if !it.QtyOnHand.Equal(d("30")) {
			t.Errorf("qty = %s, want 30", it.QtyOnHand)
		}
		if !it.UnitCost.Equal(d("85000")) {
			t.Errorf("unit cost = %s, want 85000 (last cost)", it.UnitCost)
		}
	})

	t.Run("FinanceEntryPosted", func(t *testing.T) {
		var direction, category, description string
		err := pool.QueryRow(ctx, `
			SELECT direction, category, description FROM finance_entries
			WHERE reference = 'koperasi_pembelian:' || $1::text`,
			p.ID,
		).Scan(&direction, &category, &description)
		if err != nil {
			t.Fatalf("finance entry not found: %v", err)
		}
		if direction != "Pengeluaran" {
			t.Errorf("direction = %q, want Pengeluaran", direction)
		}
		if category != core.FinanceCategoryPurchase {
			t.Errorf("category = %q, want %q", category, core.FinanceCategoryPurchase)
		}
		if !strings.Contains(description, "Toko Makmur") || !strings.Contains(description, p.InvoiceNumber) {
			t.Errorf("description %q missing supplier or invoice", description)
		}
	})
}

func TestPurchase_CreditFlow(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger, _, suppliers, stock, sink := newServices(pool)

	due := date("2026-09-27")
	p, err := ledger.CreatePurchase(ctx, core.CreatePurchaseInput{
		SupplierName: "CV Sumber Rejeki",
		Date:         date("2026-08-28"),
		Credit:       true,
		DueDate:      &due,
		Receiving:    core.ReceivingStatusReceived,
		Lines: []core.PurchaseLineInput{
			{ItemID: 3, Quantity: d("100"), UnitCost: d("13500")},
		},
	}, suppliers, stock, sink)
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	if p.PaymentStatus != core.PaymentStatusDebt {
		t.Errorf("status = %s, want debt", p.PaymentStatus)
	}
	if !p.TotalPaid.IsZero() {
		t.Errorf("paid = %s, want 0", p.TotalPaid)
	}
	if !p.RemainingDebt.Equal(d("1350000")) {
		t.Errorf("remaining = %s, want 1350000", p.RemainingDebt)
	}
	if p.DueDate == nil || p.DueDate.Format("2006-01-02") != "2026-09-27" {
		t.Errorf("due date = %v, want 2026-09-27", p.DueDate)
	}
}

func TestPurchase_InvoiceNumbersAreSequentialPerDay(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger, _, suppliers, stock, sink := newServices(pool)

	input := core.CreatePurchaseInput{
		Date:  date("2026-08-28"),
		Lines: []core.PurchaseLineInput{{ItemID: 3, Quantity: d("1"), UnitCost: d("14000")}},
	}
	first, err := ledger.CreatePurchase(ctx, input, suppliers, stock, sink)
	if err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	second, err := ledger.CreatePurchase(ctx, input, suppliers, stock, sink)
	if err != nil {
		t.Fatalf("second purchase: %v", err)
	}

	if first.InvoiceNumber != "PB-20260828-0001" {
		t.Errorf("first invoice = %q, want PB-20260828-0001", first.InvoiceNumber)
	}
	if second.InvoiceNumber != "PB-20260828-0002" {
		t.Errorf("second invoice = %q, want PB-20260828-0002", second.InvoiceNumber)
	}

	// A different day starts its own sequence.
	otherDay := input
	otherDay.Date = date("2026-08-29")
	third, err := ledger.CreatePurchase(ctx, otherDay, suppliers, stock, sink)
	if err != nil {
		t.Fatalf("third purchase: %v", err)
	}
	if third.InvoiceNumber != "PB-20260829-0001" {
		t.Errorf("third invoice = %q, want PB-20260829-0001", third.InvoiceNumber)
	}
}

func TestPurchase_DuplicateInvoiceNumber(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger, _, suppliers, stock, sink := newServices(pool)

	input := core.CreatePurchaseInput{
		InvoiceNumber: "INV-EXT-001",
		Date:          date("2026-08-28"),
		Lines:         []core.PurchaseLineInput{{ItemID: 3, Quantity: d("1"), UnitCost: d("14000")}},
	}
	if _, err := ledger.CreatePurchase(ctx, input, suppliers, stock, sink); err != nil {
		t.Fatalf("first purchase: %v", err)
	}

	_, err := ledger.CreatePurchase(ctx, input, suppliers, stock, sink)
	var conflictErr *core.ConcurrencyError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected ConcurrencyError for duplicate invoice, got %v", err)
	}

	// The failed attempt must not have touched stock.
	it, err := core.NewStockCatalog(pool, nil).GetItem(ctx, 3)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if !it.QtyOnHand.Equal(d("51")) {
		t.Errorf("qty = %s, want 51 (one successful purchase only)", it.QtyOnHand)
	}
}

func TestPurchase_Validation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger, _, suppliers, stock, sink := newServices(pool)

	cases := []struct {
		name  string
		input core.CreatePurchaseInput
	}{
		{"no lines", core.CreatePurchaseInput{Date: date("2026-08-28")}},
		{"zero quantity", core.CreatePurchaseInput{
			Date:  date("2026-08-28"),
			Lines: []core.PurchaseLineInput{{ItemID: 1, Quantity: d("0"), UnitCost: d("100")}},
		}},
		{"negative unit cost", core.CreatePurchaseInput{
			Date:  date("2026-08-28"),
			Lines: []core.PurchaseLineInput{{ItemID: 1, Quantity: d("1"), UnitCost: d("-1")}},
		}},
		{"negative shipping", core.CreatePurchaseInput{
			Date:         date("2026-08-28"),
			ShippingCost: d("-5"),
			Lines:        []core.PurchaseLineInput{{ItemID: 1, Quantity: d("1"), UnitCost: d("100")}},
		}},
		{"missing date", core.CreatePurchaseInput{
			Lines: []core.PurchaseLineInput{{ItemID: 1, Quantity: d("1"), UnitCost: d("100")}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.CreatePurchase(ctx, tc.input, suppliers, stock, sink)
			var validationErr *core.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	t.Run("unknown item", func(t *testing.T) {
		_, err := ledger.CreatePurchase(ctx, core.CreatePurchaseInput{
			Date:  date("2026-08-28"),
			Lines: []core.PurchaseLineInput{{ItemID: 999, Quantity: d("1"), UnitCost: d("100")}},
		}, suppliers, stock, sink)
		var notFoundErr *core.NotFoundError
		if !errors.As(err, &notFoundErr) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestPurchase_Delete(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger, journal, suppliers, stock, sink := newServices(pool)

	t.Run("ReversesStock", func(t *testing.T) {
		p, err := ledger.CreatePurchase(ctx, core.CreatePurchaseInput{
			Date:  date("2026-08-28"),
			Lines: []core.PurchaseLineInput{{ItemID: 1, Quantity: d("10"), UnitCost: d("85000")}},
		}, suppliers, stock, sink)
		if err != nil {
			t.Fatalf("CreatePurchase: %v", err)
		}

		if err := ledger.DeletePurchase(ctx, p.ID, stock); err != nil {
			t.Fatalf("DeletePurchase: %v", err)
		}

		it, err := stock.GetItem(ctx, 1)
		if err != nil {
			t.Fatalf("GetItem: %v", err)
		}
		if !it.QtyOnHand.Equal(d("20")) {
			t.Errorf("qty = %s, want 20 (back to seed)", it.QtyOnHand)
		}

		_, err = ledger.GetPurchase(ctx, p.ID)
		var notFoundErr *core.NotFoundError
		if !errors.As(err, &notFoundErr) {
			t.Errorf("expected NotFoundError after delete, got %v", err)
		}
	})

	t.Run("RefusedWhilePartiallyPaid", func(t *testing.T) {
		p, err := ledger.CreatePurchase(ctx, core.CreatePurchaseInput{
			Date:   date("2026-08-28"),
			Credit: true,
			Lines:  []core.PurchaseLineInput{{ItemID: 3, Quantity: d("10"), UnitCost: d("14000")}},
		}, suppliers, stock, sink)
		if err != nil {
			t.Fatalf("CreatePurchase: %v", err)
		}

		if _, _, err := journal.RecordPayment(ctx, core.RecordPaymentInput{
			PurchaseID: p.ID,
			Amount:     d("50000"),
			Method:     core.PaymentMethodCash,
		}); err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}

		err = ledger.DeletePurchase(ctx, p.ID, stock)
		var validationErr *core.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError for partially paid purchase, got %v", err)
		}
	})

	t.Run("AllowedOnceSettled", func(t *testing.T) {
		p, err := ledger.CreatePurchase(ctx, core.CreatePurchaseInput{
			Date:   date("2026-08-28"),
			Credit: true,
			Lines:  []core.PurchaseLineInput{{ItemID: 3, Quantity: d("2"), UnitCost: d("14000")}},
		}, suppliers, stock, sink)
		if err != nil {
			t.Fatalf("CreatePurchase: %v", err)
		}
		if _, _, err := journal.RecordPayment(ctx, core.RecordPaymentInput{
			PurchaseID: p.ID,
			Amount:     d("28000"),
			Method:     core.PaymentMethodCash,
		}); err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}

		if err := ledger.DeletePurchase(ctx, p.ID, stock); err != nil {
			t.Errorf("DeletePurchase of settled purchase: %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := ledger.DeletePurchase(ctx, 99999, stock)
		var notFoundErr *core.NotFoundError
		if !errors.As(err, &notFoundErr) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestPurchase_ListFilters(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger, _, suppliers, stock, sink := newServices(pool)

	mk := func(day string, credit bool) {
		t.Helper()
		_, err := ledger.CreatePurchase(ctx, core.CreatePurchaseInput{
			Date:   date(day),
			Credit: credit,
			Lines:  []core.PurchaseLineInput{{ItemID: 3, Quantity: d("1"), UnitCost: d("14000")}},
		}, suppliers, stock, sink)
		if err != nil {
			t.Fatalf("CreatePurchase %s: %v", day, err)
		}
	}
	mk("2026-08-01", false)
	mk("2026-08-15", true)
	mk("2026-08-28", true)

	t.Run("ByStatus", func(t *testing.T) {
		debts, err := ledger.ListPurchases(ctx, core.PurchaseFilter{PaymentStatus: core.PaymentStatusDebt})
		if err != nil {
			t.Fatalf("ListPurchases: %v", err)
		}
		if len(debts) != 2 {
			t.Errorf("expected 2 debt purchases, got %d", len(debts))
		}
	})

	t.Run("ByDateRange", func(t *testing.T) {
		got, err := ledger.ListPurchases(ctx, core.PurchaseFilter{
			From: date("2026-08-10"),
			To:   date("2026-08-20"),
		})
		if err != nil {
			t.Fatalf("ListPurchases: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 purchase in range, got %d", len(got))
		}
		if got[0].PurchaseDate.Format("2006-01-02") != "2026-08-15" {
			t.Errorf("got purchase dated %s", got[0].PurchaseDate.Format("2006-01-02"))
		}
	})

	t.Run("Unfiltered", func(t *testing.T) {
		all, err := ledger.ListPurchases(ctx, core.PurchaseFilter{})
		if err != nil {
			t.Fatalf("ListPurchases: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 purchases, got %d", len(all))
		}
	})
}
