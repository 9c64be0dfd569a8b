package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PurchaseLineInput holds the fields required to create one purchase line.
type PurchaseLineInput struct {
	ItemID   int
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// CreatePurchaseInput is the input for recording goods received from a
// supplier. Credit is explicit: false settles the purchase in full on entry,
// true books the whole amount as debt to be repaid through DebtPaymentJournal.
type CreatePurchaseInput struct {
	SupplierName  string // optional; blank keeps supplier_id null
	InvoiceNumber string // optional; generated as PB-<YYYYMMDD>-<seq> when blank
	Date          time.Time
	ShippingCost  decimal.Decimal
	Receiving     ReceivingStatus // defaults to pending
	Credit        bool
	DueDate       *time.Time
	Lines         []PurchaseLineInput
}

// PurchaseFilter narrows ListPurchases. Zero values mean "no filter".
type PurchaseFilter struct {
	PaymentStatus PaymentStatus
	From          time.Time
	To            time.Time
}

// PurchaseLedger records purchases, applies their stock and cost effects, and
// owns the purchase rows that DebtPaymentJournal repays against.
type PurchaseLedger interface {
	// CreatePurchase validates input, resolves the supplier, persists the
	// header and lines, and applies stock deltas — all in one transaction.
	// When the purchase is already received and has a positive total, a
	// best-effort posting goes to the sink after commit; its failure is
	// logged, never propagated.
	CreatePurchase(ctx context.Context, input CreatePurchaseInput,
		suppliers SupplierDirectory, stock StockCatalog, sink LedgerPostingSink) (*Purchase, error)

	// GetPurchase returns a purchase with its lines.
	GetPurchase(ctx context.Context, id int) (*Purchase, error)

	// ListPurchases returns purchases matching the filter, newest first.
	ListPurchases(ctx context.Context, filter PurchaseFilter) ([]Purchase, error)

	// DeletePurchase hard-deletes a purchase, cascading to its lines and
	// payments and reversing its stock increments in the same transaction.
	// Refused while the purchase is partially paid — the payment audit trail
	// of an open debt must not disappear.
	DeletePurchase(ctx context.Context, id int, stock StockCatalog) error
}

type purchaseLedger struct {
	pool *pgxpool.Pool
}

// NewPurchaseLedger constructs a PurchaseLedger backed by PostgreSQL.
func NewPurchaseLedger(pool *pgxpool.Pool) PurchaseLedger {
	return &purchaseLedger{pool: pool}
}

// FinanceCategoryPurchase is the journal category received purchases post
// under, matching the cooperative's bookkeeping conventions.
const (
	FinanceCategoryPurchase    = "Pembelian Barang"
	financeSubcategoryPurchase = "Kulakan"
	financeDirectionOut        = "Pengeluaran"
)

func (l *purchaseLedger) CreatePurchase(ctx context.Context, input CreatePurchaseInput,
	suppliers SupplierDirectory, stock StockCatalog, sink LedgerPostingSink) (*Purchase, error) {

	if err := validateCreatePurchase(&input); err != nil {
		return nil, err
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "begin purchase", Err: err}
	}
	defer tx.Rollback(ctx)

	supplierID, err := suppliers.ResolveTx(ctx, tx, input.SupplierName)
	if err != nil {
		return nil, err
	}

	invoiceNumber := input.InvoiceNumber
	if invoiceNumber == "" {
		invoiceNumber, err = nextInvoiceNumber(ctx, tx, input.Date)
		if err != nil {
			return nil, err
		}
	}

	totalAmount := input.ShippingCost
	for _, line := range input.Lines {
		totalAmount = totalAmount.Add(line.Quantity.Mul(line.UnitCost))
	}

	totalPaid := totalAmount
	if input.Credit {
		totalPaid = decimal.Zero
	}
	remainingDebt := totalAmount.Sub(totalPaid)
	status := DerivePaymentStatus(totalPaid, totalAmount)

	var supplierName *string
	if input.SupplierName != "" {
		supplierName = &input.SupplierName
	}
	var dueDate *string
	if input.DueDate != nil {
		s := input.DueDate.Format("2006-01-02")
		dueDate = &s
	}

	var purchaseID int
	err = tx.QueryRow(ctx, `
		INSERT INTO purchases (supplier_id, supplier_name, invoice_number, purchase_date,
		                       shipping_cost, total_amount, total_paid, remaining_debt,
		                       payment_status, receiving_status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		supplierID, supplierName, invoiceNumber, input.Date.Format("2006-01-02"),
		input.ShippingCost, totalAmount, totalPaid, remainingDebt,
		string(status), string(input.Receiving), dueDate,
	).Scan(&purchaseID)
	if err != nil {
		// A duplicate invoice number (caller-supplied or a lost race on a
		// generated one) surfaces here as a unique violation.
		return nil, classifyPgError(fmt.Sprintf("insert purchase %s", invoiceNumber), err)
	}

	for i, line := range input.Lines {
		// Locking the item first also turns an unknown item id into a
		// NotFoundError before the line insert can trip its FK.
		unitCost := line.UnitCost
		if err := stock.ApplyStockDeltaTx(ctx, tx, line.ItemID, line.Quantity, &unitCost); err != nil {
			return nil, err
		}

		subtotal := line.Quantity.Mul(line.UnitCost)
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_lines (purchase_id, item_id, quantity, unit_cost, subtotal)
			VALUES ($1, $2, $3, $4, $5)`,
			purchaseID, line.ItemID, line.Quantity, line.UnitCost, subtotal,
		); err != nil {
			return nil, classifyPgError(fmt.Sprintf("insert purchase line %d", i+1), err)
		}
	}

	// Header, lines, and stock land together or not at all.
	if err := tx.Commit(ctx); err != nil {
		return nil, classifyPgError("commit purchase", err)
	}

	purchase, err := l.GetPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	if input.Receiving == ReceivingStatusReceived && totalAmount.IsPositive() {
		l.postToSink(ctx, sink, purchase)
	}
	return purchase, nil
}

// postToSink sends a best-effort posting for a received purchase. The
// purchase transaction has already committed; a sink failure is logged as a
// warning and swallowed.
func (l *purchaseLedger) postToSink(ctx context.Context, sink LedgerPostingSink, p *Purchase) {
	if sink == nil {
		return
	}
	supplier := "Supplier"
	if p.SupplierName != nil {
		supplier = *p.SupplierName
	}
	posting := FinancePosting{
		Date:        p.PurchaseDate,
		Direction:   financeDirectionOut,
		Category:    FinanceCategoryPurchase,
		Subcategory: financeSubcategoryPurchase,
		Amount:      p.TotalAmount,
		Description: fmt.Sprintf("Pembelian dari %s - %s", supplier, p.InvoiceNumber),
		Reference:   fmt.Sprintf("koperasi_pembelian:%d", p.ID),
	}
	if err := sink.Post(ctx, posting); err != nil {
		log.Warn().Err(err).
			Int("purchase_id", p.ID).
			Str("invoice_number", p.InvoiceNumber).
			Msg("finance posting failed; purchase is committed, journal entry skipped")
	}
}

func validateCreatePurchase(input *CreatePurchaseInput) error {
	if input.Date.IsZero() {
		return validationErrorf("purchase date is required")
	}
	if input.ShippingCost.IsNegative() {
		return validationErrorf("shipping cost must not be negative")
	}
	if len(input.Lines) == 0 {
		return validationErrorf("purchase must have at least one line")
	}
	for i, line := range input.Lines {
		if !line.Quantity.IsPositive() {
			return validationErrorf("line %d: quantity must be positive", i+1)
		}
		if line.UnitCost.IsNegative() {
			return validationErrorf("line %d: unit cost must not be negative", i+1)
		}
	}
	switch input.Receiving {
	case "":
		input.Receiving = ReceivingStatusPending
	case ReceivingStatusPending, ReceivingStatusReceived:
	default:
		return validationErrorf("unknown receiving status %q", input.Receiving)
	}
	return nil
}

// nextInvoiceNumber assigns the next daily sequence number via an upsert on
// invoice_sequences. The ON CONFLICT increment is atomic, so concurrent
// purchases on the same day each get a distinct sequence without a retry loop.
func nextInvoiceNumber(ctx context.Context, tx pgx.Tx, day time.Time) (string, error) {
	var seq int64
	err := tx.QueryRow(ctx, `
		INSERT INTO invoice_sequences (invoice_date, last_number)
		VALUES ($1, 1)
		ON CONFLICT (invoice_date)
		DO UPDATE SET last_number = invoice_sequences.last_number + 1
		RETURNING last_number`,
		day.Format("2006-01-02"),
	).Scan(&seq)
	if err != nil {
		return "", classifyPgError("generate invoice number", err)
	}
	return FormatInvoiceNumber(day, seq), nil
}

const purchaseColumns = `p.id, p.supplier_id, p.supplier_name, p.invoice_number,
       p.purchase_date, p.shipping_cost, p.total_amount, p.total_paid,
       p.remaining_debt, p.payment_status, p.receiving_status, p.due_date,
       p.created_at, p.updated_at`

func scanPurchase(row pgx.Row) (*Purchase, error) {
	p := &Purchase{}
	var status, receiving string
	err := row.Scan(
		&p.ID, &p.SupplierID, &p.SupplierName, &p.InvoiceNumber,
		&p.PurchaseDate, &p.ShippingCost, &p.TotalAmount, &p.TotalPaid,
		&p.RemainingDebt, &status, &receiving, &p.DueDate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.PaymentStatus = PaymentStatus(status)
	p.ReceivingStatus = ReceivingStatus(receiving)
	return p, nil
}

func (l *purchaseLedger) GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	p, err := scanPurchase(l.pool.QueryRow(ctx,
		"SELECT "+purchaseColumns+" FROM purchases p WHERE p.id = $1", id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "purchase", ID: id}
		}
		return nil, &PersistenceError{Op: fmt.Sprintf("get purchase %d", id), Err: err}
	}

	lines, err := l.fetchLines(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Lines = lines
	return p, nil
}

func (l *purchaseLedger) ListPurchases(ctx context.Context, filter PurchaseFilter) ([]Purchase, error) {
	query := "SELECT " + purchaseColumns + " FROM purchases p WHERE true"
	var args []any
	if filter.PaymentStatus != "" {
		args = append(args, string(filter.PaymentStatus))
		query += fmt.Sprintf(" AND p.payment_status = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From.Format("2006-01-02"))
		query += fmt.Sprintf(" AND p.purchase_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To.Format("2006-01-02"))
		query += fmt.Sprintf(" AND p.purchase_date <= $%d", len(args))
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "list purchases", Err: err}
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "scan purchase", Err: err}
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

func (l *purchaseLedger) fetchLines(ctx context.Context, purchaseID int) ([]PurchaseLine, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT pl.id, pl.purchase_id, pl.item_id, si.code, si.name,
		       pl.quantity, pl.unit_cost, pl.subtotal
		FROM purchase_lines pl
		JOIN stock_items si ON si.id = pl.item_id
		WHERE pl.purchase_id = $1
		ORDER BY pl.id`,
		purchaseID,
	)
	if err != nil {
		return nil, &PersistenceError{Op: fmt.Sprintf("fetch lines for purchase %d", purchaseID), Err: err}
	}
	defer rows.Close()

	var lines []PurchaseLine
	for rows.Next() {
		var ln PurchaseLine
		if err := rows.Scan(
			&ln.ID, &ln.PurchaseID, &ln.ItemID, &ln.ItemCode, &ln.ItemName,
			&ln.Quantity, &ln.UnitCost, &ln.Subtotal,
		); err != nil {
			return nil, &PersistenceError{Op: "scan purchase line", Err: err}
		}
		lines = append(lines, ln)
	}
	return lines, rows.Err()
}

func (l *purchaseLedger) DeletePurchase(ctx context.Context, id int, stock StockCatalog) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return &PersistenceError{Op: "begin purchase delete", Err: err}
	}
	defer tx.Rollback(ctx)

	var remaining decimal.Decimal
	var paymentCount int
	err = tx.QueryRow(ctx, `
		SELECT p.remaining_debt,
		       (SELECT COUNT(*) FROM debt_payments dp WHERE dp.purchase_id = p.id)
		FROM purchases p
		WHERE p.id = $1
		FOR UPDATE OF p`,
		id,
	).Scan(&remaining, &paymentCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Entity: "purchase", ID: id}
		}
		return classifyPgError(fmt.Sprintf("lock purchase %d", id), err)
	}

	if paymentCount > 0 && remaining.IsPositive() {
		return validationErrorf("purchase %d has payments against an open debt and cannot be deleted", id)
	}

	// Reverse the stock effects before the rows disappear. The original
	// system skipped this and left stock silently inflated after a delete.
	rows, err := tx.Query(ctx,
		"SELECT item_id, quantity FROM purchase_lines WHERE purchase_id = $1", id,
	)
	if err != nil {
		return classifyPgError(fmt.Sprintf("fetch lines of purchase %d", id), err)
	}
	type lineDelta struct {
		itemID int
		qty    decimal.Decimal
	}
	var deltas []lineDelta
	for rows.Next() {
		var d lineDelta
		if err := rows.Scan(&d.itemID, &d.qty); err != nil {
			rows.Close()
			return &PersistenceError{Op: "scan purchase line", Err: err}
		}
		deltas = append(deltas, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return &PersistenceError{Op: "iterate purchase lines", Err: err}
	}

	for _, d := range deltas {
		if err := stock.ApplyStockDeltaTx(ctx, tx, d.itemID, d.qty.Neg(), nil); err != nil {
			return err
		}
	}

	// Lines and payments cascade.
	if _, err := tx.Exec(ctx, "DELETE FROM purchases WHERE id = $1", id); err != nil {
		return classifyPgError(fmt.Sprintf("delete purchase %d", id), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyPgError("commit purchase delete", err)
	}
	return nil
}
