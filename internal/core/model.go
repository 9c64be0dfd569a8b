package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the derived repayment state of a purchase. It is a pure
// function of (total_paid, total_amount) and is never set independently.
type PaymentStatus string

const (
	// PaymentStatusDebt means nothing has been paid yet.
	PaymentStatusDebt PaymentStatus = "debt"
	// PaymentStatusInstallment means partially paid: 0 < total_paid < total_amount.
	PaymentStatusInstallment PaymentStatus = "installment"
	// PaymentStatusPaid means fully settled: remaining_debt == 0.
	PaymentStatusPaid PaymentStatus = "paid"
)

// ReceivingStatus tracks whether the goods on a purchase have arrived.
type ReceivingStatus string

const (
	ReceivingStatusPending  ReceivingStatus = "pending"
	ReceivingStatusReceived ReceivingStatus = "received"
)

// PaymentMethod is how a debt payment was made.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodGiro         PaymentMethod = "giro"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodGiro:
		return true
	}
	return false
}

// Urgency classifies an outstanding debt relative to its due date.
type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyDueSoon Urgency = "due_soon"
	UrgencyNormal  Urgency = "normal"
)

// Supplier is a row in the supplier directory. Suppliers are created lazily
// on first purchase and deactivated rather than deleted.
type Supplier struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// StockItem is a catalog item. Quantity and unit cost are mutated only as a
// side effect of committed purchases; unit_cost holds the last purchase cost.
type StockItem struct {
	ID             int             `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	QtyOnHand      decimal.Decimal `json:"qty_on_hand"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Purchase is a single supplier delivery event: header totals plus derived
// repayment state. Only total_paid / remaining_debt / payment_status change
// after creation, driven exclusively by appended debt payments.
type Purchase struct {
	ID              int             `json:"id"`
	SupplierID      *int            `json:"supplier_id"`
	SupplierName    *string         `json:"supplier_name"`
	InvoiceNumber   string          `json:"invoice_number"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	RemainingDebt   decimal.Decimal `json:"remaining_debt"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	ReceivingStatus ReceivingStatus `json:"receiving_status"`
	DueDate         *time.Time      `json:"due_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Lines           []PurchaseLine  `json:"lines,omitempty"`
}

// PurchaseLine is one item on a purchase. Immutable once the purchase is
// committed; corrections go through delete-and-re-enter, never in-place edit.
type PurchaseLine struct {
	ID         int             `json:"id"`
	PurchaseID int             `json:"purchase_id"`
	ItemID     int             `json:"item_id"`
	ItemCode   string          `json:"item_code"`
	ItemName   string          `json:"item_name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// DebtPayment is one append-only repayment event against a purchase.
// RemainingAfter is the balance snapshot taken inside the payment
// transaction — an audit fact, never recomputed later.
type DebtPayment struct {
	ID             int             `json:"id"`
	PurchaseID     int             `json:"purchase_id"`
	PaidAt         time.Time       `json:"paid_at"`
	Amount         decimal.Decimal `json:"amount"`
	Method         PaymentMethod   `json:"method"`
	RemainingAfter decimal.Decimal `json:"remaining_after"`
	Note           *string         `json:"note"`
	CreatedAt      time.Time       `json:"created_at"`
}

// DebtSummaryRow is one row of the outstanding-debt projection.
type DebtSummaryRow struct {
	Purchase     Purchase `json:"purchase"`
	DaysUntilDue *int     `json:"days_until_due"` // nil when the purchase has no due date
	Urgency      Urgency  `json:"urgency"`
}

// DebtStats aggregates the outstanding-debt projection for dashboards.
type DebtStats struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	OpenCount        int             `json:"open_count"`
	OverdueCount     int             `json:"overdue_count"`
}

// DerivePaymentStatus returns the payment status implied by the paid and
// total amounts: debt when nothing is paid, paid when fully settled,
// installment in between.
func DerivePaymentStatus(totalPaid, totalAmount decimal.Decimal) PaymentStatus {
	switch {
	case totalPaid.GreaterThanOrEqual(totalAmount):
		return PaymentStatusPaid
	case totalPaid.IsZero():
		return PaymentStatusDebt
	default:
		return PaymentStatusInstallment
	}
}

// FormatInvoiceNumber renders the generated invoice number for a purchase
// date and daily sequence value: PB-20260828-0001.
func FormatInvoiceNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("PB-%s-%04d", date.Format("20060102"), seq)
}

// DeriveUrgency classifies a due date against asOf: overdue when past,
// due_soon within window days (inclusive, so a debt due today is due_soon),
// normal otherwise or when there is no due date.
func DeriveUrgency(dueDate *time.Time, asOf time.Time, window int) Urgency {
	if dueDate == nil {
		return UrgencyNormal
	}
	days := DaysUntil(*dueDate, asOf)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days <= window:
		return UrgencyDueSoon
	default:
		return UrgencyNormal
	}
}

// DaysUntil returns whole calendar days from asOf to due; negative when due
// is in the past. Both values are truncated to dates first.
func DaysUntil(due, asOf time.Time) int {
	d := truncateToDate(due)
	a := truncateToDate(asOf)
	return int(d.Sub(a).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
