package app

import (
	"koperasi-ledger/internal/ai"
	"koperasi-ledger/internal/core"
)

// PurchaseResult is returned by purchase operations. Payments is populated
// for single-purchase reads, nil for lists.
type PurchaseResult struct {
	Purchase *core.Purchase
	Payments []core.DebtPayment
}

// PurchaseListResult is returned by ListPurchases.
type PurchaseListResult struct {
	Purchases []core.Purchase
}

// PaymentResult is returned by RecordPayment: the refreshed purchase plus the
// payment that was appended.
type PaymentResult struct {
	Purchase *core.Purchase
	Payment  *core.DebtPayment
}

// PaymentListResult is returned by ListPayments.
type PaymentListResult struct {
	Payments []core.DebtPayment
}

// OutstandingResult is returned by ListOutstanding.
type OutstandingResult struct {
	Rows  []core.DebtSummaryRow
	Stats *core.DebtStats
}

// SupplierListResult is returned by ListSuppliers.
type SupplierListResult struct {
	Suppliers []core.Supplier
}

// StockListResult is returned by ListStockItems.
type StockListResult struct {
	Items []core.StockItem
}

// DraftResult is returned by InterpretPurchase: an AI-proposed entry awaiting
// human confirmation.
type DraftResult struct {
	Draft *ai.PurchaseDraft
}
