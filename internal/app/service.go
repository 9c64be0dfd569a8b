package app

import (
	"context"
)

// ApplicationService is the single interface all adapters (CLI, web) call.
// It decouples presentation from the ledger and owns input parsing that both
// adapters share (dates, enums). Implementations contain no display logic.
type ApplicationService interface {
	// CreatePurchase records goods received from a supplier: resolves the
	// supplier, persists header and lines, applies stock effects, and posts
	// to the finance journal when already received.
	CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResult, error)

	// GetPurchase returns one purchase with lines and payment history.
	GetPurchase(ctx context.Context, id int) (*PurchaseResult, error)

	// ListPurchases returns purchases matching the filter, newest first.
	ListPurchases(ctx context.Context, req ListPurchasesRequest) (*PurchaseListResult, error)

	// DeletePurchase hard-deletes a purchase, reversing its stock effects.
	// Refused while the purchase carries payments against an open debt.
	DeletePurchase(ctx context.Context, id int) error

	// RecordPayment appends a debt payment and returns the updated purchase.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error)

	// ListPayments returns a purchase's payment history, newest first.
	ListPayments(ctx context.Context, purchaseID int) (*PaymentListResult, error)

	// ListOutstanding returns open debts as of a date (empty = today) with
	// urgency classification and aggregate stats.
	ListOutstanding(ctx context.Context, asOf string) (*OutstandingResult, error)

	// ListSuppliers returns all active suppliers.
	ListSuppliers(ctx context.Context) (*SupplierListResult, error)

	// CreateSupplier creates an active supplier directly.
	CreateSupplier(ctx context.Context, name string) (*SupplierListResult, error)

	// DeactivateSupplier marks a supplier inactive.
	DeactivateSupplier(ctx context.Context, id int) error

	// ListStockItems returns active catalog items, optionally filtered by a
	// substring match on code or name.
	ListStockItems(ctx context.Context, query string) (*StockListResult, error)

	// CreateStockItem adds a catalog item with zero stock.
	CreateStockItem(ctx context.Context, req CreateStockItemRequest) (*StockListResult, error)

	// InterpretPurchase turns a free-text purchase note into a structured
	// draft for confirmation. Returns an error when no AI agent is configured.
	InterpretPurchase(ctx context.Context, text string) (*DraftResult, error)
}
