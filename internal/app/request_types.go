package app

import "github.com/shopspring/decimal"

// CreatePurchaseRequest is the input for recording a supplier purchase.
// Dates are YYYY-MM-DD strings; Credit chooses the initial payment state
// (false = settled on entry, true = full debt).
type CreatePurchaseRequest struct {
	SupplierName  string
	InvoiceNumber string
	Date          string
	ShippingCost  decimal.Decimal
	Received      bool
	Credit        bool
	DueDate       string // optional
	Lines         []PurchaseLineRequest
}

// PurchaseLineRequest is a single line within a CreatePurchaseRequest.
type PurchaseLineRequest struct {
	ItemID   int
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// ListPurchasesRequest filters ListPurchases. Empty fields mean no filter.
type ListPurchasesRequest struct {
	PaymentStatus string
	From          string // YYYY-MM-DD
	To            string // YYYY-MM-DD
}

// RecordPaymentRequest is the input for repaying part of a purchase debt.
type RecordPaymentRequest struct {
	PurchaseID int
	Amount     decimal.Decimal
	Method     string
	Note       string
	PaidAt     string // optional YYYY-MM-DD, defaults to today
}

// CreateStockItemRequest is the input for adding a catalog item.
type CreateStockItemRequest struct {
	Code           string
	Name           string
	Unit           string
	RetailPrice    decimal.Decimal
	WholesalePrice decimal.Decimal
}
