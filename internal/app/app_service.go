package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"koperasi-ledger/internal/ai"
	"koperasi-ledger/internal/core"
)

type appService struct {
	ledger    core.PurchaseLedger
	journal   core.DebtPaymentJournal
	suppliers core.SupplierDirectory
	stock     core.StockCatalog
	debts     core.DebtReportingService
	sink      core.LedgerPostingSink
	agent     ai.AgentService // nil when OPENAI_API_KEY is not configured
}

// NewAppService wires the core services into the ApplicationService facade.
// agent may be nil; InterpretPurchase then reports the feature as disabled.
func NewAppService(ledger core.PurchaseLedger, journal core.DebtPaymentJournal,
	suppliers core.SupplierDirectory, stock core.StockCatalog, debts core.DebtReportingService,
	sink core.LedgerPostingSink, agent ai.AgentService) ApplicationService {
	return &appService{
		ledger:    ledger,
		journal:   journal,
		suppliers: suppliers,
		stock:     stock,
		debts:     debts,
		sink:      sink,
		agent:     agent,
	}
}

func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &core.ValidationError{
			Msg: fmt.Sprintf("invalid %s %q: expected YYYY-MM-DD", field, value),
		}
	}
	return t, nil
}

func (s *appService) CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResult, error) {
	date, err := parseDate(req.Date, "purchase date")
	if err != nil {
		return nil, err
	}

	input := core.CreatePurchaseInput{
		SupplierName:  strings.TrimSpace(req.SupplierName),
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		Date:          date,
		ShippingCost:  req.ShippingCost,
		Credit:        req.Credit,
		Receiving:     core.ReceivingStatusPending,
	}
	if req.Received {
		input.Receiving = core.ReceivingStatusReceived
	}
	if req.DueDate != "" {
		due, err := parseDate(req.DueDate, "due date")
		if err != nil {
			return nil, err
		}
		input.DueDate = &due
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, core.PurchaseLineInput{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			UnitCost: line.UnitCost,
		})
	}

	purchase, err := s.ledger.CreatePurchase(ctx, input, s.suppliers, s.stock, s.sink)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Purchase: purchase}, nil
}

func (s *appService) GetPurchase(ctx context.Context, id int) (*PurchaseResult, error) {
	purchase, err := s.ledger.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.journal.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Purchase: purchase, Payments: payments}, nil
}

func (s *appService) ListPurchases(ctx context.Context, req ListPurchasesRequest) (*PurchaseListResult, error) {
	filter := core.PurchaseFilter{}
	if req.PaymentStatus != "" {
		status := core.PaymentStatus(req.PaymentStatus)
		switch status {
		case core.PaymentStatusPaid, core.PaymentStatusInstallment, core.PaymentStatusDebt:
			filter.PaymentStatus = status
		default:
			return nil, &core.ValidationError{Msg: fmt.Sprintf("unknown payment status %q", req.PaymentStatus)}
		}
	}
	if req.From != "" {
		from, err := parseDate(req.From, "from date")
		if err != nil {
			return nil, err
		}
		filter.From = from
	}
	if req.To != "" {
		to, err := parseDate(req.To, "to date")
		if err != nil {
			return nil, err
		}
		filter.To = to
	}

	purchases, err := s.ledger.ListPurchases(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &PurchaseListResult{Purchases: purchases}, nil
}

func (s *appService) DeletePurchase(ctx context.Context, id int) error {
	return s.ledger.DeletePurchase(ctx, id, s.stock)
}

func (s *appService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	input := core.RecordPaymentInput{
		PurchaseID: req.PurchaseID,
		Amount:     req.Amount,
		Method:     core.PaymentMethod(req.Method),
		Note:       strings.TrimSpace(req.Note),
	}
	if req.PaidAt != "" {
		paidAt, err := parseDate(req.PaidAt, "payment date")
		if err != nil {
			return nil, err
		}
		input.PaidAt = paidAt
	}

	purchase, payment, err := s.journal.RecordPayment(ctx, input)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Purchase: purchase, Payment: payment}, nil
}

func (s *appService) ListPayments(ctx context.Context, purchaseID int) (*PaymentListResult, error) {
	payments, err := s.journal.ListPayments(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	return &PaymentListResult{Payments: payments}, nil
}

func (s *appService) ListOutstanding(ctx context.Context, asOf string) (*OutstandingResult, error) {
	day := time.Now()
	if asOf != "" {
		parsed, err := parseDate(asOf, "as-of date")
		if err != nil {
			return nil, err
		}
		day = parsed
	}

	rows, err := s.debts.ListOutstanding(ctx, day)
	if err != nil {
		return nil, err
	}
	stats, err := s.debts.GetDebtStats(ctx, day)
	if err != nil {
		return nil, err
	}
	return &OutstandingResult{Rows: rows, Stats: stats}, nil
}

func (s *appService) ListSuppliers(ctx context.Context) (*SupplierListResult, error) {
	suppliers, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{Suppliers: suppliers}, nil
}

func (s *appService) CreateSupplier(ctx context.Context, name string) (*SupplierListResult, error) {
	supplier, err := s.suppliers.CreateSupplier(ctx, name)
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{Suppliers: []core.Supplier{*supplier}}, nil
}

func (s *appService) DeactivateSupplier(ctx context.Context, id int) error {
	return s.suppliers.DeactivateSupplier(ctx, id)
}

func (s *appService) ListStockItems(ctx context.Context, query string) (*StockListResult, error) {
	items, err := s.stock.ListItems(ctx, query)
	if err != nil {
		return nil, err
	}
	return &StockListResult{Items: items}, nil
}

func (s *appService) CreateStockItem(ctx context.Context, req CreateStockItemRequest) (*StockListResult, error) {
	item, err := s.stock.CreateItem(ctx, core.StockItemInput{
		Code:           req.Code,
		Name:           req.Name,
		Unit:           req.Unit,
		RetailPrice:    req.RetailPrice,
		WholesalePrice: req.WholesalePrice,
	})
	if err != nil {
		return nil, err
	}
	return &StockListResult{Items: []core.StockItem{*item}}, nil
}

func (s *appService) InterpretPurchase(ctx context.Context, text string) (*DraftResult, error) {
	if s.agent == nil {
		return nil, &core.ValidationError{Msg: "AI purchase entry is not configured (OPENAI_API_KEY missing)"}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &core.ValidationError{Msg: "purchase note must not be empty"}
	}

	items, err := s.stock.ListItems(ctx, "")
	if err != nil {
		return nil, err
	}
	var catalog strings.Builder
	for _, it := range items {
		fmt.Fprintf(&catalog, "%s  %s (unit %s, last cost %s)\n",
			it.Code, it.Name, it.Unit, it.UnitCost.StringFixed(2))
	}

	draft, err := s.agent.InterpretPurchase(ctx, text, catalog.String())
	if err != nil {
		return nil, err
	}
	return &DraftResult{Draft: draft}, nil
}
