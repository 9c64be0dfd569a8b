package app_test

import (
	"context"
	"errors"
	"testing"

	"koperasi-ledger/internal/app"
	"koperasi-ledger/internal/core"
)

// Input parsing happens before any service call, so a service wired with
// nils is enough to exercise the rejection paths.
func newParseOnlyService() app.ApplicationService {
	return app.NewAppService(nil, nil, nil, nil, nil, nil, nil)
}

func TestCreatePurchase_RejectsBadDates(t *testing.T) {
	svc := newParseOnlyService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  app.CreatePurchaseRequest
	}{
		{"bad date", app.CreatePurchaseRequest{Date: "28-08-2026"}},
		{"empty date", app.CreatePurchaseRequest{Date: ""}},
		{"bad due date", app.CreatePurchaseRequest{Date: "2026-08-28", DueDate: "soon"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePurchase(ctx, tc.req)
			var validationErr *core.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestListPurchases_RejectsUnknownStatus(t *testing.T) {
	svc := newParseOnlyService()

	_, err := svc.ListPurchases(context.Background(), app.ListPurchasesRequest{PaymentStatus: "open"})
	var validationErr *core.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestInterpretPurchase_RequiresAgent(t *testing.T) {
	svc := newParseOnlyService()

	_, err := svc.InterpretPurchase(context.Background(), "beli 10 sak beras")
	var validationErr *core.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError when no agent configured, got %v", err)
	}
}
