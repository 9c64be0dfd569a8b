package core_test

import (
	"testing"
	"time"

	"koperasi-ledger/internal/core"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestDerivePaymentStatus(t *testing.T) {
	cases := []struct {
		name  string
		paid  string
		total string
		want  core.PaymentStatus
	}{
		{"nothing paid", "0", "1000", core.PaymentStatusDebt},
		{"partially paid", "400", "1000", core.PaymentStatusInstallment},
		{"fully paid", "1000", "1000", core.PaymentStatusPaid},
		{"paid to the cent", "999.99", "1000.00", core.PaymentStatusInstallment},
		{"zero total", "0", "0", core.PaymentStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := core.DerivePaymentStatus(d(tc.paid), d(tc.total))
			if got != tc.want {
				t.Errorf("DerivePaymentStatus(%s, %s) = %s, want %s", tc.paid, tc.total, got, tc.want)
			}
		})
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	date := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	if got := core.FormatInvoiceNumber(date, 1); got != "PB-20260828-0001" {
		t.Errorf("got %q, want PB-20260828-0001", got)
	}
	if got := core.FormatInvoiceNumber(date, 12345); got != "PB-20260828-12345" {
		t.Errorf("got %q, want PB-20260828-12345", got)
	}
}

func TestDeriveUrgency(t *testing.T) {
	asOf := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	day := func(offset int) *time.Time {
		t := asOf.AddDate(0, 0, offset)
		return &t
	}

	cases := []struct {
		name string
		due  *time.Time
		want core.Urgency
	}{
		{"no due date", nil, core.UrgencyNormal},
		{"overdue yesterday", day(-1), core.UrgencyOverdue},
		{"due today", day(0), core.UrgencyDueSoon},
		{"due at window edge", day(7), core.UrgencyDueSoon},
		{"due past window", day(8), core.UrgencyNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := core.DeriveUrgency(tc.due, asOf, 7); got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDaysUntil_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 30, 0, 0, time.UTC)
	asOf := time.Date(2026, 8, 28, 23, 45, 0, 0, time.UTC)
	if got := core.DaysUntil(due, asOf); got != 4 {
		t.Errorf("DaysUntil = %d, want 4", got)
	}
	if got := core.DaysUntil(asOf, due); got != -4 {
		t.Errorf("DaysUntil reversed = %d, want -4", got)
	}
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []core.PaymentMethod{core.PaymentMethodCash, core.PaymentMethodBankTransfer, core.PaymentMethodGiro} {
		if !m.Valid() {
			t.Errorf("%s should be valid", m)
		}
	}
	if core.PaymentMethod("cheque").Valid() {
		t.Error("cheque should not be valid")
	}
	if core.PaymentMethod("").Valid() {
		t.Error("empty method should not be valid")
	}
}
