package main

import (
	"testing"

	"koperasi-ledger/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSupplierLabel(t *testing.T) {
	name := "Toko Sinar Jaya"
	if got := supplierLabel(&core.Purchase{SupplierName: &name}); got != name {
		t.Errorf("supplierLabel = %q, want %q", got, name)
	}
	if got := supplierLabel(&core.Purchase{}); got != "-" {
		t.Errorf("supplierLabel without supplier = %q, want -", got)
	}
}

func TestParseLineFlag(t *testing.T) {
	line, err := parseLineFlag("3:10:14000")
	if err != nil {
		t.Fatalf("parseLineFlag: %v", err)
	}
	if line.ItemID != 3 || !line.Quantity.Equal(dec("10")) || !line.UnitCost.Equal(dec("14000")) {
		t.Errorf("parsed line = %+v", line)
	}

	for _, raw := range []string{"", "3", "3:10", "x:10:14000", "3:ten:14000", "3:10:much"} {
		if _, err := parseLineFlag(raw); err == nil {
			t.Errorf("parseLineFlag(%q): expected error", raw)
		}
	}
}
