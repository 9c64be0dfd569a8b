package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"koperasi-ledger/internal/app"
	"koperasi-ledger/internal/core"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var purchaseCmd = &cobra.Command{
	Use:   "purchase",
	Short: "Record and inspect supplier purchases",
}

var purchaseCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a purchase",
	Long: `Record goods received from a supplier. Lines are repeated
--line flags of the form item_id:quantity:unit_cost.`,
	Example: `  # Cash purchase, received, two lines
  koperasi purchase create --supplier "Toko Makmur" --date 2026-08-28 \
      --received --line 3:10:85000 --line 7:2:120000

  # Credit purchase due in 30 days
  koperasi purchase create --supplier "CV Sumber Rejeki" --date 2026-08-28 \
      --received --credit --due 2026-09-27 --line 3:50:84000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		supplier, _ := cmd.Flags().GetString("supplier")
		invoice, _ := cmd.Flags().GetString("invoice")
		date, _ := cmd.Flags().GetString("date")
		due, _ := cmd.Flags().GetString("due")
		shipping, _ := cmd.Flags().GetString("shipping")
		received, _ := cmd.Flags().GetBool("received")
		credit, _ := cmd.Flags().GetBool("credit")
		rawLines, _ := cmd.Flags().GetStringArray("line")

		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		req := app.CreatePurchaseRequest{
			SupplierName:  supplier,
			InvoiceNumber: invoice,
			Date:          date,
			Received:      received,
			Credit:        credit,
			DueDate:       due,
		}
		if shipping != "" {
			cost, err := decimal.NewFromString(shipping)
			if err != nil {
				return fmt.Errorf("invalid --shipping %q", shipping)
			}
			req.ShippingCost = cost
		}
		for _, raw := range rawLines {
			line, err := parseLineFlag(raw)
			if err != nil {
				return err
			}
			req.Lines = append(req.Lines, line)
		}

		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.CreatePurchase(cmd.Context(), req)
		if err != nil {
			return err
		}
		printPurchase(result.Purchase, nil)
		return nil
	},
}

var purchaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List purchases, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.ListPurchases(cmd.Context(), app.ListPurchasesRequest{
			PaymentStatus: status,
			From:          from,
			To:            to,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tINVOICE\tDATE\tSUPPLIER\tTOTAL\tPAID\tREMAINING\tSTATUS")
		for _, p := range result.Purchases {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.InvoiceNumber, p.PurchaseDate.Format("2006-01-02"),
				supplierLabel(&p), p.TotalAmount.StringFixed(2),
				p.TotalPaid.StringFixed(2), p.RemainingDebt.StringFixed(2),
				p.PaymentStatus)
		}
		return w.Flush()
	},
}

var purchaseGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a purchase with lines and payment history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid purchase id %q", args[0])
		}

		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.GetPurchase(cmd.Context(), id)
		if err != nil {
			return err
		}
		printPurchase(result.Purchase, result.Payments)
		return nil
	},
}

var purchaseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a purchase and reverse its stock effects",
	Long: `Delete a purchase outright. Refused while the purchase carries
payments against an open debt; correct such entries by settling or
deleting the payments' purchase first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid purchase id %q", args[0])
		}

		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := svc.DeletePurchase(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Purchase %d deleted.\n", id)
		return nil
	},
}

// parseLineFlag parses item_id:quantity:unit_cost.
func parseLineFlag(raw string) (app.PurchaseLineRequest, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return app.PurchaseLineRequest{}, fmt.Errorf("invalid --line %q: expected item_id:quantity:unit_cost", raw)
	}
	itemID, err := strconv.Atoi(parts[0])
	if err != nil {
		return app.PurchaseLineRequest{}, fmt.Errorf("invalid item id in --line %q", raw)
	}
	quantity, err := decimal.NewFromString(parts[1])
	if err != nil {
		return app.PurchaseLineRequest{}, fmt.Errorf("invalid quantity in --line %q", raw)
	}
	unitCost, err := decimal.NewFromString(parts[2])
	if err != nil {
		return app.PurchaseLineRequest{}, fmt.Errorf("invalid unit cost in --line %q", raw)
	}
	return app.PurchaseLineRequest{ItemID: itemID, Quantity: quantity, UnitCost: unitCost}, nil
}

func supplierLabel(p *core.Purchase) string {
	if p.SupplierName != nil {
		return *p.SupplierName
	}
	return "-"
}

func printPurchase(p *core.Purchase, payments []core.DebtPayment) {
	fmt.Printf("Purchase #%d  %s\n", p.ID, p.InvoiceNumber)
	fmt.Printf("  Date:      %s\n", p.PurchaseDate.Format("2006-01-02"))
	fmt.Printf("  Supplier:  %s\n", supplierLabel(p))
	fmt.Printf("  Total:     %s (shipping %s)\n", p.TotalAmount.StringFixed(2), p.ShippingCost.StringFixed(2))
	fmt.Printf("  Paid:      %s   Remaining: %s   Status: %s\n",
		p.TotalPaid.StringFixed(2), p.RemainingDebt.StringFixed(2), p.PaymentStatus)
	if p.DueDate != nil {
		fmt.Printf("  Due:       %s\n", p.DueDate.Format("2006-01-02"))
	}
	if len(p.Lines) > 0 {
		fmt.Println("  Lines:")
		for _, l := range p.Lines {
			fmt.Printf("    %s  %s x %s = %s\n",
				l.ItemCode, l.Quantity.String(), l.UnitCost.StringFixed(2), l.Subtotal.StringFixed(2))
		}
	}
	if len(payments) > 0 {
		fmt.Println("  Payments:")
		for _, pay := range payments {
			fmt.Printf("    %s  %s via %s (remaining %s)\n",
				pay.PaidAt.Format("2006-01-02"), pay.Amount.StringFixed(2),
				pay.Method, pay.RemainingAfter.StringFixed(2))
		}
	}
}

func init() {
	purchaseCreateCmd.Flags().String("supplier", "", "Supplier name; created on first use")
	purchaseCreateCmd.Flags().String("invoice", "", "Invoice number; generated when omitted")
	purchaseCreateCmd.Flags().String("date", "", "Purchase date YYYY-MM-DD (default today)")
	purchaseCreateCmd.Flags().String("due", "", "Debt due date YYYY-MM-DD")
	purchaseCreateCmd.Flags().String("shipping", "", "Shipping cost")
	purchaseCreateCmd.Flags().Bool("received", false, "Goods already received")
	purchaseCreateCmd.Flags().Bool("credit", false, "Book the full amount as debt")
	purchaseCreateCmd.Flags().StringArray("line", nil, "Purchase line item_id:quantity:unit_cost (repeatable)")

	purchaseListCmd.Flags().String("status", "", "Filter by payment status: paid, installment, debt")
	purchaseListCmd.Flags().String("from", "", "Earliest purchase date YYYY-MM-DD")
	purchaseListCmd.Flags().String("to", "", "Latest purchase date YYYY-MM-DD")

	purchaseCmd.AddCommand(purchaseCreateCmd, purchaseListCmd, purchaseGetCmd, purchaseDeleteCmd)
	rootCmd.AddCommand(purchaseCmd)
}
