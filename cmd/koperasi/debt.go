package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"koperasi-ledger/internal/app"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var payCmd = &cobra.Command{
	Use:   "pay <purchase-id> <amount>",
	Short: "Record an installment payment against a purchase debt",
	Example: `  koperasi pay 42 500000 --method cash
  koperasi pay 42 250000 --method bank_transfer --note "transfer BCA" --date 2026-08-28`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid purchase id %q", args[0])
		}
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		method, _ := cmd.Flags().GetString("method")
		note, _ := cmd.Flags().GetString("note")
		date, _ := cmd.Flags().GetString("date")

		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.RecordPayment(cmd.Context(), app.RecordPaymentRequest{
			PurchaseID: id,
			Amount:     amount,
			Method:     method,
			Note:       note,
			PaidAt:     date,
		})
		if err != nil {
			return err
		}

		p := result.Purchase
		fmt.Printf("Paid %s on purchase %d. Remaining: %s (%s)\n",
			amount.StringFixed(2), p.ID, p.RemainingDebt.StringFixed(2), p.PaymentStatus)
		return nil
	},
}

var paymentsCmd = &cobra.Command{
	Use:   "payments <purchase-id>",
	Short: "Show a purchase's payment history, newest first",
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

		result, err := svc.ListPayments(cmd.Context(), id)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tAMOUNT\tMETHOD\tREMAINING AFTER\tNOTE")
		for _, p := range result.Payments {
			note := ""
			if p.Note != nil {
				note = *p.Note
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				p.PaidAt.Format("2006-01-02"), p.Amount.StringFixed(2),
				p.Method, p.RemainingAfter.StringFixed(2), note)
		}
		return w.Flush()
	},
}

var outstandingCmd = &cobra.Command{
	Use:   "outstanding",
	Short: "List open debts ordered by due date, with urgency",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, _ := cmd.Flags().GetString("as-of")

		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.ListOutstanding(cmd.Context(), asOf)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tINVOICE\tSUPPLIER\tREMAINING\tDUE\tDAYS\tURGENCY")
		for _, row := range result.Rows {
			p := row.Purchase
			due, days := "-", "-"
			if p.DueDate != nil {
				due = p.DueDate.Format("2006-01-02")
			}
			if row.DaysUntilDue != nil {
				days = strconv.Itoa(*row.DaysUntilDue)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.InvoiceNumber, supplierLabel(&p),
				p.RemainingDebt.StringFixed(2), due, days, row.Urgency)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		s := result.Stats
		fmt.Printf("\nTotal outstanding: %s across %d purchases (%d overdue)\n",
			s.TotalOutstanding.StringFixed(2), s.OpenCount, s.OverdueCount)
		return nil
	},
}

func init() {
	payCmd.Flags().String("method", "cash", "Payment method: cash, bank_transfer, giro")
	payCmd.Flags().String("note", "", "Optional note")
	payCmd.Flags().String("date", "", "Payment date YYYY-MM-DD (default today)")

	outstandingCmd.Flags().String("as-of", "", "Evaluate urgency as of this date YYYY-MM-DD")

	rootCmd.AddCommand(payCmd, paymentsCmd, outstandingCmd)
}
