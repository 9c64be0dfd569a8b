package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"koperasi-ledger/internal/adapters/web"
	"koperasi-ledger/internal/app"
	"koperasi-ledger/internal/config"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var supplierCmd = &cobra.Command{
	Use:   "supplier",
	Short: "Manage the supplier directory",
}

var supplierListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active suppliers",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.ListSuppliers(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSINCE")
		for _, s := range result.Suppliers {
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Name, s.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var supplierAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a supplier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.CreateSupplier(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Supplier %d %q created.\n", result.Suppliers[0].ID, result.Suppliers[0].Name)
		return nil
	},
}

var supplierRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Deactivate a supplier (history is kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid supplier id %q", args[0])
		}

		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := svc.DeactivateSupplier(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Supplier %d deactivated.\n", id)
		return nil
	},
}

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Inspect and extend the stock catalog",
}

var stockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog items with quantity on hand and last cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")

		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.ListStockItems(cmd.Context(), query)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCODE\tNAME\tUNIT\tON HAND\tLAST COST")
		for _, it := range result.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				it.ID, it.Code, it.Name, it.Unit,
				it.QtyOnHand.String(), it.UnitCost.StringFixed(2))
		}
		return w.Flush()
	},
}

var stockAddCmd = &cobra.Command{
	Use:   "add <code> <name>",
	Short: "Add a catalog item with zero stock",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, _ := cmd.Flags().GetString("unit")
		retail, _ := cmd.Flags().GetString("retail")
		wholesale, _ := cmd.Flags().GetString("wholesale")

		req := app.CreateStockItemRequest{Code: args[0], Name: args[1], Unit: unit}
		var err error
		if retail != "" {
			if req.RetailPrice, err = decimal.NewFromString(retail); err != nil {
				return fmt.Errorf("invalid --retail %q", retail)
			}
		}
		if wholesale != "" {
			if req.WholesalePrice, err = decimal.NewFromString(wholesale); err != nil {
				return fmt.Errorf("invalid --wholesale %q", wholesale)
			}
		}

		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.CreateStockItem(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Printf("Item %d %s created.\n", result.Items[0].ID, result.Items[0].Code)
		return nil
	},
}

var interpretCmd = &cobra.Command{
	Use:   "interpret <note>",
	Short: "Propose a purchase entry from a free-text note",
	Long: `Ask the AI assistant to turn a free-text goods-received note into a
structured purchase draft. The draft is printed as JSON for review; it
is never written to the ledger. Requires OPENAI_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.InterpretPurchase(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Draft)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Mint an API bearer token",
	Long: `Mint a signed bearer token for the HTTP API. Requires
AUTH_JWT_SECRET; when the server runs without a secret the API is open
and no token is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is not set")
		}

		token, err := web.MintToken(cfg.JWTSecret, args[0], ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	stockListCmd.Flags().String("query", "", "Filter by substring of code or name")
	stockAddCmd.Flags().String("unit", "pcs", "Unit of measure")
	stockAddCmd.Flags().String("retail", "", "Retail selling price")
	stockAddCmd.Flags().String("wholesale", "", "Wholesale selling price")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")

	supplierCmd.AddCommand(supplierListCmd, supplierAddCmd, supplierRemoveCmd)
	stockCmd.AddCommand(stockListCmd, stockAddCmd)
	rootCmd.AddCommand(supplierCmd, stockCmd, interpretCmd, tokenCmd)
}
