package main

import (
	"context"
	"fmt"
	"os"

	"koperasi-ledger/internal/ai"
	"koperasi-ledger/internal/app"
	"koperasi-ledger/internal/config"
	"koperasi-ledger/internal/core"
	"koperasi-ledger/internal/db"
	"koperasi-ledger/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "koperasi",
	Short: "Supplier purchase and installment debt ledger",
	Long: `koperasi manages the purchase side of a cooperative shop: goods
received from suppliers, the debts those purchases create, and the
installment payments that settle them.

Set DATABASE_URL (or a .env file) before running any command that
touches the ledger.`,
	SilenceUsage: true,
}

// openServices connects to the database and wires the application service.
// The returned cleanup closes the pool.
func openServices(ctx context.Context) (app.ApplicationService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	svc, err := buildService(pool, cfg)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return svc, pool.Close, nil
}

func buildService(pool *pgxpool.Pool, cfg *config.Config) (app.ApplicationService, error) {
	costing, err := core.CostPolicyByName(cfg.CostPolicy)
	if err != nil {
		return nil, err
	}

	suppliers := core.NewSupplierDirectory(pool)
	stock := core.NewStockCatalog(pool, costing)
	sink := core.NewFinanceEntrySink(pool)
	ledger := core.NewPurchaseLedger(pool)
	journal := core.NewDebtPaymentJournal(pool, ledger)
	debts := core.NewDebtReportingService(pool, cfg.DueSoonWindowDays)

	var agent ai.AgentService
	if cfg.OpenAIAPIKey != "" {
		agent = ai.NewAgent(cfg.OpenAIAPIKey)
	}
	return app.NewAppService(ledger, journal, suppliers, stock, debts, sink, agent), nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err == nil {
		logger.Setup(cfg.LogLevel, cfg.LogFormat)
	} else {
		logger.Setup("info", "console")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
