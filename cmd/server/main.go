package main

import (
	"context"
	"net/http"

	webAdapter "koperasi-ledger/internal/adapters/web"
	"koperasi-ledger/internal/ai"
	"koperasi-ledger/internal/app"
	"koperasi-ledger/internal/config"
	"koperasi-ledger/internal/core"
	"koperasi-ledger/internal/db"
	"koperasi-ledger/internal/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info", "console")
		log.Fatal().Err(err).Msg("configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	costing, err := core.CostPolicyByName(cfg.CostPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
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
	} else {
		log.Warn().Msg("OPENAI_API_KEY is not set; AI purchase entry disabled")
	}

	svc := app.NewAppService(ledger, journal, suppliers, stock, debts, sink, agent)
	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins, cfg.JWTSecret)

	log.Info().Str("port", cfg.ServerPort).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.ServerPort, handler); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
