// migrate applies the SQL migration files in ./migrations in lexical order.
// Each file runs in its own transaction and is recorded in schema_migrations,
// so re-running the tool only applies what is new.
//
// Usage: go run ./cmd/migrate [migrations-dir]
package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"koperasi-ledger/internal/config"
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

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		log.Fatal().Err(err).Msg("schema_migrations table")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("read migrations dir")
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	applied := 0
	for _, name := range files {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename = $1)`, name).Scan(&exists)
		if err != nil {
			log.Fatal().Err(err).Str("file", name).Msg("check migration")
		}
		if exists {
			continue
		}

		sql, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Fatal().Err(err).Str("file", name).Msg("read migration")
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("begin")
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			_ = tx.Rollback(ctx)
			log.Fatal().Err(err).Str("file", name).Msg("apply migration")
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (filename) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback(ctx)
			log.Fatal().Err(err).Str("file", name).Msg("record migration")
		}
		if err := tx.Commit(ctx); err != nil {
			log.Fatal().Err(err).Str("file", name).Msg("commit")
		}

		log.Info().Str("file", name).Msg("applied")
		applied++
	}

	log.Info().Int("applied", applied).Int("total", len(files)).Msg("migrations up to date")
}
