package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all environment-driven settings. Load after godotenv has
// populated the process environment.
type Config struct {
	DatabaseURL    string
	ServerPort     string
	AllowedOrigins string // comma-separated; empty disables CORS
	JWTSecret      string // empty disables auth on the HTTP API
	OpenAIAPIKey   string // empty disables the AI purchase-entry endpoint

	// DueSoonWindowDays is how many days before its due date an outstanding
	// debt is flagged due_soon.
	DueSoonWindowDays int

	// CostPolicy selects how goods receipts update an item's carrying cost:
	// last_cost (default) or weighted_average.
	CostPolicy string

	LogLevel  string // trace..panic; default info
	LogFormat string // console or json; default console
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ServerPort:        envOr("SERVER_PORT", "8080"),
		AllowedOrigins:    os.Getenv("ALLOWED_ORIGINS"),
		JWTSecret:         os.Getenv("AUTH_JWT_SECRET"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		DueSoonWindowDays: 7,
		CostPolicy:        envOr("COST_POLICY", "last_cost"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		LogFormat:         envOr("LOG_FORMAT", "console"),
	}

	if v := os.Getenv("DUE_SOON_WINDOW_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid DUE_SOON_WINDOW_DAYS %q", v)
		}
		cfg.DueSoonWindowDays = days
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
