package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Oracle API
	AnthropicAPIKey  string
	AnthropicBaseURL string
	OracleModel      string
	OracleMaxTokens  int
	OracleTimeout    time.Duration

	// Server
	ServerPort  string
	FrontendURL string

	// Simulation
	DayInterval time.Duration // one simulated day at speed 1

	// Database
	DBPath string

	// Logging
	LogLevel string
}

// LoadConfig loads configuration from environment variables. A missing
// ANTHROPIC_API_KEY is not fatal here: oracle-backed endpoints report it
// per-request so the rest of the simulator stays usable.
func LoadConfig() (*Config, error) {
	// Load .env if present; plain environment variables work too.
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string

	// Oracle API
	cfg.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", "")
	cfg.AnthropicBaseURL = getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com")
	cfg.OracleModel = getEnv("ORACLE_MODEL", "claude-sonnet-4-20250514")
	cfg.OracleMaxTokens = getEnvAsInt("ORACLE_MAX_TOKENS", 4096)
	if cfg.OracleMaxTokens <= 0 {
		errs = append(errs, "ORACLE_MAX_TOKENS must be positive")
	}

	oracleTimeoutSeconds := getEnvAsInt("ORACLE_TIMEOUT_SECONDS", 60)
	if oracleTimeoutSeconds <= 0 {
		errs = append(errs, "ORACLE_TIMEOUT_SECONDS must be positive")
	}
	cfg.OracleTimeout = time.Duration(oracleTimeoutSeconds) * time.Second

	// Server
	cfg.ServerPort = getEnv("SERVER_PORT", getEnv("PORT", "3001"))
	cfg.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:5173")

	// Simulation
	dayIntervalMS := getEnvAsInt("DAY_INTERVAL_MS", 5000)
	if dayIntervalMS <= 0 {
		errs = append(errs, "DAY_INTERVAL_MS must be positive")
	}
	cfg.DayInterval = time.Duration(dayIntervalMS) * time.Millisecond

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/tradetutor.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
