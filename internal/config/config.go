package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store selects the persistence backend.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds all runtime settings. Every field has a default so the
// service starts with no environment at all.
type Config struct {
	Port           string
	Store          string
	DatabasePath   string
	JWTSecret      string
	JWTExpiryHours int
	LogLevel       string
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	// Missing .env is fine; env vars win either way.
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Store:          getEnv("STORE", StoreMemory),
		DatabasePath:   getEnv("DATABASE_PATH", "auctionhouse.db"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if cfg.Store != StoreMemory && cfg.Store != StoreSQLite {
		return Config{}, fmt.Errorf("config: unknown STORE %q (want %q or %q)", cfg.Store, StoreMemory, StoreSQLite)
	}
	if cfg.JWTExpiryHours <= 0 {
		cfg.JWTExpiryHours = 24
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
