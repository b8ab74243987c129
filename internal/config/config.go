// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config collects every knob the server reads from the environment.
type Config struct {
	Addr string

	// StoreBackend selects the room record store: memory, redis, or
	// postgres.
	StoreBackend string

	RedisAddr string
	RedisDB   int

	// DatabaseURL is used verbatim when set; otherwise it is assembled
	// from the POSTGRES_* / PG_* variables.
	DatabaseURL string

	CatchWindow    time.Duration
	CommitRetries  int
	HistorianQueue string
}

// FromEnv reads the configuration, applying defaults for anything
// unset.
func FromEnv() Config {
	cfg := Config{
		Addr:           ":" + getEnv("PORT", "8080"),
		StoreBackend:   getEnv("STORE_BACKEND", "memory"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CatchWindow:    time.Duration(getEnvInt("UNO_CATCH_WINDOW_SEC", 10)) * time.Second,
		CommitRetries:  getEnvInt("COMMIT_RETRIES", 4),
		HistorianQueue: os.Getenv("HISTORIAN_QUEUE_NAME"),
	}
	if cfg.DatabaseURL == "" && os.Getenv("POSTGRES_USER") != "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			os.Getenv("POSTGRES_USER"),
			os.Getenv("POSTGRES_PASSWORD"),
			getEnv("PG_HOST", "localhost"),
			getEnv("PG_PORT", "5432"),
			getEnv("PG_DATABASE", "unoroom"),
		)
	}
	return cfg
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as integer, else a default.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
