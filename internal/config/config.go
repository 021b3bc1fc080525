package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	APIURL          string
	Store           string
	DBPath          string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	HTTPTimeout     time.Duration
	BreakerFailures uint32
}

// Load reads the configuration from the environment. Callers load a .env
// file first if they want one.
func Load() (Config, error) {
	cfg := Config{
		APIURL:        getEnv("STOREFRONT_API_URL", "http://localhost:8080/api"),
		Store:         getEnv("STOREFRONT_STORE", StoreSQLite),
		DBPath:        getEnv("STOREFRONT_DB_PATH", defaultDBPath()),
		RedisAddr:     getEnv("STOREFRONT_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("STOREFRONT_REDIS_PASSWORD", ""),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getEnv("STOREFRONT_REDIS_DB", "0")); err != nil {
		return Config{}, fmt.Errorf("STOREFRONT_REDIS_DB: %w", err)
	}
	if cfg.HTTPTimeout, err = time.ParseDuration(getEnv("STOREFRONT_HTTP_TIMEOUT", "0s")); err != nil {
		return Config{}, fmt.Errorf("STOREFRONT_HTTP_TIMEOUT: %w", err)
	}
	failures, err := strconv.ParseUint(getEnv("STOREFRONT_BREAKER_FAILURES", "5"), 10, 32)
	if err != nil {
		return Config{}, fmt.Errorf("STOREFRONT_BREAKER_FAILURES: %w", err)
	}
	cfg.BreakerFailures = uint32(failures)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("STOREFRONT_STORE: unknown store %q", c.Store)
	}
	if c.APIURL == "" {
		return fmt.Errorf("STOREFRONT_API_URL: empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "storefront.db"
	}
	return filepath.Join(home, ".storefront", "state.db")
}
