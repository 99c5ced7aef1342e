package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultEnv          = "dev"
	defaultDBPath       = "./dev.db"
	defaultPort         = "8080"
	defaultLogLevel     = "info"
	defaultShippingCost = 15.00

	// devSessionSecret signs cart cookies when SESSION_SECRET is unset in dev.
	devSessionSecret = "macclone-dev-session-secret-change-me"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	Port          string
	DBPath        string
	SessionSecret string
	ShippingCost  float64
	LogLevel      string
}

// Load reads environment variables and returns a populated Config.
func Load() (Config, error) {
	// Local development convenience; production injects real env.
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:           getenv("APP_ENV", defaultEnv),
		Port:          getenv("PORT", defaultPort),
		DBPath:        getenv("DB_PATH", defaultDBPath),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LogLevel:      getenv("LOG_LEVEL", defaultLogLevel),
		ShippingCost:  defaultShippingCost,
	}

	if raw := os.Getenv("SHIPPING_COST"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Config{}, fmt.Errorf("SHIPPING_COST must be numeric: %w", err)
		}
		if v < 0 {
			return Config{}, fmt.Errorf("SHIPPING_COST must be >= 0, got %v", v)
		}
		cfg.ShippingCost = v
	}

	if cfg.SessionSecret == "" {
		if !cfg.IsDev() {
			return Config{}, errors.New("SESSION_SECRET is required outside dev")
		}
		cfg.SessionSecret = devSessionSecret
	}

	return cfg, nil
}

// IsDev reports whether the service runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "dev"
}

// Warnings lists configuration that is acceptable but worth flagging at startup.
func (c Config) Warnings() []string {
	var out []string
	if c.SessionSecret == devSessionSecret {
		out = append(out, "SESSION_SECRET is not set, using the development secret")
	}
	if c.ShippingCost == 0 {
		out = append(out, "SHIPPING_COST is 0, orders ship for free")
	}
	return out
}

// loadDotEnv loads KEY=VALUE pairs from path without overriding variables
// already present in the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
