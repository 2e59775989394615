package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port string
	Env  string

	RedisURL  string
	RedisPass string
	RedisDB   int

	// AdminPIN gates the settings panel. A single shared secret is a UX
	// deterrent, not a security boundary.
	AdminPIN  string
	JWTSecret string

	// StartingBalance is credited to fresh guest sessions, in USD.
	StartingBalance float64
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPass:       getEnv("REDIS_PASSWORD", ""),
		AdminPIN:        getEnv("ADMIN_PIN", "1234"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		StartingBalance: 1000,
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		v, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %v", err)
		}
		cfg.RedisDB = v
	}

	if sb := os.Getenv("STARTING_BALANCE"); sb != "" {
		v, err := strconv.ParseFloat(sb, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid STARTING_BALANCE: %q", sb)
		}
		cfg.StartingBalance = v
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-do-not-use-in-production"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
