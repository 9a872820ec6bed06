// Package config holds the dev server configuration, read from the
// environment with development defaults.
package config

import (
	"log/slog"
	"os"
	"time"
)

type Config struct {
	Port            string
	Env             string
	JWTSecret       string
	DocumentDBPath  string
	SessionLifetime time.Duration
	IdleWarnAfter   time.Duration
	LoginRPS        float64
	LoginBurst      int
}

func Load() Config {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		DocumentDBPath:  getEnv("DOCUMENT_DB", "documents.db"),
		SessionLifetime: getDuration("SESSION_LIFETIME", 30*time.Minute),
		IdleWarnAfter:   getDuration("IDLE_WARN_AFTER", 15*time.Minute),
		LoginRPS:        5,
		LoginBurst:      10,
	}

	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret-change-in-production" {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration in env, using fallback", "key", key, "value", os.Getenv(key))
	}
	return fallback
}
