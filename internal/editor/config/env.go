package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables. The caller is
// expected to have loaded a .env file beforehand (godotenv in main), so
// these read plain process env.
func parseEnv(cfg *Config) {
	if v := os.Getenv("AUTOAUTHOR_SERVER"); v != "" {
		cfg.ServerEndpointAddr = v
	}
	if v := os.Getenv("AUTOAUTHOR_BACKUP_DB"); v != "" {
		cfg.BackupDBPath = v
	}
	if v := os.Getenv("AUTOAUTHOR_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Debounce = d
		}
	}
	if v := os.Getenv("AUTOAUTHOR_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv("AUTOAUTHOR_AUTO_REFRESH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoRefresh = b
		}
	}
}
