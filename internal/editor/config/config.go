// Package config handles configuration for the editor client, including
// defaults, environment variables, an optional JSON overlay, and
// command-line flags. Later sources take precedence over earlier ones.
package config

import "time"

// Config holds runtime settings for the editor client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the Auto-Author backend.
//   - BackupDBPath: path of the local SQLite database holding backups.
//   - Debounce: quiet period before an auto-save fires.
//   - SaveTimeout: per-attempt network timeout for saves.
//   - PollInterval: session status polling interval.
//   - ProbeInterval: connectivity probe interval.
//   - AutoRefresh: refresh the session automatically near expiry.
//   - BackupRetention: age past which stale backups are cleaned up.
type Config struct {
	ServerEndpointAddr string
	BackupDBPath       string
	Debounce           time.Duration
	SaveTimeout        time.Duration
	PollInterval       time.Duration
	ProbeInterval      time.Duration
	AutoRefresh        bool
	BackupRetention    time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.BackupDBPath = "autoauthor.db"
	c.Debounce = 2 * time.Second
	c.SaveTimeout = 15 * time.Second
	c.PollInterval = 60 * time.Second
	c.ProbeInterval = 3 * time.Second
	c.AutoRefresh = true
	c.BackupRetention = 7 * 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, a JSON file (if present), and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
