package config

import (
	"encoding/json"
	"os"

	"github.com/autoauthor/autoauthor/internal/flagx"
	"github.com/autoauthor/autoauthor/internal/timex"
)

// jsonConfig is the DTO for the optional JSON configuration file. Interval
// fields use timex.Duration so JSON can specify them either as strings
// ("2s") or as integer nanoseconds. After unmarshalling, set fields are
// copied into the runtime Config.
type jsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	BackupDBPath       string          `json:"backup_db_path"`
	Debounce           *timex.Duration `json:"debounce"`
	SaveTimeout        *timex.Duration `json:"save_timeout"`
	PollInterval       *timex.Duration `json:"poll_interval"`
	ProbeInterval      *timex.Duration `json:"probe_interval"`
	AutoRefresh        *bool           `json:"auto_refresh"`
	BackupRetention    *timex.Duration `json:"backup_retention"`
}

// parseJSON loads configuration from the file named by the -c/-config
// flag. When the flag is absent nothing is loaded; an unreadable or invalid
// file panics, as a broken explicit config is not something to run with.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigFlag(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	applyJSON(cfg, c)
}

func applyJSON(cfg *Config, c *jsonConfig) {
	if c.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = c.ServerEndpointAddr
	}
	if c.BackupDBPath != "" {
		cfg.BackupDBPath = c.BackupDBPath
	}
	if c.Debounce != nil {
		cfg.Debounce = c.Debounce.Duration
	}
	if c.SaveTimeout != nil {
		cfg.SaveTimeout = c.SaveTimeout.Duration
	}
	if c.PollInterval != nil {
		cfg.PollInterval = c.PollInterval.Duration
	}
	if c.ProbeInterval != nil {
		cfg.ProbeInterval = c.ProbeInterval.Duration
	}
	if c.AutoRefresh != nil {
		cfg.AutoRefresh = *c.AutoRefresh
	}
	if c.BackupRetention != nil {
		cfg.BackupRetention = c.BackupRetention.Duration
	}
}
