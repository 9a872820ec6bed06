package config

import (
	"flag"
	"os"
	"time"

	"github.com/autoauthor/autoauthor/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server
//	-b string   local backup database path
//	-d int      auto-save debounce, milliseconds
//	-p int      session poll interval, seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-p"})

	fs := flag.NewFlagSet("editor", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the backend server")
	fs.StringVar(&cfg.BackupDBPath, "b", cfg.BackupDBPath, "local backup database path")
	debounceMs := fs.Int("d", int(cfg.Debounce.Milliseconds()), "auto-save debounce (in milliseconds)")
	pollSec := fs.Int("p", int(cfg.PollInterval.Seconds()), "session poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Debounce = time.Duration(*debounceMs) * time.Millisecond
	cfg.PollInterval = time.Duration(*pollSec) * time.Second
}
