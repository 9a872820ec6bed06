package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerEndpointAddr)
	assert.Equal(t, "autoauthor.db", c.BackupDBPath)
	assert.Equal(t, 2*time.Second, c.Debounce)
	assert.Equal(t, 15*time.Second, c.SaveTimeout)
	assert.Equal(t, 60*time.Second, c.PollInterval)
	assert.Equal(t, 3*time.Second, c.ProbeInterval)
	assert.True(t, c.AutoRefresh)
	assert.Equal(t, 7*24*time.Hour, c.BackupRetention)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:8080", c.ServerEndpointAddr)
	assert.Equal(t, 2*time.Second, c.Debounce)
}

func TestParseEnv_Overlays(t *testing.T) {
	t.Setenv("AUTOAUTHOR_SERVER", "https://api.example.org")
	t.Setenv("AUTOAUTHOR_DEBOUNCE", "750ms")
	t.Setenv("AUTOAUTHOR_AUTO_REFRESH", "false")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "https://api.example.org", c.ServerEndpointAddr)
	assert.Equal(t, 750*time.Millisecond, c.Debounce)
	assert.False(t, c.AutoRefresh)
}

func TestParseEnv_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("AUTOAUTHOR_DEBOUNCE", "not-a-duration")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, 2*time.Second, c.Debounce)
}
