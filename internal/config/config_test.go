package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "localhost:8888", cfg.Addr)
	assert.Equal(t, 10, cfg.Backlog)
	assert.Equal(t, 100*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, 20*time.Millisecond, cfg.ClickHold)
	assert.Equal(t, 100*time.Millisecond, cfg.StopDelay)
	assert.Equal(t, 5*time.Second, cfg.IdleTimeout)
	assert.False(t, cfg.ControlSocket)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
addr: 127.0.0.1:9000
backlog: 4
settle_delay: 250ms
idle_timeout: 2s
control_socket: true
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 4, cfg.Backlog)
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, 2*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 20*time.Millisecond, cfg.ClickHold, "unset fields keep defaults")
	assert.True(t, cfg.ControlSocket)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "addr: 127.0.0.1:9000\ndisplay: 1\n")
	t.Setenv("SWEEPERCTL_ADDR", "localhost:7000")
	t.Setenv("SWEEPERCTL_DISPLAY", "2")
	t.Setenv("SWEEPERCTL_CONTROL_SOCKET", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:7000", cfg.Addr)
	assert.Equal(t, 2, cfg.Display)
	assert.True(t, cfg.ControlSocket)
}

func TestOverride(t *testing.T) {
	path := writeConfig(t, "addr: 127.0.0.1:9000\n")
	t.Setenv("SWEEPERCTL_ADDR", "localhost:7000")

	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.Override("")
	assert.Equal(t, "localhost:7000", cfg.Addr, "empty flag keeps env value")

	cfg.Override("127.0.0.1:6000")
	assert.Equal(t, "127.0.0.1:6000", cfg.Addr, "flag wins over env and file")
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "addr: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("bad env display", func(t *testing.T) {
		t.Setenv("SWEEPERCTL_DISPLAY", "primary")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "ipv4 loopback", mutate: func(c *Config) { c.Addr = "127.0.0.1:8888" }, ok: true},
		{name: "ipv6 loopback", mutate: func(c *Config) { c.Addr = "[::1]:8888" }, ok: true},
		{name: "wildcard host", mutate: func(c *Config) { c.Addr = "0.0.0.0:8888" }},
		{name: "missing port", mutate: func(c *Config) { c.Addr = "localhost" }},
		{name: "bad port", mutate: func(c *Config) { c.Addr = "localhost:99999" }},
		{name: "zero backlog", mutate: func(c *Config) { c.Backlog = 0 }},
		{name: "negative display", mutate: func(c *Config) { c.Display = -1 }},
		{name: "negative delay", mutate: func(c *Config) { c.StopDelay = -time.Second }},
		{name: "zero idle timeout", mutate: func(c *Config) { c.IdleTimeout = 0 }},
		{name: "unknown level", mutate: func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
