// Package config loads the control service settings from defaults, an
// optional YAML file and SWEEPERCTL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "SWEEPERCTL_"

// Config holds all settings for the control service.
type Config struct {
	// Addr is the loopback host:port the listener binds.
	Addr string `yaml:"addr"`

	// Backlog caps the number of simultaneously accepted connections.
	Backlog int `yaml:"backlog"`

	// Display is the index of the display captured by /screencap.
	Display int `yaml:"display"`

	// SettleDelay is the pause between a pointer move and the location sample.
	SettleDelay time.Duration `yaml:"settle_delay"`

	// ClickHold is the pause between button press and release.
	ClickHold time.Duration `yaml:"click_hold"`

	// StopDelay is how long /stop waits after responding before the process exits.
	StopDelay time.Duration `yaml:"stop_delay"`

	// IdleTimeout closes keep-alive connections that sit idle, freeing their
	// slot under Backlog.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ControlSocket enables the /ws WebSocket endpoint.
	ControlSocket bool `yaml:"control_socket"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing else is specified.
func Default() *Config {
	return &Config{
		Addr:        "localhost:8888",
		Backlog:     10,
		Display:     0,
		SettleDelay: 100 * time.Millisecond,
		ClickHold:   20 * time.Millisecond,
		StopDelay:   100 * time.Millisecond,
		IdleTimeout: 5 * time.Second,
		LogLevel:    "info",
	}
}

// Load builds the effective configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Addr = getEnv("ADDR", c.Addr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if v := getEnv("DISPLAY", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sDISPLAY: %w", envPrefix, err)
		}
		c.Display = n
	}
	if v := getEnv("CONTROL_SOCKET", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCONTROL_SOCKET: %w", envPrefix, err)
		}
		c.ControlSocket = b
	}
	return nil
}

// Override applies command-line values on top of file and environment
// settings. Empty values leave the config untouched.
func (c *Config) Override(addr string) {
	if addr != "" {
		c.Addr = addr
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks that the configuration can be served.
func (c *Config) Validate() error {
	var errs []error

	host, port, err := net.SplitHostPort(c.Addr)
	if err != nil {
		errs = append(errs, fmt.Errorf("addr %q: %w", c.Addr, err))
	} else {
		if !isLoopback(host) {
			errs = append(errs, fmt.Errorf("addr %q: host must be loopback", c.Addr))
		}
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			errs = append(errs, fmt.Errorf("addr %q: invalid port", c.Addr))
		}
	}
	if c.Backlog <= 0 {
		errs = append(errs, fmt.Errorf("backlog must be positive, got %d", c.Backlog))
	}
	if c.Display < 0 {
		errs = append(errs, fmt.Errorf("display must not be negative, got %d", c.Display))
	}
	if c.SettleDelay < 0 || c.ClickHold < 0 || c.StopDelay < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	if c.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("idle_timeout must be positive, got %s", c.IdleTimeout))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// ParseLevel maps a log level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", name, err)
	}
	return level, nil
}
