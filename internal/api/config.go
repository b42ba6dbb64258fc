// Package api assembles the HTTP server: the shared middleware stack, the
// JSON API under /api/v1, the HTML pages and the metrics endpoint.
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/logger"
)

// GetLogger returns the server logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("server")
}

// Default constants for the HTTP server.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = "1M"
	DefaultMetricsPath     = "/metrics"
)

// Config holds the HTTP server configuration derived from the settings.
type Config struct {
	// Server binding
	Host string
	Port int

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Limits
	BodyLimit string

	// CORS origins of the JSON API
	AllowedOrigins []string

	// Prometheus endpoint, empty when disabled
	MetricsPath string

	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            8080,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		BodyLimit:       DefaultBodyLimit,
		AllowedOrigins:  []string{"*"},
		MetricsPath:     DefaultMetricsPath,
	}
}

// ConfigFromSettings fills a Config from the loaded settings, keeping the
// defaults for anything left unset.
func ConfigFromSettings(settings *conf.Settings) *Config {
	config := DefaultConfig()
	if settings == nil {
		return config
	}

	ws := settings.WebServer
	config.Host = ws.Host
	if ws.Port != 0 {
		config.Port = ws.Port
	}
	if ws.ReadTimeout > 0 {
		config.ReadTimeout = ws.ReadTimeout
	}
	if ws.WriteTimeout > 0 {
		config.WriteTimeout = ws.WriteTimeout
	}
	if ws.BodyLimit != "" {
		config.BodyLimit = ws.BodyLimit
	}
	if len(ws.AllowedOrigins) > 0 {
		config.AllowedOrigins = ws.AllowedOrigins
	}

	config.MetricsPath = ""
	if settings.Metrics.Enabled {
		config.MetricsPath = settings.Metrics.Path
		if config.MetricsPath == "" {
			config.MetricsPath = DefaultMetricsPath
		}
	}

	config.Debug = settings.Main.Debug
	return config
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if c.MetricsPath != "" && !strings.HasPrefix(c.MetricsPath, "/") {
		return fmt.Errorf("metrics path %q must start with /", c.MetricsPath)
	}
	return nil
}

// Address returns the full address string for the server to listen on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// String returns a string representation of the config for logging.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Address: %s, BodyLimit: %s, Metrics: %q, Debug: %v}",
		c.Address(), c.BodyLimit, c.MetricsPath, c.Debug)
}
