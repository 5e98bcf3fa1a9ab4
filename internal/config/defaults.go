package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultAPITimeout = 30 * time.Second

	// The trading interval sits just above the backend's 10s quote cache;
	// outside trading hours a much longer cadence suffices.
	DefaultTradingInterval = 15 * time.Second
	DefaultIdleInterval    = 60 * time.Second
	DefaultRequestTimeout  = 10 * time.Second

	DefaultPingInterval     = 15 * time.Second
	DefaultReadTimeout      = 30 * time.Second
	DefaultStreamBufferSize = 100
)

func (c *ClientConfig) applyDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	if c.Auth.TokenFile == "" {
		c.Auth.TokenFile = defaultTokenFile()
	}

	if c.Poll.TradingInterval == 0 {
		c.Poll.TradingInterval = DefaultTradingInterval
	}
	if c.Poll.IdleInterval == 0 {
		c.Poll.IdleInterval = DefaultIdleInterval
	}
	if c.Poll.RequestTimeout == 0 {
		c.Poll.RequestTimeout = DefaultRequestTimeout
	}

	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.ReadTimeout == 0 {
		c.Stream.ReadTimeout = DefaultReadTimeout
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultStreamBufferSize
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stockmon/token"
	}
	return filepath.Join(home, ".stockmon", "token")
}
