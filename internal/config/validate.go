package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *ClientConfig) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must start with http:// or https://, got %q", c.API.BaseURL)
	}

	if c.Poll.TradingInterval <= 0 {
		return errors.New("poll.trading_interval must be positive")
	}
	if c.Poll.IdleInterval <= 0 {
		return errors.New("poll.idle_interval must be positive")
	}
	if c.Poll.TradingInterval > c.Poll.IdleInterval {
		return fmt.Errorf("poll.trading_interval (%v) cannot exceed idle_interval (%v)",
			c.Poll.TradingInterval, c.Poll.IdleInterval)
	}
	if c.Poll.RequestTimeout <= 0 {
		return errors.New("poll.request_timeout must be positive")
	}

	if c.Stream.Enabled {
		if c.API.WSURL == "" {
			return errors.New("api.ws_url is required when stream.enabled is true")
		}
		if !strings.HasPrefix(c.API.WSURL, "ws://") && !strings.HasPrefix(c.API.WSURL, "wss://") {
			return fmt.Errorf("api.ws_url must start with ws:// or wss://, got %q", c.API.WSURL)
		}
		if c.Stream.BufferSize < 1 {
			return errors.New("stream.buffer_size must be >= 1")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	return nil
}
