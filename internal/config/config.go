// Package config loads and validates client configuration from YAML files
// with ${ENV} substitution.
package config

import "time"

// ClientConfig is the root configuration for the stockmon client.
type ClientConfig struct {
	API     APIConfig     `yaml:"api"`
	Auth    AuthConfig    `yaml:"auth"`
	Poll    PollConfig    `yaml:"poll"`
	Stream  StreamConfig  `yaml:"stream"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the REST transport.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	WSURL   string        `yaml:"ws_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig configures credential persistence.
type AuthConfig struct {
	TokenFile string `yaml:"token_file"`
}

// PollConfig configures the sync engine's adaptive cadence.
type PollConfig struct {
	TradingInterval time.Duration `yaml:"trading_interval"`
	IdleInterval    time.Duration `yaml:"idle_interval"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// StreamConfig configures the websocket quote stream.
type StreamConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PingInterval time.Duration `yaml:"ping_interval"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	BufferSize   int           `yaml:"buffer_size"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}
