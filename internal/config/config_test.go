package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempConfig(t, `
api:
  base_url: "http://localhost:8000/api/v1"
  ws_url: "ws://localhost:8000/api/v1/realtime/ws"
  timeout: 20s
auth:
  token_file: "/tmp/stockmon-token"
poll:
  trading_interval: 15s
  idle_interval: 60s
  request_timeout: 10s
stream:
  enabled: true
  ping_interval: 15s
  read_timeout: 30s
  buffer_size: 50
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000/api/v1" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 20*time.Second {
		t.Errorf("Timeout = %v, want 20s", cfg.API.Timeout)
	}
	if cfg.Poll.TradingInterval != 15*time.Second {
		t.Errorf("TradingInterval = %v, want 15s", cfg.Poll.TradingInterval)
	}
	if cfg.Poll.IdleInterval != 60*time.Second {
		t.Errorf("IdleInterval = %v, want 60s", cfg.Poll.IdleInterval)
	}
	if !cfg.Stream.Enabled {
		t.Error("Stream.Enabled = false, want true")
	}
	if cfg.Stream.BufferSize != 50 {
		t.Errorf("BufferSize = %d, want 50", cfg.Stream.BufferSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("STOCKMON_TEST_BASE", "http://envhost:9000/api/v1")

	path := writeTempConfig(t, `
api:
  base_url: "${STOCKMON_TEST_BASE}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://envhost:9000/api/v1" {
		t.Errorf("BaseURL = %q, want env-expanded value", cfg.API.BaseURL)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "api: [not: valid")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempConfig(t, `
api:
  base_url: "http://localhost:8000/api/v1"
`)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.API.Timeout != DefaultAPITimeout {
		t.Errorf("Timeout = %v, want default %v", cfg.API.Timeout, DefaultAPITimeout)
	}
	if cfg.Poll.TradingInterval != DefaultTradingInterval {
		t.Errorf("TradingInterval = %v, want default %v", cfg.Poll.TradingInterval, DefaultTradingInterval)
	}
	if cfg.Poll.IdleInterval != DefaultIdleInterval {
		t.Errorf("IdleInterval = %v, want default %v", cfg.Poll.IdleInterval, DefaultIdleInterval)
	}
	if cfg.Poll.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want default %v", cfg.Poll.RequestTimeout, DefaultRequestTimeout)
	}
	if cfg.Stream.PingInterval != DefaultPingInterval {
		t.Errorf("PingInterval = %v, want default %v", cfg.Stream.PingInterval, DefaultPingInterval)
	}
	if cfg.Stream.BufferSize != DefaultStreamBufferSize {
		t.Errorf("BufferSize = %d, want default %d", cfg.Stream.BufferSize, DefaultStreamBufferSize)
	}
	if cfg.Auth.TokenFile == "" {
		t.Error("TokenFile default not applied")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *ClientConfig {
		cfg := &ClientConfig{}
		cfg.API.BaseURL = "http://localhost:8000/api/v1"
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*ClientConfig)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *ClientConfig) {},
		},
		{
			name:    "missing base_url",
			mutate:  func(c *ClientConfig) { c.API.BaseURL = "" },
			wantErr: "api.base_url is required",
		},
		{
			name:    "bad base_url scheme",
			mutate:  func(c *ClientConfig) { c.API.BaseURL = "localhost:8000" },
			wantErr: "must start with http",
		},
		{
			name:    "zero trading interval",
			mutate:  func(c *ClientConfig) { c.Poll.TradingInterval = 0 },
			wantErr: "trading_interval must be positive",
		},
		{
			name:    "zero idle interval",
			mutate:  func(c *ClientConfig) { c.Poll.IdleInterval = 0 },
			wantErr: "idle_interval must be positive",
		},
		{
			name: "trading slower than idle",
			mutate: func(c *ClientConfig) {
				c.Poll.TradingInterval = 2 * time.Minute
				c.Poll.IdleInterval = time.Minute
			},
			wantErr: "cannot exceed idle_interval",
		},
		{
			name:    "zero request timeout",
			mutate:  func(c *ClientConfig) { c.Poll.RequestTimeout = 0 },
			wantErr: "request_timeout must be positive",
		},
		{
			name:    "stream enabled without ws_url",
			mutate:  func(c *ClientConfig) { c.Stream.Enabled = true },
			wantErr: "ws_url is required",
		},
		{
			name: "stream enabled with bad ws_url scheme",
			mutate: func(c *ClientConfig) {
				c.Stream.Enabled = true
				c.API.WSURL = "http://localhost:8000/ws"
			},
			wantErr: "must start with ws",
		},
		{
			name: "ws_url not checked when stream disabled",
			mutate: func(c *ClientConfig) {
				c.Stream.Enabled = false
				c.API.WSURL = ""
			},
		},
		{
			name:    "unknown logging level",
			mutate:  func(c *ClientConfig) { c.Logging.Level = "trace" },
			wantErr: "logging.level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate failed: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadAndValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeTempConfig(t, `
api:
  base_url: "http://localhost:8000/api/v1"
`)
		cfg, err := LoadAndValidate(path)
		if err != nil {
			t.Fatalf("LoadAndValidate failed: %v", err)
		}
		if cfg.Poll.TradingInterval != DefaultTradingInterval {
			t.Errorf("defaults not applied before validation")
		}
	})

	t.Run("invalid", func(t *testing.T) {
		path := writeTempConfig(t, `
poll:
  trading_interval: 15s
`)
		_, err := LoadAndValidate(path)
		if err == nil {
			t.Fatal("expected validation error for missing base_url")
		}
	})
}
