package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Run("DefaultsWhenFileMissing", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Server.Port != "8000" {
			t.Errorf("expected default port 8000, got %s", cfg.Server.Port)
		}
		if cfg.Game.CountdownSeconds != 3 {
			t.Errorf("expected default countdown 3, got %d", cfg.Game.CountdownSeconds)
		}
		if cfg.PubSub.URL != "" {
			t.Errorf("expected pubsub disabled by default, got %q", cfg.PubSub.URL)
		}
	})

	t.Run("LoadFromYAML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "test-config.yaml")
		yamlContent := `
server:
  port: "9000"
  publicUrl: https://quiz.example.com/
  logLevel: debug
  logFormat: console
  rateLimit: 50

game:
  countdownSeconds: 5
  heartbeatInterval: 5s
  heartbeatTimeout: 12s
  reconnectWindow: 30s
  sendQueueSize: 64

pubsub:
  url: nats://localhost:4222
`
		if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if cfg.Server.Port != "9000" {
			t.Errorf("expected port 9000, got %s", cfg.Server.Port)
		}
		if cfg.Server.PublicURL != "https://quiz.example.com/" {
			t.Errorf("unexpected publicUrl %q", cfg.Server.PublicURL)
		}
		if cfg.Server.LogLevel != "debug" {
			t.Errorf("expected logLevel debug, got %s", cfg.Server.LogLevel)
		}
		if cfg.Game.CountdownSeconds != 5 {
			t.Errorf("expected countdown 5, got %d", cfg.Game.CountdownSeconds)
		}
		if cfg.Game.HeartbeatInterval != 5*time.Second {
			t.Errorf("expected heartbeatInterval 5s, got %v", cfg.Game.HeartbeatInterval)
		}
		if cfg.Game.ReconnectWindow != 30*time.Second {
			t.Errorf("expected reconnectWindow 30s, got %v", cfg.Game.ReconnectWindow)
		}
		if cfg.Game.SendQueueSize != 64 {
			t.Errorf("expected sendQueueSize 64, got %d", cfg.Game.SendQueueSize)
		}
		if cfg.PubSub.URL != "nats://localhost:4222" {
			t.Errorf("unexpected pubsub url %q", cfg.PubSub.URL)
		}
		// Untouched keys keep their defaults.
		if cfg.Server.MaxRequestSize != 1<<20 {
			t.Errorf("expected default maxRequestSize, got %d", cfg.Server.MaxRequestSize)
		}
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("PORT", "9100")
		t.Setenv("LOG_LEVEL", "warn")
		t.Setenv("PUBSUB_URL", "nats://broker:4222")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Server.Port != "9100" {
			t.Errorf("expected PORT override 9100, got %s", cfg.Server.Port)
		}
		if cfg.Server.LogLevel != "warn" {
			t.Errorf("expected LOG_LEVEL override warn, got %s", cfg.Server.LogLevel)
		}
		if cfg.PubSub.URL != "nats://broker:4222" {
			t.Errorf("expected PUBSUB_URL override, got %q", cfg.PubSub.URL)
		}
	})

	t.Run("InvalidEnvironmentRejected", func(t *testing.T) {
		t.Setenv("PORT", "besteira")
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
			t.Fatal("expected error for invalid PORT")
		}
	})
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{
			name:   "ValidDefaults",
			mutate: func(c *Config) {},
		},
		{
			name:     "PortNotANumber",
			mutate:   func(c *Config) { c.Server.Port = "abc" },
			errorMsg: "invalid PORT",
		},
		{
			name:     "PortOutOfRange",
			mutate:   func(c *Config) { c.Server.Port = "70000" },
			errorMsg: "invalid PORT",
		},
		{
			name:     "EmptyHost",
			mutate:   func(c *Config) { c.Server.Host = "" },
			errorMsg: "HOST must not be empty",
		},
		{
			name:     "UnknownLogLevel",
			mutate:   func(c *Config) { c.Server.LogLevel = "verbose" },
			errorMsg: "invalid LOG_LEVEL",
		},
		{
			name:     "UnknownLogFormat",
			mutate:   func(c *Config) { c.Server.LogFormat = "xml" },
			errorMsg: "invalid LOG_FORMAT",
		},
		{
			name:     "NonPositiveRateLimit",
			mutate:   func(c *Config) { c.Server.RateLimit = 0 },
			errorMsg: "rateLimit must be positive",
		},
		{
			name:     "ZeroBurst",
			mutate:   func(c *Config) { c.Server.RateLimitBurst = 0 },
			errorMsg: "rateLimitBurst must be at least 1",
		},
		{
			name:     "TinyMaxRequestSize",
			mutate:   func(c *Config) { c.Server.MaxRequestSize = 100 },
			errorMsg: "maxRequestSize must be at least 1024",
		},
		{
			name:     "ZeroCountdown",
			mutate:   func(c *Config) { c.Game.CountdownSeconds = 0 },
			errorMsg: "countdownSeconds must be at least 1",
		},
		{
			name:     "NegativeHeartbeat",
			mutate:   func(c *Config) { c.Game.HeartbeatInterval = -time.Second },
			errorMsg: "heartbeat interval and timeout must be positive",
		},
		{
			name: "HeartbeatIntervalNotShorterThanTimeout",
			mutate: func(c *Config) {
				c.Game.HeartbeatInterval = 30 * time.Second
				c.Game.HeartbeatTimeout = 30 * time.Second
			},
			errorMsg: "heartbeatInterval must be shorter than heartbeatTimeout",
		},
		{
			name:     "ZeroReconnectWindow",
			mutate:   func(c *Config) { c.Game.ReconnectWindow = 0 },
			errorMsg: "reconnectWindow must be positive",
		},
		{
			name:     "ZeroSendQueue",
			mutate:   func(c *Config) { c.Game.SendQueueSize = 0 },
			errorMsg: "sendQueueSize must be at least 1",
		},
		{
			name:     "TinyFrameLimit",
			mutate:   func(c *Config) { c.Game.MaxFrameBytes = 100 },
			errorMsg: "maxFrameBytes must be at least 256",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.errorMsg)
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := DefaultConfig()
	if addr := cfg.Addr(); addr != "0.0.0.0:8000" {
		t.Errorf("expected 0.0.0.0:8000, got %s", addr)
	}
	cfg.Server.Host = "::1"
	cfg.Server.Port = "9000"
	if addr := cfg.Addr(); addr != "[::1]:9000" {
		t.Errorf("expected bracketed IPv6 address, got %s", addr)
	}
}

func TestBuildLogger(t *testing.T) {
	for _, format := range []string{"json", "console", "text"} {
		log, err := BuildLogger(ServerSettings{LogLevel: "info", LogFormat: format})
		if err != nil {
			t.Fatalf("format %s: %v", format, err)
		}
		log.Sync()
	}

	if _, err := BuildLogger(ServerSettings{LogLevel: "loud", LogFormat: "json"}); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
