package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// This file defines the configuration structures; loading is handled by
// viper in viper_config.go.

// Config is the full server configuration.
type Config struct {
	Server ServerSettings `yaml:"server"`
	Game   GameSettings   `yaml:"game"`
	PubSub PubSubSettings `yaml:"pubsub"`
}

// ServerSettings contains HTTP and process-wide settings.
type ServerSettings struct {
	Port      string `yaml:"port"`
	Host      string `yaml:"host"`
	PublicURL string `yaml:"publicUrl"` // base URL for join links and QR codes

	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"` // API middleware timeout; the socket path is exempt

	// Rate limiting (golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit"`      // requests per second per IP
	RateLimitBurst int     `yaml:"rateLimitBurst"` // burst size

	MaxRequestSize int64 `yaml:"maxRequestSize"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// GameSettings contains the coordinator and transport cadence. Defaults
// match the product behavior; tests shrink them.
type GameSettings struct {
	CountdownSeconds  int           `yaml:"countdownSeconds"`
	HeartbeatInterval time.Duration `yaml:"heartbeatInterval"`
	HeartbeatTimeout  time.Duration `yaml:"heartbeatTimeout"`
	ReconnectWindow   time.Duration `yaml:"reconnectWindow"`
	PodiumStepDelay   time.Duration `yaml:"podiumStepDelay"`
	PodiumFinalDelay  time.Duration `yaml:"podiumFinalDelay"`
	SendQueueSize     int           `yaml:"sendQueueSize"`
	MaxFrameBytes     int64         `yaml:"maxFrameBytes"`
}

// PubSubSettings configures the optional cross-instance fan-out fabric.
type PubSubSettings struct {
	URL string `yaml:"url"` // empty keeps the bus in-process
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Port:            "8000",
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  60 * time.Second,
			RateLimit:       10,
			RateLimitBurst:  20,
			MaxRequestSize:  1 << 20, // 1MB
			LogLevel:        "info",
			LogFormat:       "json",
		},
		Game: GameSettings{
			CountdownSeconds:  3,
			HeartbeatInterval: 15 * time.Second,
			HeartbeatTimeout:  30 * time.Second,
			ReconnectWindow:   10 * time.Second,
			PodiumStepDelay:   1 * time.Second,
			PodiumFinalDelay:  2 * time.Second,
			SendQueueSize:     256,
			MaxFrameBytes:     4096,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", c.Server.Port)
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HOST must not be empty")
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.Server.LogLevel)
	}
	switch c.Server.LogFormat {
	case "json", "console", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.Server.LogFormat)
	}

	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("rateLimit must be positive")
	}
	if c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("rateLimitBurst must be at least 1")
	}
	if c.Server.MaxRequestSize < 1024 {
		return fmt.Errorf("maxRequestSize must be at least 1024 bytes")
	}

	if c.Game.CountdownSeconds < 1 {
		return fmt.Errorf("countdownSeconds must be at least 1")
	}
	if c.Game.HeartbeatInterval <= 0 || c.Game.HeartbeatTimeout <= 0 {
		return fmt.Errorf("heartbeat interval and timeout must be positive")
	}
	if c.Game.HeartbeatInterval >= c.Game.HeartbeatTimeout {
		return fmt.Errorf("heartbeatInterval must be shorter than heartbeatTimeout")
	}
	if c.Game.ReconnectWindow <= 0 {
		return fmt.Errorf("reconnectWindow must be positive")
	}
	if c.Game.SendQueueSize < 1 {
		return fmt.Errorf("sendQueueSize must be at least 1")
	}
	if c.Game.MaxFrameBytes < 256 {
		return fmt.Errorf("maxFrameBytes must be at least 256")
	}
	return nil
}
