package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper.
// Priority order: environment variables > config file > defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/trivion")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bare names kept for deployment convenience alongside the structured
	// TRIVION-style keys.
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.publicurl", "PUBLIC_URL")
	v.BindEnv("server.loglevel", "LOG_LEVEL")
	v.BindEnv("server.logformat", "LOG_FORMAT")
	v.BindEnv("server.ratelimit", "RATE_LIMIT")
	v.BindEnv("server.ratelimitburst", "RATE_LIMIT_BURST")
	v.BindEnv("server.maxrequestsize", "MAX_REQUEST_SIZE")
	v.BindEnv("pubsub.url", "PUBSUB_URL")

	def := DefaultConfig()
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.publicurl", "")
	v.SetDefault("server.readtimeout", def.Server.ReadTimeout)
	v.SetDefault("server.writetimeout", def.Server.WriteTimeout)
	v.SetDefault("server.idletimeout", def.Server.IdleTimeout)
	v.SetDefault("server.shutdowntimeout", def.Server.ShutdownTimeout)
	v.SetDefault("server.requesttimeout", def.Server.RequestTimeout)
	v.SetDefault("server.ratelimit", def.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", def.Server.RateLimitBurst)
	v.SetDefault("server.maxrequestsize", def.Server.MaxRequestSize)
	v.SetDefault("server.loglevel", def.Server.LogLevel)
	v.SetDefault("server.logformat", def.Server.LogFormat)

	v.SetDefault("game.countdownseconds", def.Game.CountdownSeconds)
	v.SetDefault("game.heartbeatinterval", def.Game.HeartbeatInterval)
	v.SetDefault("game.heartbeattimeout", def.Game.HeartbeatTimeout)
	v.SetDefault("game.reconnectwindow", def.Game.ReconnectWindow)
	v.SetDefault("game.podiumstepdelay", def.Game.PodiumStepDelay)
	v.SetDefault("game.podiumfinaldelay", def.Game.PodiumFinalDelay)
	v.SetDefault("game.sendqueuesize", def.Game.SendQueueSize)
	v.SetDefault("game.maxframebytes", def.Game.MaxFrameBytes)

	v.SetDefault("pubsub.url", "")

	// The config file is optional; env vars and defaults carry a bare
	// deployment.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !strings.Contains(err.Error(), "no such file or directory") {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
