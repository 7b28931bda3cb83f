package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BuildLogger constructs the process logger from the log settings. "json"
// is the production encoding; "console" and "text" both select the
// human-readable one.
func BuildLogger(s ServerSettings) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if s.LogFormat == "console" || s.LogFormat == "text" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zcfg.Build()
}
