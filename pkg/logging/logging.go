// Package logging builds the zap loggers used by the airdrop tool.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment fallbacks for an empty level or encoding
const (
	LevelEnv    = "LOG_LEVEL"
	EncodingEnv = "LOG_ENCODING"
)

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// New builds a production logger writing to stderr so that command output
// on stdout stays parseable. Encoding is "json" or "console".
func New(level, encoding string) (*zap.Logger, error) {
	if level == "" {
		level = env(LevelEnv, "info")
	}
	if encoding == "" {
		encoding = env(EncodingEnv, "console")
	}

	cfg := zap.NewProductionConfig()
	switch encoding {
	case "json", "console":
		cfg.Encoding = encoding
	default:
		return nil, fmt.Errorf("unknown log encoding %q", encoding)
	}

	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.Development = true
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// one summary line per check, never sample them away
	cfg.Sampling = nil

	return cfg.Build()
}
