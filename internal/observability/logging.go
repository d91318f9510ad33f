// Package observability provides structured logging for the crawler binaries.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cory-johannsen/hallcrawl/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger writing to cfg.Output
// (stderr when empty) or a non-nil error. A file Output with MaxSizeMB set
// is rotated.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	output := cfg.Output
	if output == "" {
		output = "stderr"
	}
	zapCfg.OutputPaths = []string{output}
	zapCfg.ErrorOutputPaths = []string{output}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Rotating() {
		return newRotatingLogger(zapCfg, cfg), nil
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// newRotatingLogger writes through lumberjack instead of zap's file sink.
func newRotatingLogger(zapCfg zap.Config, cfg config.LoggingConfig) *zap.Logger {
	var enc zapcore.Encoder
	if zapCfg.Encoding == "json" {
		enc = zapcore.NewJSONEncoder(zapCfg.EncoderConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(zapCfg.EncoderConfig)
	}
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Output,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	})
	core := zapcore.NewCore(enc, sink, zapCfg.Level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel), zap.ErrorOutput(sink))
}

// Session returns a child logger tagged with a session id. A session outlives
// its playthroughs (reset mints a new one), so callers log the current
// playthrough id per event instead of tagging it here.
func Session(logger *zap.Logger, sessionID string) *zap.Logger {
	return logger.With(zap.String("session", sessionID))
}
