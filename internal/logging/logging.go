// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the zap logger used for diagnostics. Stage progress
// and summaries are plain text on stdout; zap carries skip details, warnings,
// and errors on stderr.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/cardio-medqa/pkg/types"
)

// New returns a logger writing to ws at cfg.Level in cfg.Format.
func New(cfg types.LoggingConfig, ws zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging level: %w", err)
	}

	var enc zapcore.Encoder
	switch cfg.Format {
	case "json":
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	case "console", "":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		enc = zapcore.NewConsoleEncoder(ec)
	default:
		return nil, fmt.Errorf("logging format %q: use console or json", cfg.Format)
	}

	return zap.New(zapcore.NewCore(enc, ws, level)), nil
}

// Install builds a logger for cfg on ws and makes it the global logger used
// through zap.S(). The returned function flushes buffered entries.
func Install(cfg types.LoggingConfig, ws zapcore.WriteSyncer) (func(), error) {
	logger, err := New(cfg, ws)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return func() { _ = logger.Sync() }, nil
}
