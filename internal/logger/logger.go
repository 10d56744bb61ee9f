// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package logger builds the zap.Logger memtrack's diagnostic sink logs
// through, grounded on
// fxnlabs-function-node/internal/logger.New(verbosity).
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger that appends to filename, or to standard
// output if filename is empty or cannot be opened, per spec.md §6's
// LogFilename fallback rule.
func New(filename string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if filename == "" {
		cfg.OutputPaths = []string{"stdout"}
		return cfg.Build()
	}
	cfg.OutputPaths = []string{filename}
	log, err := cfg.Build()
	if err != nil {
		cfg.OutputPaths = []string{"stdout"}
		return cfg.Build()
	}
	return log, nil
}
