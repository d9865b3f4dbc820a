// Package observability holds the CLI's structured logging setup.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger for CLI commands.
//
// Defaults to a no-op logger so packages can log before InitCLILogger runs
// (e.g. during flag parsing failures).
var CLILogger = zap.NewNop()

// InitCLILogger configures the CLI logger.
//
// level is a zap level name ("debug", "info", "warn", "error"); format is
// "json" or "console". Logs go to stderr so stdout stays clean for JSONL
// output.
func InitCLILogger(level, format string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	CLILogger = logger
	return nil
}

// Sync flushes buffered log entries. Call before process exit.
func Sync() {
	_ = CLILogger.Sync()
}
