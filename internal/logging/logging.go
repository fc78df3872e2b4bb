// Package logging builds the process logger: the logr API on top of a zap
// core, writing to stderr and optionally to a rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures New.
type Options struct {
	Debug  bool   // Enables V(1) messages
	Format string // console or json; empty means console
	File   string // Optional log file, rotated by size

	// Stderr replaces os.Stderr; used in tests.
	Stderr io.Writer
}

// New returns a logger and a flush function to call before exit.
func New(opts Options) (logr.Logger, func() error, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Debug {
		// logr V(1) maps to zap level -1.
		level.SetLevel(zapcore.Level(-1))
	}

	var enc zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "", FormatConsole:
		enc = zapcore.NewConsoleEncoder(encoderConfig())
	case FormatJSON:
		enc = zapcore.NewJSONEncoder(encoderConfig())
	default:
		return logr.Discard(), noop, fmt.Errorf("unknown log format %q (want %s or %s)", opts.Format, FormatConsole, FormatJSON)
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(stderr), level)}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return logr.Discard(), noop, fmt.Errorf("failed to create log directory: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		// Files always get JSON so they can be shipped as-is.
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(file), level))
	}

	zl := zap.New(zapcore.NewTee(cores...))
	return zapr.NewLogger(zl), zl.Sync, nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}

func noop() error { return nil }
