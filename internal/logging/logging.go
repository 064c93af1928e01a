// Package logging builds the zap loggers shared by the scan pipeline.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Key constants for structured log fields.
const (
	KeyComponent = "component"
	KeyRunID     = "run_id"
	KeyPath      = "path"
)

// New returns a logger writing to stderr.
// format: "json" or "console" (default "console")
// level: "debug", "info", "warn", "error" (default "info")
func New(format, level string) *zap.Logger {
	return NewWithWriter(format, level, os.Stderr)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(format, level string, w io.Writer) *zap.Logger {
	if w == nil {
		w = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if strings.EqualFold(format, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), ParseLevel(level))
	return zap.New(core)
}

// Component returns a child logger tagged with the component name.
// A nil parent yields a no-op logger.
func Component(parent *zap.Logger, name string) *zap.Logger {
	if parent == nil {
		return zap.NewNop()
	}
	return parent.With(zap.String(KeyComponent, name))
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
