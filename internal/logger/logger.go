// Package logger sets up the process-wide zap logger for the rawmesh
// commands: human-readable lines on the console and, optionally, JSON lines
// in a rotated log file.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Faultbox/rawmesh/internal/config"
)

// Log discards everything until Init.
var Log = zap.NewNop()

// Init replaces Log with a logger built from cfg. Console output goes to
// stderr so that commands printing to stdout stay pipeable.
func Init(cfg config.LoggingConfig) error {
	l, err := New(cfg, os.Stderr)
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// New builds a logger writing to console (nil disables it) and to
// cfg.LogFile when set. Levels are colored only when console is a file.
func New(cfg config.LoggingConfig, console io.Writer) (*zap.Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var cores []zapcore.Core

	if console != nil {
		levelEncoder := zapcore.CapitalLevelEncoder
		if _, ok := console.(*os.File); ok {
			levelEncoder = zapcore.CapitalColorLevelEncoder
		}
		enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			NameKey:          "logger",
			MessageKey:       "msg",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
			EncodeLevel:      levelEncoder,
			EncodeName:       zapcore.FullNameEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(console)), lvl))
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		w := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		})
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(w), lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// ParseLevel accepts the zap level names in any case, plus "warning".
// An empty level means info.
func ParseLevel(level string) (zapcore.Level, error) {
	l := strings.ToLower(level)
	if l == "warning" {
		l = "warn"
	}
	lvl, err := zapcore.ParseLevel(l)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log level %q: %w", level, err)
	}
	return lvl, nil
}

// Named returns a child of Log for one component.
func Named(name string) *zap.Logger {
	return Log.Named(name)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}
