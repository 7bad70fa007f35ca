// Package logging builds the zap logger shared by the server and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level and sinks of the logger.
type Options struct {
	Level string // debug, info, warn, error; empty means info
	File  string // optional rotating log file
	Debug bool   // adds development behavior (DPanic panics, stack traces on warn)

	// Console receives the console core. Defaults to os.Stderr so that
	// command output on stdout stays machine-readable.
	Console io.Writer

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a logger with a JSON console core and, when opts.File is set,
// a second JSON core writing to a size-rotated file.
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Debug && level > zapcore.DebugLevel {
		level = zapcore.DebugLevel
	}

	enc := zapcore.NewJSONEncoder(encoderConfig())
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(console), level)}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    nz(opts.MaxSizeMB, 100),
			MaxBackups: nz(opts.MaxBackups, 3),
			MaxAge:     nz(opts.MaxAgeDays, 7),
		}
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.AddSync(lj), level))
	}

	zopts := []zap.Option{zap.AddCaller()}
	if opts.Debug {
		zopts = append(zopts, zap.Development())
	}
	return zap.New(zapcore.NewTee(cores...), zopts...), nil
}

// ParseLevel maps a configuration string to a zap level. An empty string
// means info.
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("parsing log level: %w", err)
	}
	return level, nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func nz(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
