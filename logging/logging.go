// Package logging builds zap loggers for the worker and for task output sinks.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output destinations.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputFile   = "file"
	OutputBoth   = "both" // stderr and file
)

// Config describes a logger. The zero value logs WARN and above to stderr
// with the console encoder.
type Config struct {
	Level      string `json:"level,omitempty" yaml:"level,omitempty"`   // debug, info, warn, error
	Format     string `json:"format,omitempty" yaml:"format,omitempty"` // console, json
	Output     string `json:"output,omitempty" yaml:"output,omitempty"` // stderr, stdout, file, both
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSize    int    `json:"maxSize,omitempty" yaml:"maxSize,omitempty"` // MB
	MaxBackups int    `json:"maxBackups,omitempty" yaml:"maxBackups,omitempty"`
	MaxAge     int    `json:"maxAge,omitempty" yaml:"maxAge,omitempty"` // days
}

// DefaultLevel is used when Config.Level is empty.
const DefaultLevel = zapcore.WarnLevel

// ParseLevel returns the zap level for text, falling back to DefaultLevel.
func ParseLevel(text string) zapcore.Level {
	if text == "" {
		return DefaultLevel
	}
	level, err := zapcore.ParseLevel(strings.ToLower(text))
	if err != nil {
		return DefaultLevel
	}
	return level
}

// Resolve returns a copy of c whose relative File is anchored at baseDir.
// When a file is configured without an explicit output, the file is used.
func (c Config) Resolve(baseDir string) Config {
	if c.File != "" && !filepath.IsAbs(c.File) && baseDir != "" {
		c.File = filepath.Join(baseDir, c.File)
	}
	if c.Output == "" && c.File != "" {
		c.Output = OutputFile
	}
	return c
}

// New creates a logger for cfg.
func New(cfg *Config) (*zap.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a logger for cfg where stderr output goes to w.
func NewWithWriter(cfg *Config, w io.Writer) (*zap.Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level := ParseLevel(cfg.Level)
	encoder := newEncoder(cfg.Format)

	var cores []zapcore.Core
	switch cfg.Output {
	case "", OutputStderr:
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(w), level))
	case OutputStdout:
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	case OutputFile, OutputBoth:
		if cfg.File == "" {
			return nil, fmt.Errorf("logging output %q requires a file", cfg.Output)
		}
		if cfg.Output == OutputBoth {
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(w), level))
		}
		writer := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(writer), level))
	default:
		return nil, fmt.Errorf("unsupported logging output: %s", cfg.Output)
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

func newEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}
