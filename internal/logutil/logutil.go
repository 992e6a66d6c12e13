// Package logutil builds the zap logger used by the drivers and the CLI.
//
// Logs go to stderr. stdout carries result lines only and is parsed by
// callers of the run subcommand.
package logutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// LogConfig is the [log] section of the configuration file.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`

	// Filename, when set, adds a rotating file sink next to stderr.
	Filename   string `toml:"filename"`
	MaxSize    int    `toml:"max-size"`
	MaxDays    int    `toml:"max-days"`
	MaxBackups int    `toml:"max-backups"`
}

// DefaultLogConfig logs info and above to stderr in console format.
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info", Format: FormatConsole, MaxSize: 64}
}

// Validate reports an unknown level or format.
func (cfg *LogConfig) Validate() error {
	if _, err := cfg.getLevel(); err != nil {
		return err
	}
	switch cfg.format() {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("unsupported log format %q (expected %s|%s)", cfg.Format, FormatConsole, FormatJSON)
	}
	if cfg.MaxSize < 0 || cfg.MaxDays < 0 || cfg.MaxBackups < 0 {
		return fmt.Errorf("log rotation settings must not be negative")
	}
	return nil
}

// New builds a logger writing to stderr, plus the rotating file when
// cfg.Filename is set.
func New(cfg LogConfig) (*zap.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with the console sink redirected to w.
func NewWithWriter(cfg LogConfig, w io.Writer) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.getLevel()
	cores := make([]zapcore.Core, 0, 2)
	for _, s := range cfg.getSinks(w) {
		cores = append(cores, zapcore.NewCore(s.enc, s.out, level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.FatalLevel)), nil
}

type sink struct {
	enc zapcore.Encoder
	out zapcore.WriteSyncer
}

func (cfg *LogConfig) getSinks(w io.Writer) []sink {
	enc := cfg.getEncoder()
	sinks := []sink{{enc: enc, out: zapcore.Lock(zapcore.AddSync(w))}}
	if cfg.Filename != "" {
		sinks = append(sinks, sink{enc: enc.Clone(), out: zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxDays,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		})})
	}
	return sinks
}

func (cfg *LogConfig) getLevel() (zap.AtomicLevel, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("unsupported log level %q", cfg.Level)
	}
	return lvl, nil
}

func (cfg *LogConfig) format() string {
	if cfg.Format == "" {
		return FormatConsole
	}
	return strings.ToLower(cfg.Format)
}

func (cfg *LogConfig) getEncoder() zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder
	if cfg.format() == FormatJSON {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}
