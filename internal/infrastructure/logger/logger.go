package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the process-wide logger. Level is one of debug, info,
// warn, error; Format is json or console; Output is stdout, stderr, or a
// file path.
type Config struct {
	Level      string
	Format     string
	Output     string
	TimeFormat string
}

// New builds the root zap logger. Callers are annotated and errors carry
// stack traces so a failed sync run can be traced to its call site.
func New(cfg *Config) (*zap.Logger, error) {
	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:         encoding(cfg.Format),
		OutputPaths:      []string{outputPath(cfg.Output)},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    encoderConfig(cfg),
	}
	return zc.Build()
}

func parseLevel(level string) zapcore.Level {
	if l, err := zapcore.ParseLevel(strings.ToLower(level)); err == nil {
		return l
	}
	return zapcore.InfoLevel
}

func encoding(format string) string {
	if format == "console" {
		return "console"
	}
	return "json"
}

// outputPath maps the configured output onto a zap sink URL. Anything that
// is not stdout or stderr is treated as a file path.
func outputPath(output string) string {
	switch strings.ToLower(output) {
	case "", "stdout":
		return "stdout"
	case "stderr":
		return "stderr"
	default:
		return output
	}
}

func encoderConfig(cfg *Config) zapcore.EncoderConfig {
	encodeTime := zapcore.ISO8601TimeEncoder
	if cfg.TimeFormat != "" {
		encodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	}
	ec := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     encodeTime,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if cfg.Format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return ec
}
