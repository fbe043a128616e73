package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docvault/internal/config"
)

// EncoderConfig returns the JSON-lines encoder shared by the process logger and the
// request logger: "ts" in RFC3339Nano for the given location, lowercase "level", "msg".
func EncoderConfig(loc *time.Location) zapcore.EncoderConfig {
	if loc == nil {
		loc = time.UTC
	}
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "msg"
	enc.LevelKey = "level"
	enc.EncodeLevel = zapcore.LowercaseLevelEncoder
	enc.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}
	enc.EncodeDuration = zapcore.MillisDurationEncoder
	return enc
}

// New builds the process logger from configuration. Output goes to stdout.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load log timezone %q: %w", cfg.Timezone, err)
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	return NewWithWriter(os.Stdout, level, cfg.Format, loc), nil
}

// NewWithWriter builds a logger writing to w. format is "json" or "console".
func NewWithWriter(w io.Writer, level zapcore.Level, format string, loc *time.Location) *zap.Logger {
	encCfg := EncoderConfig(loc)
	var enc zapcore.Encoder
	if format == "console" {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller())
}
