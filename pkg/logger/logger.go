package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"studentportal/pkg/config"
	"studentportal/pkg/trace"
)

var Log *zap.Logger

// NewLogger builds the process logger. Production JSON output unless cfg.Development is set.
func NewLogger(cfg config.LogConfig) *zap.Logger {
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err == nil {
			zcfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	l, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	Log = l
	return l
}

// WithTrace returns logger annotated with the trace_id carried by ctx, if any.
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	traceID := trace.FromContext(ctx)
	if traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}
