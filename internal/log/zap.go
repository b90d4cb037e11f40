package log

import (
	"context"

	"go.uber.org/zap"

	"github.com/twistlock-tools/twistq/pkg/types"
)

// zapLogger implements types.Logger on top of a zap.Logger.
type zapLogger struct {
	logger *zap.Logger
}

// contextKey is the key type used to store the logger in the context.
type contextKey string

const loggerKey contextKey = "logger"

// NewLogger returns the logger stored in ctx, or a new production zap
// logger writing to stderr. Query results go to stdout, so diagnostics
// must not.
// This func will panic if the context is nil or if it cannot create a new logger.
func NewLogger(ctx context.Context) types.Logger {
	if ctx == nil {
		panic("ctx cannot be nil")
	}
	if logger, ok := ctx.Value(loggerKey).(types.Logger); ok {
		return logger
	}
	zapLoggerInstance, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return &zapLogger{logger: zapLoggerInstance}
}

// WithLogger returns a new context with the logger set.
// This func will panic if the context is nil.
func WithLogger(ctx context.Context, logger types.Logger) context.Context {
	if ctx == nil {
		panic("ctx cannot be nil")
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// zapFields keeps only the zap.Field values out of the variadic args.
func zapFields(fields []interface{}) []zap.Field {
	var out []zap.Field
	for _, field := range fields {
		if zf, ok := field.(zap.Field); ok {
			out = append(out, zf)
		}
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...interface{}) {
	l.logger.Debug(msg, zapFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...interface{}) {
	l.logger.Info(msg, zapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...interface{}) {
	l.logger.Warn(msg, zapFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...interface{}) {
	l.logger.Error(msg, zapFields(fields)...)
}

func (l *zapLogger) Fatalf(msg string, fields ...interface{}) {
	l.logger.Fatal(msg, zapFields(fields)...)
}
