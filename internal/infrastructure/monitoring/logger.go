// Package monitoring provides the zap-backed logger implementation and
// Prometheus metrics for the analytics API.
package monitoring

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pulsemetrics/analytics-api/internal/config"
	"github.com/pulsemetrics/analytics-api/pkg/constants"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

type zapLogger struct {
	l *zap.Logger
}

// NewZapLogger creates a production JSON logger from the log configuration.
func NewZapLogger(cfg *config.LogConfig) (logger.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)

	return &zapLogger{zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))}, nil
}

func (z *zapLogger) Debug(ctx context.Context, msg string, fields ...logger.Field) {
	z.l.Debug(msg, z.convertFields(ctx, fields)...)
}

func (z *zapLogger) Info(ctx context.Context, msg string, fields ...logger.Field) {
	z.l.Info(msg, z.convertFields(ctx, fields)...)
}

func (z *zapLogger) Warn(ctx context.Context, msg string, fields ...logger.Field) {
	z.l.Warn(msg, z.convertFields(ctx, fields)...)
}

func (z *zapLogger) Error(ctx context.Context, msg string, err error, fields ...logger.Field) {
	zapFields := z.convertFields(ctx, fields)
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	z.l.Error(msg, zapFields...)
}

func (z *zapLogger) Fatal(ctx context.Context, msg string, err error, fields ...logger.Field) {
	zapFields := z.convertFields(ctx, fields)
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	z.l.Fatal(msg, zapFields...)
}

func (z *zapLogger) WithComponent(component string) logger.Logger {
	return &zapLogger{z.l.With(zap.String("component", component))}
}

func (z *zapLogger) convertFields(ctx context.Context, fields []logger.Field) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)+1)
	if ctx != nil {
		if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok {
			zapFields = append(zapFields, zap.String("request_id", requestID))
		}
	}
	for _, f := range fields {
		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}
	return zapFields
}
