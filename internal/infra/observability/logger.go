package observability

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a structured zap logger.
// Always uses production base (no stacktraces on Warn).
// debug level → colorized console; otherwise → compact JSON.
func NewLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}

// APICall describes one completed outbound request.
type APICall struct {
	Operation string
	Method    string
	Path      string
	Status    int // 0 when no response was received
	Latency   time.Duration
	RequestID string
	Err       error
}

// LogAPICall logs an outbound request with zap.
// Uses Warn for 4xx, Error for 5xx and transport failures, Debug otherwise.
func LogAPICall(logger *zap.Logger, call APICall) {
	fields := []zap.Field{
		zap.String("operation", call.Operation),
		zap.String("method", call.Method),
		zap.String("path", call.Path),
		zap.Int("status", call.Status),
		zap.Duration("latency", call.Latency),
		zap.String("request_id", call.RequestID),
	}
	if call.Err != nil {
		fields = append(fields, zap.Error(call.Err))
	}

	switch {
	case call.Status == 0 && call.Err != nil:
		logger.Error("api request failed", fields...)
	case call.Status >= 500:
		logger.Error("api request", fields...)
	case call.Status >= 400:
		logger.Warn("api request", fields...)
	default:
		logger.Debug("api request", fields...)
	}
}
