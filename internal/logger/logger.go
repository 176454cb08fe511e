package logger

import (
	"context"
	"io"
	"os"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates the dashboard's structured logger. Production builds emit
// JSON; everything else uses the colored console encoder.
func New(env string) (*zap.Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.Encoding = "json"
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Always log to stdout for container compatibility
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("service", "storefront-admin")), nil
}

// NewJSON builds a JSON logger writing to w at the given level.
func NewJSON(w io.Writer, level zapcore.Level) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(w), level)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))
}

// NewWithDefaults creates a logger from SERVER_ENV, falling back to a
// production logger if the configured one cannot be built.
func NewWithDefaults() *zap.Logger {
	env := os.Getenv("SERVER_ENV")
	if env == "" {
		env = "development"
	}

	logger, err := New(env)
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}

// ForRequest tags the logger with the chi request id carried by ctx.
func ForRequest(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if id := middleware.GetReqID(ctx); id != "" {
		return logger.With(zap.String("request_id", id))
	}
	return logger
}
