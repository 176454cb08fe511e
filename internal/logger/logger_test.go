package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Every entry written by the JSON logger is a single structured object
// carrying level, timestamp and message.
func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("log entries are JSON with level, timestamp and message", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := NewJSON(&buf, zapcore.DebugLevel)

			switch level {
			case "debug":
				logger.Debug(message)
			case "warn":
				logger.Warn(message)
			case "error":
				logger.Error(message)
			default:
				logger.Info(message)
			}
			logger.Sync()

			line := strings.SplitN(buf.String(), "\n", 2)[0]
			var entry map[string]interface{}
			if err := json.Unmarshal([]byte(line), &entry); err != nil {
				return false
			}

			if entry["level"] != level {
				return false
			}
			if _, ok := entry["timestamp"]; !ok {
				return false
			}
			return entry["message"] == message
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNewJSON_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSON(&buf, zapcore.WarnLevel)

	logger.Info("dropped")
	logger.Warn("kept", zap.String("resource", "product"))
	logger.Sync()

	out := buf.String()
	require.NotContains(t, out, "dropped")
	require.Contains(t, out, `"resource":"product"`)
}

func TestForRequest_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSON(&buf, zapcore.InfoLevel)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	ForRequest(ctx, base).Info("handled")
	ForRequest(context.Background(), base).Info("anonymous")
	base.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"request_id":"req-42"`)
	require.NotContains(t, lines[1], "request_id")
}

func TestNew_BuildsForEveryEnvironment(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := New(env)
		require.NoError(t, err)
		require.NotNil(t, logger)
	}
}
