package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	globalLogger = slog.New(newHandler(&buf, Config{Level: "debug", Format: "json"}))
	t.Cleanup(func() { globalLogger = prev })

	ctx := ContextWithIDs(context.Background(), "req-1", "trace-1", "span-1")
	Info(ctx, "hello", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "trace-1", line["trace_id"])
	assert.Equal(t, "span-1", line["span_id"])
	assert.Equal(t, "v", line["k"])
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestRequestIDMissing(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
}

func TestLogDurationEmitsDebugWithDuration(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	globalLogger = slog.New(newHandler(&buf, Config{Level: "debug", Format: "json"}))
	t.Cleanup(func() { globalLogger = prev })

	done := LogDuration(context.Background(), "Upsert portfolio", "user_id", "demo-user")
	done()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "DEBUG", line["level"])
	assert.Equal(t, "Upsert portfolio", line["msg"])
	assert.Equal(t, "demo-user", line["user_id"])
	assert.Contains(t, line, "duration")
}
