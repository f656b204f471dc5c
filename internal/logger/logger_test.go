package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture installs a JSON logger for the test and returns its output buffer
func capture(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	InitLoggerWithWriter(NewConfig(level, "json", "forge-test", "1.2.3", "test", false), &buf)
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestJSONLogging_CarriesServiceAttributes(t *testing.T) {
	buf := capture(t, "info")

	slog.Info("item crafted", "recipe_id", 4, "output_id", 91)

	entry := decodeLine(t, buf)
	assert.Equal(t, "forge-test", entry[AttrKeyService])
	assert.Equal(t, "1.2.3", entry[AttrKeyVersion])
	assert.Equal(t, "test", entry[AttrKeyEnvironment])
	assert.Equal(t, "item crafted", entry["msg"])
	assert.Equal(t, float64(4), entry["recipe_id"])
}

func TestFromContext_Tags(t *testing.T) {
	buf := capture(t, "debug")

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithCaller(ctx, "alice")
	ctx = WithJob(ctx, "event_log_cleanup")

	FromContext(ctx).Info("hello")

	entry := decodeLine(t, buf)
	assert.Equal(t, "req-123", entry[AttrKeyRequestID])
	assert.Equal(t, "alice", entry[AttrKeyCallerID])
	assert.Equal(t, "event_log_cleanup", entry[AttrKeyJob])

	caller, ok := CallerFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", caller)
}

func TestFromContext_Untagged(t *testing.T) {
	buf := capture(t, "info")

	FromContext(context.Background()).Info("plain")

	entry := decodeLine(t, buf)
	assert.NotContains(t, entry, AttrKeyRequestID)
	assert.NotContains(t, entry, AttrKeyCallerID)

	_, ok := RequestIDFromContext(WithRequestID(context.Background(), ""))
	assert.False(t, ok, "empty ids are ignored")
	assert.NotEmpty(t, GenerateRequestID())
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, "warn")

	slog.Info("dropped")
	assert.Zero(t, buf.Len())

	slog.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestConfig_LogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, Config{Level: tt.level}.LogLevel())
		})
	}
}

func TestNewHandler_ShortensSource(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewConfig("info", "json", "svc", "dev", "dev", true)
	slog.New(cfg.NewHandler(&buf)).Info("with source")

	entry := decodeLine(t, &buf)
	src, ok := entry[slog.SourceKey].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "logger/logger_test.go", src["file"])
	assert.False(t, strings.HasPrefix(src["file"].(string), "/"))
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, IsDevelopment("dev"))
	assert.True(t, IsDevelopment("Development"))
	assert.False(t, IsDevelopment("prod"))
}
