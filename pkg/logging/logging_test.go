package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	t.Parallel()

	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	t.Parallel()

	l := New("debug").With("test", true)
	ctx := IntoContext(context.Background(), l)

	assert.Same(t, l, FromContext(ctx))
}

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level   string
		enabled slog.Level
		muted   slog.Level
	}{
		{level: "debug", enabled: slog.LevelDebug, muted: slog.LevelDebug - 1},
		{level: "", enabled: slog.LevelInfo, muted: slog.LevelDebug},
		{level: "WARN", enabled: slog.LevelWarn, muted: slog.LevelInfo},
		{level: "error", enabled: slog.LevelError, muted: slog.LevelWarn},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			l := New(tt.level)
			assert.True(t, l.Enabled(context.Background(), tt.enabled))
			assert.False(t, l.Enabled(context.Background(), tt.muted))
		})
	}
}

func TestPrintfLogger_WritesFormattedMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	PrintfLogger{L: l, Level: slog.LevelWarn}.Printf("slow query %dms\n", 250)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "slow query 250ms", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
}

func TestPrintfLogger_RespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "error")

	PrintfLogger{L: l, Level: slog.LevelWarn}.Printf("ignored")
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelWarn, ParseLevel(" Warning "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
