package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestLoggerEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo})

	log.Info("http request",
		String("method", "GET"),
		Int("status", 200),
		Int64("duration_ms", time.Second.Milliseconds()),
		Bool("cached", false),
	)

	out := logLine(t, &buf)
	assert.Equal(t, "INFO", out["level"])
	assert.Equal(t, "http request", out["message"])

	fields, ok := out["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, float64(200), fields["status"])
	assert.Equal(t, float64(1000), fields["duration_ms"])
	assert.Equal(t, false, fields["cached"])
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelWarn})

	log.Debug("hidden")
	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestLoggerWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo}).
		With(UserID("u-1"), EventType("quiz_completed"))

	log.Info("evaluation complete", Int("unlocked", 2))

	out := logLine(t, &buf)
	fields := out["fields"].(map[string]any)
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, "quiz_completed", fields["event_type"])
	assert.Equal(t, float64(2), fields["unlocked"])
}

func TestErrFieldHandlesNil(t *testing.T) {
	assert.Nil(t, Err(nil).Value)
	assert.Equal(t, "boom", Err(errors.New("boom")).Value)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}
