package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewBaseLogger("production", "debug", "")
	base.SetOutput(&buf)

	logger := NewLogrusLogger(base, "chat")
	logger.Warn("stream failed", "conversation_id", 7, "error", errors.New("boom"))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "stream failed", line["message"])
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "chat", line["service"])
	assert.Equal(t, float64(7), line["conversation_id"])
	assert.Equal(t, "boom", line["error"])
}

func TestLogrusLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	base := NewBaseLogger("", "warn", "json")
	base.SetOutput(&buf)

	logger := NewLogrusLogger(base, "registry")
	logger.Info("hidden")
	logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	logger.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestToFieldsDanglingKey(t *testing.T) {
	fields := toFields([]interface{}{"a", 1, "b"})
	assert.Equal(t, logrus.Fields{"a": 1, "b": nil}, fields)
}

func TestNewLoggerTestEnv(t *testing.T) {
	t.Setenv("ENV", "test")
	_, ok := NewLogger("x").(*NoOpLogger)
	assert.True(t, ok)
}
