package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/tradeblocks/pkg/config"
)

func newTestLogger(buf *bytes.Buffer, level string) *Logger {
	cfg := config.Default()
	cfg.LogLevel = level
	return NewWithWriter(cfg, buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	line := strings.TrimSpace(strings.Split(buf.String(), "\n")[0])
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	return entry
}

func TestNewSetsGlobalLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			newTestLogger(&buf, tt.level)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, "debug")

	log.WithComponent("stats").
		WithFields(map[string]interface{}{"block_id": "b1", "entries": 3}).
		WithError(errors.New("boom")).
		Info("computed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "computed", entry["message"])
	assert.Equal(t, "stats", entry["component"])
	assert.Equal(t, "b1", entry["block_id"])
	assert.Equal(t, float64(3), entry["entries"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "development", entry["env"])
	assert.Equal(t, "info", entry["level"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, "warn")

	log.Debug("hidden")
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warnf("shown %d", 1)
	entry := decodeLine(t, &buf)
	assert.Equal(t, "shown 1", entry["message"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = "console"
	cfg.LogLevel = "info"

	NewWithWriter(cfg, &buf).WithField("symbol", "KOSPI").Info("benchmark loaded")

	out := buf.String()
	assert.Contains(t, out, "benchmark loaded")
	assert.Contains(t, out, "KOSPI")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithComponent("x").Errorf("ignored %s", "value")
	})
}
