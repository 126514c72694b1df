package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, Config{Level: "info", Format: "json"})

	logger.Debug("hidden")
	logger.Info("job submitted", slog.String("job_id", "abc"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "job submitted", entry["msg"])
	assert.Equal(t, "abc", entry["job_id"])
}

func TestConsoleFormatWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, Config{Level: "debug", NoColor: true})

	logger.Debug("status poll", slog.Int("progress", 40))

	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "status poll")
	assert.Contains(t, out, "progress=40")
	assert.NotContains(t, out, "\x1b[")
}

func TestFileOutputCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reel.log")
	logger, err := New(Config{Level: "warn", Output: path})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("status poll failed", slog.String("job_id", "j1"))
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "job_id=j1")
	assert.NotContains(t, out, "\x1b[", "file output must be uncolored")
}

func TestCloseWithoutFile(t *testing.T) {
	logger, err := New(Config{Output: "stderr"})
	require.NoError(t, err)
	assert.NoError(t, logger.Close())

	var nilLogger *Logger
	assert.NoError(t, nilLogger.Close())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}
