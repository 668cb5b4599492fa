package logger

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

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	require.NoError(t, err)

	l.Debug("被过滤")
	l.Info("副本状态变更", "from", "available", "to", "checked_out")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "副本状态变更", entry["msg"])
	assert.Equal(t, "checked_out", entry["to"])
}

func TestNew_ConsoleWithCaller(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "debug", Format: "console", EnableCaller: true, Writer: &buf})
	require.NoError(t, err)

	l.Debug("hello")
	assert.Contains(t, buf.String(), "logger_test.go")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "catalog.log")
	l, err := New(Config{Output: path})
	require.NoError(t, err)

	l.Info("written")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}
