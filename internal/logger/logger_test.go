package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "spread.log")

	l := New(Options{App: "test-app", Env: "dev", Level: "info", File: file, Console: &console})
	l.Debug("hidden")
	l.Info("job spread", slog.Int64("offset", 42))
	require.NoError(t, Close(l))

	assert.Contains(t, console.String(), "job spread")
	assert.NotContains(t, console.String(), "hidden")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"job spread"`)
	assert.Contains(t, string(data), `"offset":42`)
	assert.Contains(t, string(data), `"app":"test-app"`)
}

func TestNew_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	l := New(Options{App: "a", Level: "debug", Console: &console})
	l.Debug("visible")

	assert.Contains(t, console.String(), "visible")
	assert.NoError(t, Close(l))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("trace"))
}
