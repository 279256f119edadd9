package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_FailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	logFile := filepath.Join(dir, "api.log")
	t.Setenv("HANDLERS_FILE", filepath.Join(dir, "missing.yaml"))
	t.Setenv("LOG_FILE", logFile)

	assert.Equal(t, 1, run())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api exited")
}

func TestRun_BadConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "staging")

	assert.Equal(t, 1, run())
}
