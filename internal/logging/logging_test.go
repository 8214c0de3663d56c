package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleLevel(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	logger, cleanup, err := New(&stderr, Options{Level: "warn"})
	require.NoError(t, err)

	logger.Infof("hidden %d", 1)
	logger.Warnf("shown %d", 2)
	cleanup()

	assert.NotContains(t, stderr.String(), "hidden")
	assert.Contains(t, stderr.String(), "WARN shown 2")
}

func TestNew_Verbose(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	logger, cleanup, err := New(&stderr, Options{Level: "error", Verbose: true})
	require.NoError(t, err)

	logger.Debugf("details")
	cleanup()

	assert.Contains(t, stderr.String(), "DEBUG details")
}

func TestNew_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "soauto.log")

	var stderr bytes.Buffer
	logger, cleanup, err := New(&stderr, Options{Level: "info", File: path})
	require.NoError(t, err)

	logger.Debugf("debug goes to the file only")
	logger.Errorf("processing failed: %s", "orders.xlsx")
	cleanup()

	assert.NotContains(t, stderr.String(), "debug goes")

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "processing failed: orders.xlsx", entry["message"])
	assert.NotEmpty(t, entry["time"])
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, _, err := New(&bytes.Buffer{}, Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	t.Parallel()

	var logger Logger = Nop()
	logger.Infof("nothing")
}
