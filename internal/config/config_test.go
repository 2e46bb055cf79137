package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tqmend.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := writeConfig(t, `
endpoint: http://localhost:8890/sparql
retries: 2
columns:
  sparql: query
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8890/sparql", cfg.Endpoint)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, "query", cfg.Columns.SPARQL)

	// Untouched fields keep their defaults.
	assert.Equal(t, 25, cfg.TimeoutSeconds)
	assert.Equal(t, "question", cfg.Columns.Question)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "timeout_seconds: -5\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadRejectsEmptyEndpoint(t *testing.T) {
	path := writeConfig(t, `endpoint: ""`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "endpoint: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 25*time.Second, cfg.Timeout())
	assert.Equal(t, 800*time.Millisecond, cfg.Backoff())
	assert.Equal(t, 50*time.Millisecond, cfg.Pause())
}
