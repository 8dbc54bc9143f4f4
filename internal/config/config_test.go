package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig("/tmp/project")
	assert.Equal(t, filepath.Join("/tmp/project", ".hermes.db"), cfg.DBPath)
	assert.Equal(t, time.Duration(0), cfg.ReindexInterval)
	assert.Equal(t, 60*time.Second, cfg.Search.ResultCacheTTL)
	assert.Equal(t, 256, cfg.Search.ResultCacheCapacity)
	assert.Equal(t, 50, cfg.Search.FetchCacheCapacity)
	assert.NotEmpty(t, cfg.ProjectID)
}

func TestLoadMergesProjectFile(t *testing.T) {
	dir := t.TempDir()
	yamlContent := "project_id: my-project\nreindex_interval: 30s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hermes.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "my-project", cfg.ProjectID)
	assert.Equal(t, 30*time.Second, cfg.ReindexInterval)
}

func TestLoadAppliesEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HERMES_PROJECT_ID", "env-project")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-project", cfg.ProjectID)
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := NewConfig("/tmp/project")
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestDeriveProjectIDStable(t *testing.T) {
	a := DeriveProjectID("/tmp/x")
	b := DeriveProjectID("/tmp/x")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}
