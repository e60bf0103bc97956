package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUserConfigCopiesDefaultOnce(t *testing.T) {
	defaultPath := filepath.Join(t.TempDir(), "default.yml")
	require.NoError(t, os.WriteFile(defaultPath, []byte("search:\n  keywords: default\n"), 0o644))

	dataDir := filepath.Join(t.TempDir(), "data")
	path, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "keywords: default")

	// an edited user copy survives later calls
	require.NoError(t, os.WriteFile(path, []byte("search:\n  keywords: edited\n"), 0o644))
	again, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	b, err = os.ReadFile(again)
	require.NoError(t, err)
	assert.Contains(t, string(b), "keywords: edited")
}

func TestEnsureUserConfigMissingDefault(t *testing.T) {
	_, err := EnsureUserConfig(t.TempDir(), filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
