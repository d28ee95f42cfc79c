package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvironmentFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("POKEDEX_TEST_LOADED=yes\nPOKEDEX_TEST_KEPT=from-file\n"), 0o644))

	t.Setenv("POKEDEX_TEST_KEPT", "from-process")
	t.Setenv("POKEDEX_TEST_LOADED", "")
	os.Unsetenv("POKEDEX_TEST_LOADED")

	require.NoError(t, LoadEnvironmentFiles(filepath.Join(dir, "missing.env"), envFile))

	env := GetEnvironmentVariables()
	assert.Equal(t, "yes", env["POKEDEX_TEST_LOADED"])
	assert.Equal(t, "from-process", env["POKEDEX_TEST_KEPT"])
}
