package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "RequirementText", c.TextColumn)
	assert.Equal(t, "class", c.ClassColumn)
	assert.Equal(t, "ProjectID", c.ProjectColumn)
	assert.Equal(t, 0.95, c.Quantile)
	assert.Equal(t, 60, c.WaffleColumns)
	assert.Equal(t, "count", c.Sort)
	assert.Equal(t, "markdown", c.Format)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quantile: 0.9\nwaffle_columns: 40\n"), 0o644))
	t.Setenv("NFRSCOPE_WAFFLE_COLUMNS", "25")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, c.Quantile)
	assert.Equal(t, 25, c.WaffleColumns)
}

func TestLoadRejectsInvalidQuantile(t *testing.T) {
	isolate(t)
	t.Setenv("NFRSCOPE_QUANTILE", "1.5")
	_, err := Load("")
	assert.Error(t, err)
}

func TestSaveAndReload(t *testing.T) {
	home := isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("quantile", "0.8"))
	require.NoError(t, c.Set("delimiter", ";"))
	require.NoError(t, c.Set("strict_labels", "true"))
	require.NoError(t, Save(c, ""))

	_, err = os.Stat(filepath.Join(home, ".nfrscope", "config.yaml"))
	require.NoError(t, err)

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.8, again.Quantile)
	assert.Equal(t, ";", again.Delimiter)
	assert.True(t, again.StrictLabels)
}

func TestSetRejectsBadValues(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Error(t, c.Set("nope", "1"))
	assert.Error(t, c.Set("waffle_columns", "many"))
	assert.Error(t, c.Set("format", "pdf"))
	assert.Error(t, c.Set("delimiter", ":"))
	assert.Contains(t, Keys(), "quantile")
}
