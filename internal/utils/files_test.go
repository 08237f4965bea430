package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	taken := map[string]bool{}

	first := UniquePath(dir, "nfr", ".md", taken)
	assert.Equal(t, filepath.Join(dir, "nfr.md"), first)

	second := UniquePath(dir, "nfr", ".md", taken)
	assert.Equal(t, filepath.Join(dir, "nfr__2.md"), second)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))
	assert.Equal(t, filepath.Join(dir, "other__2.json"), UniquePath(dir, "other", ".json", nil))
}

func TestSafeWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, SafeWriteFile(path, []byte("hello")))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "nfr", BaseName("/data/nfr.csv"))
	assert.Equal(t, "promise", BaseName("promise.arff"))
}
