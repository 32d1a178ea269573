package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "missing.txt")))
	assert.False(t, FileExists(dir), "directories are not files")
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(filepath.Join(dir, "missing")))
}

func TestResolveDir(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "sub"), 0755))

	resolved, err := ResolveDir(base, "sub")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "sub"), resolved)

	resolved, err = ResolveDir(base, filepath.Join(base, "sub"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "sub"), resolved)

	_, err = ResolveDir(base, "missing")
	assert.Error(t, err)

	_, err = ResolveDir(base, "")
	assert.Error(t, err)
}

func TestIsYAMLFile(t *testing.T) {
	assert.True(t, IsYAMLFile("lint.yml"))
	assert.True(t, IsYAMLFile("dir/lint.yaml"))
	assert.False(t, IsYAMLFile("lint.json"))
	assert.False(t, IsYAMLFile("lint"))
}
