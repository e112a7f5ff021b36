package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLocalStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "submissions")
	fs, err := NewFileLocalStore(dir)
	require.NoError(t, err)

	id, p, err := fs.Add("solution.go", []byte("package main\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, id), p)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(b))

	name, gp, ok := fs.Get(id)
	require.True(t, ok)
	assert.Equal(t, "solution.go", name)
	assert.Equal(t, p, gp)
	assert.Equal(t, map[string]string{id: "solution.go"}, fs.List())

	assert.True(t, fs.Remove(id))
	assert.False(t, fs.Remove(id))
	_, _, ok = fs.Get(id)
	assert.False(t, ok)
	assert.Empty(t, fs.List())
}

func TestFileLocalStoreRejectsPaths(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileLocalStore(filepath.Join(dir, "store"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "outside"), nil, 0o644))

	_, _, ok := fs.Get("../outside")
	assert.False(t, ok)
	assert.False(t, fs.Remove("../outside"))
	assert.FileExists(t, filepath.Join(dir, "outside"))
}

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := generateID()
		require.NoError(t, err)
		assert.Len(t, id, 20)
		assert.NotContains(t, id, "=")
		assert.False(t, seen[id])
		seen[id] = true
	}
}
