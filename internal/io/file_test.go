package ioutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a", "b", "tracks.db")

	require.NoError(t, EnsureParentDir(file))

	info, err := os.Stat(filepath.Join(root, "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent
	assert.NoError(t, EnsureParentDir(file))
}

func TestEnsureParentDir_BareName(t *testing.T) {
	assert.NoError(t, EnsureParentDir("tracks.db"))
}
