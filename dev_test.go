package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectWatchDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"a/b", ".git", "vendor/x", "testdata", "_skip"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	dirs, err := collectWatchDirs([]string{root + "/..."})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root, filepath.Join(root, "a"), filepath.Join(root, "a", "b")}, dirs)

	dirs, err = collectWatchDirs([]string{filepath.Join(root, "a"), filepath.Join(root, "a")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a")}, dirs, "非递归且去重")
}

func TestIsGeneratedFile(t *testing.T) {
	dir := t.TempDir()
	gen := filepath.Join(dir, "m_autofrom.go")
	src := filepath.Join(dir, "m.go")
	require.NoError(t, os.WriteFile(gen, []byte("// Code generated by autofrom. DO NOT EDIT.\n\npackage m\n"), 0o644))
	require.NoError(t, os.WriteFile(src, []byte("package m\n"), 0o644))

	assert.True(t, isGeneratedFile(gen))
	assert.False(t, isGeneratedFile(src))
	assert.False(t, isGeneratedFile(filepath.Join(dir, "missing.go")))

	r := &devRunner{}
	assert.True(t, r.hasGeneratedSibling(src))
	assert.False(t, r.hasGeneratedSibling(gen))
}
