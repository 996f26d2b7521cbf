package pkgresolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newProject 创建一个临时模块，gg 目录的包名是 g2
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/proj\n\ngo 1.22\n")
	writeFile(t, filepath.Join(root, "gg", "gg.go"), "package g2\n\ntype Type int\n")
	writeFile(t, filepath.Join(root, "gg", "gg_test.go"), "package g2_test\n")
	writeFile(t, filepath.Join(root, "models", "user.go"), "package models\n")
	return root
}

func TestPackageNameResolver_StdLib(t *testing.T) {
	resolver := NewPackageNameResolver("")

	tests := []struct {
		importPath string
		want       string
	}{
		{"fmt", "fmt"},
		{"net/http", "http"},
		{"encoding/json", "json"},
		{"math/rand/v2", "rand"},
	}

	for _, tt := range tests {
		t.Run(tt.importPath, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.GetPackageName(tt.importPath))
		})
	}
}

func TestPackageNameResolver_IsStdLib(t *testing.T) {
	resolver := NewPackageNameResolver("")
	assert.True(t, resolver.IsStdLib("time"))
	assert.True(t, resolver.IsStdLib("go/ast"))
	assert.False(t, resolver.IsStdLib("github.com/samber/lo"))
	assert.False(t, resolver.IsStdLib("nosuchstdpkg"))
}

func TestPackageNameResolver_ProjectInternal(t *testing.T) {
	root := newProject(t)
	resolver := NewPackageNameResolver(root)

	assert.Equal(t, "example.com/proj", resolver.ModulePath())
	assert.Equal(t, "g2", resolver.GetPackageName("example.com/proj/gg"), "包名与目录名不一致")
	assert.Equal(t, "models", resolver.GetPackageName("example.com/proj/models"))
}

func TestPackageNameResolver_Fallback(t *testing.T) {
	t.Setenv("GOMODCACHE", t.TempDir())
	resolver := NewPackageNameResolver(newProject(t))

	assert.Equal(t, "yaml", resolver.GetPackageName("gopkg.in/yaml.v3"))
	assert.Equal(t, "sprig", resolver.GetPackageName("github.com/Masterminds/sprig/v3"))
	assert.Equal(t, "runewidth", resolver.GetPackageName("github.com/mattn/go-runewidth"))
	assert.Equal(t, "", resolver.GetPackageName(""))
}

func TestPackageNameResolver_ModCache(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("GOMODCACHE", cache)
	writeFile(t, filepath.Join(cache, "github.com", "!xuanwo", "gg@v0.1.0", "gg.go"), "package gg\n")
	writeFile(t, filepath.Join(cache, "github.com", "!xuanwo", "gg@v0.1.0", "inner", "x.go"), "package innerpkg\n")

	resolver := NewPackageNameResolver("")
	assert.Equal(t, "gg", resolver.GetPackageName("github.com/Xuanwo/gg"))
	assert.Equal(t, "innerpkg", resolver.GetPackageName("github.com/Xuanwo/gg/inner"))
}

func TestPackageNameResolver_Cache(t *testing.T) {
	root := newProject(t)
	resolver := NewPackageNameResolver(root)

	assert.Equal(t, "g2", resolver.GetPackageName("example.com/proj/gg"))
	require.NoError(t, os.RemoveAll(filepath.Join(root, "gg")))
	assert.Equal(t, "g2", resolver.GetPackageName("example.com/proj/gg"), "第二次命中缓存")
	assert.Equal(t, 1, resolver.cache.Len())
}

func TestAssumedPackageName(t *testing.T) {
	tests := []struct {
		importPath string
		want       string
	}{
		{"fmt", "fmt"},
		{"github.com/samber/lo", "lo"},
		{"github.com/google/go-cmp/cmp", "cmp"},
		{"github.com/mattn/go-runewidth", "runewidth"},
		{"gopkg.in/yaml.v3", "yaml"},
		{"github.com/Masterminds/sprig/v3", "sprig"},
		{"example.com/foo-bar", "foo"},
	}

	for _, tt := range tests {
		t.Run(tt.importPath, func(t *testing.T) {
			assert.Equal(t, tt.want, AssumedPackageName(tt.importPath))
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := newProject(t)

	got, err := FindProjectRoot(filepath.Join(root, "models"))
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(root)
	gotEval, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotEval)
}

func TestPackageFileReader_ReadPackageName(t *testing.T) {
	reader := &PackageFileReader{}
	root := newProject(t)

	name, err := reader.ReadPackageName(filepath.Join(root, "gg"))
	require.NoError(t, err)
	assert.Equal(t, "g2", name)

	empty := filepath.Join(root, "empty")
	require.NoError(t, os.MkdirAll(empty, 0o755))
	_, err = reader.ReadPackageName(empty)
	assert.Error(t, err)
}
