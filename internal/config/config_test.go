package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultName, cfg.Name)
	assert.Equal(t, []string{"./..."}, cfg.Patterns)
	assert.False(t, cfg.Method)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
output: zz_generated.go
name: "{{.Source}}To{{.Target}}"
method: true
patterns:
  - ./models
`))
	require.NoError(t, err)
	assert.Equal(t, "zz_generated.go", cfg.Output)
	assert.Equal(t, "{{.Source}}To{{.Target}}", cfg.Name)
	assert.True(t, cfg.Method)
	assert.Equal(t, []string{"./models"}, cfg.Patterns)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown field", "outputs: x.go\n"},
		{"bad yaml", "output: [\n"},
		{"bad output", "output: generated.txt\n"},
		{"bad template", "name: \"{{.Target\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParse_ExpandEnv(t *testing.T) {
	t.Setenv("AUTOFROM_OUT", "custom_gen.go")
	cfg, err := Parse([]byte("output: ${AUTOFROM_OUT}\n"))
	require.NoError(t, err)
	assert.Equal(t, "custom_gen.go", cfg.Output)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("async: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Async)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "显式指定的文件必须存在")
}

func TestLoad_ImplicitMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ImplicitFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("verbose: true\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
}
