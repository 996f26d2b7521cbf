package plugin

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scanFixture = `package models

// go:autofrom: -output ` + "`zz_gen.go`" + `

// Model1 源模型
type Model1 struct {
	ID int
}

// Model3 展示模型
// @AutoFrom(from=Model1)
// @AutoFrom(from=Model2)
type Model3 struct {
	ID int
}

type (
	// @AutoFrom(from=Model1)
	Grouped struct{ ID int }

	Plain struct{ ID int }
)

// @Converter
func ToMyString(s string) MyString { return MyString(s) }

// @Converter
func (m Model1) Convert(s string) MyString { return MyString(s) }

type MyString string
`

func TestScanner(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models.go"), scanFixture)
	writeFile(t, filepath.Join(dir, "models_test.go"), "package models\n\n// @AutoFrom(from=Model1)\ntype InTest struct{}\n")
	writeFile(t, filepath.Join(dir, "models_autofrom.go"), "// Code generated by autofrom. DO NOT EDIT.\n\npackage models\n\n// @AutoFrom(from=Model1)\ntype Generated struct{}\n")

	result, err := NewScanner(WithAnnotationFilter("AutoFrom", "Converter")).Scan(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, result.Structs, 2)
	model3 := result.Structs[0]
	assert.Equal(t, "Model3", model3.Target.Name)
	assert.Equal(t, TargetStruct, model3.Target.Kind)
	assert.Equal(t, "models", model3.Target.PackageName)
	assert.Len(t, model3.Annotations, 2)
	assert.Equal(t, "Model2", model3.Annotations[1].GetParam("from"))
	assert.Equal(t, 13, model3.Target.Position.Line)
	assert.Equal(t, "Grouped", result.Structs[1].Target.Name, "分组声明中的类型注解")

	require.Len(t, result.Funcs, 1)
	assert.Equal(t, "ToMyString", result.Funcs[0].Target.Name)

	require.Len(t, result.Methods, 1)
	assert.Equal(t, "Model1", result.Methods[0].Target.ReceiverType)
	assert.Equal(t, "m", result.Methods[0].Target.ReceiverName)

	cfg := result.PackageConfigs[dir]
	require.NotNil(t, cfg)
	assert.Equal(t, "zz_gen.go", cfg.DefaultOutput)

	assert.Len(t, result.ByAnnotation("Converter"), 2)
	assert.Len(t, result.All(), 4)
}

func TestScannerWithFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a\n\n// @Other\ntype A struct{}\n")

	result, err := ScanWithFilter(context.Background(), []string{"AutoFrom"}, dir)
	require.NoError(t, err)
	assert.Empty(t, result.All())

	result, err = Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, result.Structs, 1)
}

func TestScannerRecursive(t *testing.T) {
	dir := t.TempDir()
	src := "package p\n\n// @AutoFrom(from=X)\ntype T struct{}\n"
	writeFile(t, filepath.Join(dir, "root.go"), src)
	writeFile(t, filepath.Join(dir, "sub", "sub.go"), src)
	writeFile(t, filepath.Join(dir, "testdata", "skip.go"), src)
	writeFile(t, filepath.Join(dir, "_hidden", "skip.go"), src)
	writeFile(t, filepath.Join(dir, "vendor", "skip.go"), src)

	scanner := NewScanner(WithWorkers(2))

	result, err := scanner.Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, result.Structs, 1, "非递归只扫描当前目录")

	result, err = scanner.Scan(context.Background(), dir+"/...")
	require.NoError(t, err)
	assert.Len(t, result.Structs, 2)

	result, err = scanner.Scan(context.Background(), filepath.Join(dir, "sub", "sub.go"))
	require.NoError(t, err)
	assert.Len(t, result.Structs, 1)

	_, err = scanner.Scan(context.Background(), filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestScanner_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a\n\n// @AutoFrom(from=X)\ntype A struct{}\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScanner().Scan(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuickMatchFile(t *testing.T) {
	dir := t.TempDir()
	withAnn := filepath.Join(dir, "a.go")
	withDirective := filepath.Join(dir, "b.go")
	without := filepath.Join(dir, "c.go")
	writeFile(t, withAnn, "package a\n// @AutoFrom(from=X)\ntype A struct{}\n")
	writeFile(t, withDirective, "package a\n//go:autofrom: -output x.go\n")
	writeFile(t, without, "package a\nvar s = \"@AutoFrom\"\n")

	scanner := NewScanner(WithAnnotationFilter("AutoFrom"))
	for path, want := range map[string]bool{withAnn: true, withDirective: true, without: false} {
		got, err := scanner.QuickMatchFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}

	_, err := scanner.QuickMatchFile(filepath.Join(dir, "missing.go"))
	assert.Error(t, err)
}

func TestParseDirectiveLine(t *testing.T) {
	cfg := parseDirectiveLine("-output `$FILE_gen.go` plugin:AutoFrom -output \"zz gen.go\"", "/tmp/p/a.go")
	require.NotNil(t, cfg)
	assert.Equal(t, "/tmp/p", cfg.PackageDir)
	assert.Equal(t, "$FILE_gen.go", cfg.DefaultOutput)
	assert.Equal(t, "zz gen.go", cfg.GetPluginOutput("autofrom"))
	assert.Equal(t, "$FILE_gen.go", cfg.GetPluginOutput("other"))

	assert.Nil(t, parseDirectiveLine("plugin:x", "/tmp/p/a.go"))

	var nilCfg *PackageConfig
	assert.Equal(t, "", nilCfg.GetPluginOutput("x"))
}

func TestMergePackageConfig(t *testing.T) {
	configs := map[string]*PackageConfig{}
	mergePackageConfig(configs, &PackageConfig{PackageDir: "/p", DefaultOutput: "a.go", PluginOutputs: map[string]string{}})
	mergePackageConfig(configs, &PackageConfig{PackageDir: "/p", PluginOutputs: map[string]string{"autofrom": "b.go"}})

	cfg := configs["/p"]
	assert.Equal(t, "a.go", cfg.DefaultOutput)
	assert.Equal(t, "b.go", cfg.GetPluginOutput("autofrom"))
}
