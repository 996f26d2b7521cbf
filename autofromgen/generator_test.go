package autofromgen

import (
	"context"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/autofrom/plugin"
)

const modelsFixture = `package models

import "time"

type MyString string

// @Converter
func ToMyString(s string) MyString { return MyString(s) }

type Model1 struct {
	ID    int
	Name  string
	Attrs []string
}

// @AutoFrom(from=Model1, method=true)
type Model2 struct {
	ID      int64
	Name    MyString
	Attrs   []string
	Timeout time.Duration ` + "`autofrom:\"default=time.Second\"`" + `
}

// @AutoFrom(from=Model1)
type Model3 struct {
	ID       int ` + "`autofrom:\"default=0\"`" + `
	Name     string
	Attrs    []string
	Metadata map[string]string ` + "`autofrom:\"default=map[string]string{}\"`" + `
}
`

func newTestRegistry(opts ...Option) *plugin.Registry {
	registry := plugin.NewRegistry()
	registry.MustRegister(NewAutoFromGenerator(opts...))
	return registry
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func run(t *testing.T, dir string, opts ...Option) (*plugin.RunStats, error) {
	t.Helper()
	return plugin.RunWithOptionsAndStats(context.Background(), &plugin.RunOptions{
		Registry: newTestRegistry(opts...),
		Patterns: []string{dir},
		NoOutput: true,
	})
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// typeCheck 对目录下全部 .go 文件做类型检查
func typeCheck(t *testing.T, dir string) {
	t.Helper()
	fset := token.NewFileSet()
	matches, err := filepath.Glob(filepath.Join(dir, "*.go"))
	require.NoError(t, err)

	var files []*ast.File
	for _, m := range matches {
		f, err := parser.ParseFile(fset, m, nil, parser.ParseComments)
		require.NoError(t, err)
		files = append(files, f)
	}

	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	_, err = conf.Check("models", fset, files, nil)
	require.NoError(t, err)
}

func TestGenerate_Models(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models.go"), modelsFixture)

	stats, err := run(t, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TargetCount, "两个结构体一个转换函数")
	assert.Equal(t, 1, stats.FileCount)
	assert.Equal(t, 1, stats.WarningCount, "Model3.ID 的 default 覆盖同名字段")

	out := readOutput(t, filepath.Join(dir, "models_autofrom.go"))
	assert.Contains(t, out, plugin.GeneratedHeader)
	assert.Contains(t, out, "package models")
	assert.Contains(t, out, `"time"`)

	assert.Contains(t, out, "func NewModel2FromModel1(src Model1) Model2 {")
	assert.Regexp(t, `ID:\s+int64\(src\.ID\),`, out)
	assert.Regexp(t, `Name:\s+ToMyString\(src\.Name\),`, out)
	assert.Regexp(t, `Attrs:\s+src\.Attrs,`, out)
	assert.Regexp(t, `Timeout:\s+time\.Second,`, out)
	assert.Contains(t, out, "func (m *Model2) FromModel1(src Model1) {")
	assert.Contains(t, out, "*m = NewModel2FromModel1(src)")

	assert.Contains(t, out, "func NewModel3FromModel1(src Model1) Model3 {")
	assert.Regexp(t, `Metadata:\s+map\[string\]string\{\},`, out)
	assert.NotContains(t, out, "func (m *Model3)", "Model3 未启用 method")

	// 字段按目标声明顺序输出
	model3 := out[strings.Index(out, "func NewModel3FromModel1"):]
	assert.Less(t, strings.Index(model3, "ID:"), strings.Index(model3, "Name:"))
	assert.Less(t, strings.Index(model3, "Attrs:"), strings.Index(model3, "Metadata:"))

	// 声明顺序：Model2 在 Model3 之前
	assert.Less(t, strings.Index(out, "NewModel2FromModel1(src"), strings.Index(out, "NewModel3FromModel1(src"))

	typeCheck(t, dir)
}

func TestGenerate_Stable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models.go"), modelsFixture)

	_, err := run(t, dir)
	require.NoError(t, err)
	first := readOutput(t, filepath.Join(dir, "models_autofrom.go"))

	_, err = run(t, dir)
	require.NoError(t, err, "生成的文件不参与下一次扫描")
	assert.Equal(t, first, readOutput(t, filepath.Join(dir, "models_autofrom.go")))

	err = plugin.RunWithOptions(context.Background(), &plugin.RunOptions{
		Registry: newTestRegistry(),
		Patterns: []string{dir},
		Check:    true,
	})
	assert.NoError(t, err, "-check 与已生成内容一致")
}

func TestGenerate_SourceInGeneratedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "user.pb.go"), `// Code generated by protoc-gen-go. DO NOT EDIT.
// source: user.proto

package models

type UserDTO struct {
	ID   int64
	Name string
}
`)
	writeFile(t, filepath.Join(dir, "user.go"), `package models

// @AutoFrom(from=UserDTO)
type User struct {
	ID   int64
	Name string
}
`)

	stats, err := run(t, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)

	out := readOutput(t, filepath.Join(dir, "user_autofrom.go"))
	assert.Contains(t, out, "func NewUserFromUserDTO(src UserDTO) User {")
	assert.Contains(t, out, "// NewUserFromUserDTO converts a UserDTO value into a User.")
	assert.Regexp(t, `Name:\s+src\.Name,`, out)

	typeCheck(t, dir)
}

func TestGenerate_BlankFieldsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "padded.go"), `package models

type Header struct {
	_    [4]byte
	Size int
	_    int
}

// @AutoFrom(from=Header)
type Frame struct {
	_    [4]byte
	Size int
}
`)

	_, err := run(t, dir)
	require.NoError(t, err)

	out := readOutput(t, filepath.Join(dir, "padded_autofrom.go"))
	assert.NotContains(t, out, "src._")
	assert.Regexp(t, `Size:\s+src\.Size,`, out)

	typeCheck(t, dir)
}

func TestGenerate_MissingFieldsAreCollected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models.go"), modelsFixture+`
// @AutoFrom(from=Model1)
type Broken struct {
	ID    int
	Email string
	Phone string
}
`)

	stats, err := run(t, dir)
	require.Error(t, err)
	assert.Equal(t, 2, stats.ErrorCount, "Email 与 Phone 各一条")

	out := readOutput(t, filepath.Join(dir, "models_autofrom.go"))
	assert.NotContains(t, out, "Broken", "失败的结构体不生成代码")
	assert.Contains(t, out, "NewModel3FromModel1", "其余结构体照常生成")
}

func TestGenerate_UnknownReference(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), `package a

// @AutoFrom(from=model1)
type A struct {
	ID int
}

type Model1 struct {
	ID int
}
`)

	stats, err := run(t, dir)
	require.Error(t, err)
	assert.Equal(t, 1, stats.ErrorCount)
	assert.Zero(t, stats.FileCount)
	_, statErr := os.Stat(filepath.Join(dir, "a_autofrom.go"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_MutualPair(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pair.go"), `package pair

// @AutoFrom(from=B)
type A struct {
	X int
	Y string
}

// @AutoFrom(from=A)
type B struct {
	X int
	Y string
}
`)

	_, err := run(t, dir)
	require.NoError(t, err)

	out := readOutput(t, filepath.Join(dir, "pair_autofrom.go"))
	assert.Contains(t, out, "func NewAFromB(src B) A {")
	assert.Contains(t, out, "func NewBFromA(src A) B {")
}

func TestGenerate_MultipleAnnotations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "multi.go"), `package multi

type V1 struct {
	ID int
}

type V2 struct {
	ID   int
	Name string
}

// @AutoFrom(from=V1)
// @AutoFrom(from=V2, name=From{{.Source}})
type Current struct {
	ID int
}
`)

	_, err := run(t, dir)
	require.NoError(t, err)

	out := readOutput(t, filepath.Join(dir, "multi_autofrom.go"))
	assert.Contains(t, out, "func NewCurrentFromV1(src V1) Current {")
	assert.Contains(t, out, "func FromV2(src V2) Current {")
}

func TestGenerate_Options(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "opt.go"), `package opt

type S struct {
	ID int
}

// @AutoFrom(from=S)
type T struct {
	ID int
}

// @AutoFrom(from=S, method=false)
type U struct {
	ID int
}
`)

	_, err := run(t, dir, WithNameTemplate("{{.Target}}Of{{.Source}}"), WithMethod(true))
	require.NoError(t, err)

	out := readOutput(t, filepath.Join(dir, "opt_autofrom.go"))
	assert.Contains(t, out, "func TOfS(src S) T {")
	assert.Contains(t, out, "func (t *T) FromS(src S) {")
	assert.Contains(t, out, "func UOfS(src S) U {")
	assert.NotContains(t, out, "func (u *U)", "注解参数优先于默认值")
}

func TestGenerate_OutputDirective(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), `// go:autofrom: -output zz_conv.go
package a

type S struct {
	ID int
}

// @AutoFrom(from=S)
type T struct {
	ID int
}

// @AutoFrom(from=S, output=$FILE_u.go)
type U struct {
	ID int
}
`)

	_, err := run(t, dir)
	require.NoError(t, err)

	assert.Contains(t, readOutput(t, filepath.Join(dir, "zz_conv.go")), "func NewTFromS(src S) T {")
	assert.Contains(t, readOutput(t, filepath.Join(dir, "a_u.go")), "func NewUFromS(src S) U {")
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name: "generic target",
			src: `type S struct{ ID int }

// @AutoFrom(from=S)
type T[X any] struct{ ID int }
`,
			wantErr: "泛型",
		},
		{
			name: "generic source",
			src: `type S[X any] struct{ ID int }

// @AutoFrom(from=S)
type T struct{ ID int }
`,
			wantErr: "泛型",
		},
		{
			name: "bad directive",
			src: `type S struct{ ID int }

// @AutoFrom(from=S)
type T struct {
	ID int ` + "`autofrom:\"omit\"`" + `
}
`,
			wantErr: "不支持",
		},
		{
			name: "missing from",
			src: `type S struct{ ID int }

// @AutoFrom(name=X)
type T struct{ ID int }
`,
			wantErr: "from",
		},
		{
			name: "invalid name",
			src: `type S struct{ ID int }

// @AutoFrom(from=S, name=1abc)
type T struct{ ID int }
`,
			wantErr: "标识符",
		},
		{
			name: "duplicate func name",
			src: `type S struct{ ID int }

// @AutoFrom(from=S, name=Conv)
type T struct{ ID int }

// @AutoFrom(from=S, name=Conv)
type U struct{ ID int }
`,
			wantErr: "重复",
		},
		{
			name: "converter on method",
			src: `type S struct{ ID int }

// @Converter
func (S) Conv(v int) int { return v }
`,
			wantErr: "方法",
		},
		{
			name: "duplicate converter",
			src: `type MyInt int

// @Converter
func A(v int) MyInt { return MyInt(v) }

// @Converter
func B(v int) MyInt { return MyInt(v) }
`,
			wantErr: "重复",
		},
		{
			name: "autofrom on func",
			src: `type S struct{ ID int }

// @AutoFrom(from=S)
func F() {}
`,
			wantErr: "只能用于结构体",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "p.go"), "package p\n\n"+tt.src)

			var buf strings.Builder
			old := plugin.Logger
			plugin.Logger = plugin.NewLogger(&buf, false)
			t.Cleanup(func() { plugin.Logger = old })

			stats, err := run(t, dir)
			require.Error(t, err)
			assert.NotZero(t, stats.ErrorCount)
			assert.Contains(t, buf.String(), tt.wantErr)
		})
	}
}

func TestGenerate_ErrorHasPosition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.go")
	writeFile(t, path, `package p

type S struct{ ID int }

// @AutoFrom(from=S)
type T struct {
	ID    int
	Email string
}
`)

	var buf strings.Builder
	old := plugin.Logger
	plugin.Logger = plugin.NewLogger(&buf, false)
	t.Cleanup(func() { plugin.Logger = old })

	_, err := run(t, dir)
	require.Error(t, err)
	assert.Regexp(t, regexp.QuoteMeta(path)+`:8:2: T\.Email 在 S 中没有同名字段`, buf.String())
}
