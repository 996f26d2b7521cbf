package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/donutnomad/gg"
)

// mockGenerator 用于测试的生成器：为每个目标输出一个常量
type mockGenerator struct {
	*BaseGenerator
	fail map[string]error
}

type mockParams struct {
	Value  string `param:"name=value,required=true,default=,description=常量值"`
	Count  int    `param:"name=count,required=false,default=1,description=次数"`
	Output string `param:"name=output,required=false,default=,description=输出文件"`
}

func newMockGenerator(name string, annotations ...string) *mockGenerator {
	return &mockGenerator{
		BaseGenerator: NewBaseGeneratorWithParamsStruct(name, annotations, []TargetKind{TargetStruct}, mockParams{}),
	}
}

func (m *mockGenerator) Generate(ctx *GenerateContext) (*GenerateResult, error) {
	result := NewGenerateResult()
	defs := make(map[string]*gg.Generator)
	for _, t := range ctx.Targets {
		if err, ok := m.fail[t.Target.Name]; ok {
			result.AddError(err)
			continue
		}
		for i, p := range t.ParsedParams {
			params, ok := p.(mockParams)
			if !ok {
				continue
			}
			path := GetOutputPath(t.Target, params.Output, "$FILE_mock.go",
				ctx.GetPackageConfig(filepath.Dir(t.Target.FilePath)), m.Name(), ctx.DefaultOutput)
			gen, ok := defs[path]
			if !ok {
				gen = gg.New()
				gen.SetPackage(t.Target.PackageName)
				defs[path] = gen
			}
			gen.Body().Append(gg.String("const %s%d = %q", t.Target.Name, i, params.Value))
		}
	}
	for path, gen := range defs {
		result.AddDefinition(path, gen)
	}
	return result, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
