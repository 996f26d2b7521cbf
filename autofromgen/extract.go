package autofromgen

import (
	"errors"
	"fmt"
	"go/parser"
	"strings"

	"github.com/donutnomad/autofrom/automap"
	"github.com/donutnomad/autofrom/internal/structparse"
)

// tagKey 字段覆盖指令使用的 struct tag
const tagKey = "autofrom"

// defaultPrefix 唯一支持的指令
const defaultPrefix = "default="

// parseFieldDirective 解析字段 tag 中的 autofrom 指令
// autofrom:"default=<expr>"，default= 之后的全部文本都是表达式
func parseFieldDirective(field structparse.FieldInfo) (automap.Directive, error) {
	value, ok := field.Lookup(tagKey)
	if !ok {
		return nil, nil
	}

	expr, ok := strings.CutPrefix(strings.TrimSpace(value), defaultPrefix)
	if !ok {
		key, _, _ := strings.Cut(value, "=")
		return nil, fmt.Errorf("%s: 字段 %s 的 %s 指令 %q 不支持，只支持 default=<表达式>", field.Pos, field.Name, tagKey, key)
	}

	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%s: 字段 %s 的 default 表达式为空", field.Pos, field.Name)
	}
	if _, err := parser.ParseExpr(expr); err != nil {
		return nil, fmt.Errorf("%s: 字段 %s 的 default 表达式 %q 不是合法的 Go 表达式: %w", field.Pos, field.Name, expr, err)
	}

	return automap.DefaultValue{Expr: expr}, nil
}

// extractSchema 把解析后的结构体转换为 Schema
// 无效的指令会被丢弃并在 error 中汇报，Schema 始终返回
func extractSchema(info *structparse.StructInfo) (*automap.Schema, error) {
	schema := &automap.Schema{
		Name:    info.Name,
		Package: info.PackageName,
		Pos:     info.Pos,
		Fields:  make([]automap.Field, 0, len(info.Fields)),
	}

	var errs []error
	for _, f := range info.Fields {
		directive, err := parseFieldDirective(f)
		if err != nil {
			errs = append(errs, err)
		}
		schema.Fields = append(schema.Fields, automap.Field{
			Name:      f.Name,
			Type:      automap.TypeRef(f.Type),
			Directive: directive,
			Pos:       f.Pos,
		})
	}

	return schema, errors.Join(errs...)
}

// loadedPackage 一个包目录的结构体集合与转换函数表
type loadedPackage struct {
	info        *structparse.PackageInfo
	universe    *automap.Universe
	extractErrs map[string]error // 结构体名 -> 指令错误
	converters  *ConverterTable
}

// loadPackage 解析包目录并构建 Universe
func loadPackage(ctx *structparse.ParseContext, dir string) (*loadedPackage, error) {
	info, err := ctx.ParsePackage(dir)
	if err != nil {
		return nil, err
	}

	pkg := &loadedPackage{
		info:        info,
		extractErrs: make(map[string]error),
		converters:  NewConverterTable(),
	}

	schemas := make([]*automap.Schema, 0, len(info.Structs))
	for _, s := range info.Structs {
		schema, err := extractSchema(s)
		if err != nil {
			pkg.extractErrs[s.Name] = err
		}
		schemas = append(schemas, schema)
	}

	pkg.universe, err = automap.NewUniverse(schemas...)
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

// structInfo 按名称查找结构体的解析信息
func (p *loadedPackage) structInfo(name string) *structparse.StructInfo {
	s, _ := p.info.Struct(name)
	return s
}
