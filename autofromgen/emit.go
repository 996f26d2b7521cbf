package autofromgen

import (
	"fmt"
	"go/parser"
	"slices"
	"strings"

	"github.com/donutnomad/gg"
	"github.com/samber/lo"

	"github.com/donutnomad/autofrom/automap"
	"github.com/donutnomad/autofrom/internal/structparse"
	"github.com/donutnomad/autofrom/internal/utils"
	"github.com/donutnomad/autofrom/internal/xast"
)

// srcParam 生成函数的参数名
const srcParam = "src"

// conversionUnit 一个待输出的转换函数
type conversionUnit struct {
	target     *structparse.StructInfo
	spec       *automap.ConversionSpec
	funcName   string
	method     bool
	converters *ConverterTable
}

// methodName 目标类型上的方法名：From<Source>
func (u *conversionUnit) methodName() string {
	return "From" + u.spec.Source
}

// nameData 构造函数名模板可用的变量
type nameData struct {
	Target  string
	Source  string
	Package string
}

// renderFuncName 渲染构造函数名并校验是否为合法标识符
func renderFuncName(tmpl string, spec *automap.ConversionSpec) (string, error) {
	name, err := utils.ExecuteTemplate(tmpl, nameData{
		Target:  spec.Target,
		Source:  spec.Source,
		Package: spec.Package,
	})
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if !utils.IsValidIdent(name) {
		return "", fmt.Errorf("模板 %q 生成的函数名 %q 不是合法的 Go 标识符", tmpl, name)
	}
	return name, nil
}

// renderValue 输出单个字段的取值表达式，同时返回表达式中用到的包限定符
func (u *conversionUnit) renderValue(b automap.Binding) (string, []string) {
	v := b.Value
	switch v.Kind {
	case automap.ValueDefault:
		expr, err := parser.ParseExpr(v.Expr)
		if err != nil {
			return v.Expr, nil
		}
		return v.Expr, xast.Qualifiers(expr)
	case automap.ValueConvert:
		read := srcParam + "." + v.SourceField
		if v.SourceType == v.TargetType {
			return read, nil
		}
		if c, ok := u.converters.Lookup(v.SourceType, v.TargetType); ok {
			return c.Name + "(" + read + ")", nil
		}
		var qualifiers []string
		if f, ok := u.target.Field(b.Field); ok {
			qualifiers = f.Qualifiers
		}
		typ := v.TargetType.String()
		if xast.NeedsParens(typ) {
			return "(" + typ + ")(" + read + ")", qualifiers
		}
		return typ + "(" + read + ")", qualifiers
	default:
		return "", nil
	}
}

// render 渲染全部字段，返回复合字面量与所需导入
func (u *conversionUnit) render() (string, []structparse.ImportInfo) {
	var sb strings.Builder
	var qualifiers []string

	sb.WriteString(u.spec.Target)
	sb.WriteString("{")
	if len(u.spec.Bindings) > 0 {
		sb.WriteString("\n")
	}
	for _, b := range u.spec.Bindings {
		expr, qs := u.renderValue(b)
		qualifiers = append(qualifiers, qs...)
		fmt.Fprintf(&sb, "%s: %s,\n", b.Field, expr)
	}
	sb.WriteString("}")

	var imports []structparse.ImportInfo
	for _, q := range lo.Uniq(qualifiers) {
		// 不是导入的限定符（如包级变量的选择器）不处理
		if imp, ok := u.target.ImportFor(q); ok {
			imports = append(imports, imp)
		}
	}
	return sb.String(), imports
}

// generateDefinition 为同一输出文件的一组转换生成 gg 定义
func generateDefinition(units []*conversionUnit) (*gg.Generator, error) {
	if len(units) == 0 {
		return nil, fmt.Errorf("没有目标需要生成")
	}

	gen := gg.New()
	gen.SetPackage(units[0].target.PackageName)

	bodies := make([]string, len(units))
	var imports []structparse.ImportInfo
	for i, u := range units {
		var imps []structparse.ImportInfo
		bodies[i], imps = u.render()
		imports = append(imports, imps...)
	}
	slices.SortFunc(imports, func(a, b structparse.ImportInfo) int {
		return strings.Compare(a.ImportPath, b.ImportPath)
	})
	for _, imp := range slices.Compact(imports) {
		if imp.Alias != "" {
			gen.PAlias(imp.ImportPath, imp.Alias)
		} else {
			gen.P(imp.ImportPath)
		}
	}

	for i, u := range units {
		if i > 0 {
			gen.Body().AddLine()
		}
		generateUnit(gen, u, bodies[i])
	}
	return gen, nil
}

// generateUnit 输出构造函数，以及可选的 From<Source> 方法
func generateUnit(gen *gg.Generator, u *conversionUnit, literal string) {
	source, target := u.spec.Source, u.spec.Target

	gen.Body().Append(gg.S("// %s converts a %s value into a %s.", u.funcName, source, target))
	gen.Body().NewFunction(u.funcName).
		AddParameter(srcParam, source).
		AddResult("", target).
		AddBody(gg.Return(gg.S("%s", literal)))

	if !u.method {
		return
	}

	receiver := utils.ReceiverName(target)
	gen.Body().AddLine()
	gen.Body().Append(gg.S("// %s overwrites %s with the conversion of src.", u.methodName(), receiver))
	gen.Body().NewFunction(u.methodName()).
		WithReceiver(receiver, "*"+target).
		AddParameter(srcParam, source).
		AddBody(gg.S("*%s = %s(%s)", receiver, u.funcName, srcParam))
}
