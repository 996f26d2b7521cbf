package autofromgen

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/donutnomad/autofrom/automap"
	"github.com/donutnomad/autofrom/internal/xast"
	"github.com/donutnomad/autofrom/plugin"
)

// Converter 用户声明的转换函数 func(From) To
type Converter struct {
	Name string
	From automap.TypeRef
	To   automap.TypeRef
	Pos  token.Position
}

type converterKey struct {
	from, to automap.TypeRef
}

// ConverterTable 包内转换函数表，按 (源类型, 目标类型) 文本查找
type ConverterTable struct {
	byKey map[converterKey]Converter
}

func NewConverterTable() *ConverterTable {
	return &ConverterTable{byKey: make(map[converterKey]Converter)}
}

// Register 注册转换函数，同一对类型只能注册一次
func (t *ConverterTable) Register(c Converter) error {
	key := converterKey{from: c.From, to: c.To}
	if existing, ok := t.byKey[key]; ok {
		return fmt.Errorf("%s: 转换函数 %s 与 %s (%s) 重复: 都是 %s -> %s", c.Pos, c.Name, existing.Name, existing.Pos, c.From, c.To)
	}
	t.byKey[key] = c
	return nil
}

// Lookup 查找 from -> to 的转换函数
func (t *ConverterTable) Lookup(from, to automap.TypeRef) (Converter, bool) {
	if t == nil {
		return Converter{}, false
	}
	c, ok := t.byKey[converterKey{from: from, to: to}]
	return c, ok
}

func (t *ConverterTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byKey)
}

// converterFromTarget 从 @Converter 注解的函数提取转换函数
// 只接受非泛型包级函数，且恰好一个参数一个返回值
func converterFromTarget(target *plugin.Target) (Converter, error) {
	if target.Kind == plugin.TargetMethod {
		return Converter{}, fmt.Errorf("%s: @%s 不能用于方法 %s.%s", target.Position, converterAnnotation, target.ReceiverType, target.Name)
	}

	decl, ok := target.Node.(*ast.FuncDecl)
	if !ok {
		return Converter{}, fmt.Errorf("%s: @%s 只能用于函数: %s", target.Position, converterAnnotation, target.Name)
	}
	if decl.Type.TypeParams != nil && len(decl.Type.TypeParams.List) > 0 {
		return Converter{}, fmt.Errorf("%s: 转换函数 %s 不能是泛型函数", target.Position, target.Name)
	}

	params := flattenFields(decl.Type.Params)
	results := flattenFields(decl.Type.Results)
	if len(params) != 1 || len(results) != 1 {
		return Converter{}, fmt.Errorf("%s: 转换函数 %s 必须恰好有一个参数和一个返回值，实际 %d 个参数 %d 个返回值",
			target.Position, target.Name, len(params), len(results))
	}
	if _, variadic := params[0].(*ast.Ellipsis); variadic {
		return Converter{}, fmt.Errorf("%s: 转换函数 %s 的参数不能是可变参数", target.Position, target.Name)
	}

	return Converter{
		Name: target.Name,
		From: automap.TypeRef(xast.GetFieldType(params[0])),
		To:   automap.TypeRef(xast.GetFieldType(results[0])),
		Pos:  target.Position,
	}, nil
}

// flattenFields 展开 (a, b int) 这样的多名字段，返回每个位置的类型
func flattenFields(list *ast.FieldList) []ast.Expr {
	if list == nil {
		return nil
	}
	var types []ast.Expr
	for _, f := range list.List {
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for range n {
			types = append(types, f.Type)
		}
	}
	return types
}
