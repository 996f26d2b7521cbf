// Package xast 提供 go/ast 类型表达式的小工具
package xast

import (
	"go/ast"
	"go/types"
	"strings"
)

// GetFieldType 返回类型表达式的源码文本，如 "[]string"、"map[string]*time.Time"
func GetFieldType(expr ast.Expr) string {
	if expr == nil {
		return ""
	}
	return types.ExprString(expr)
}

// EmbeddedFieldName 返回嵌入字段的字段名
// Go 规定嵌入字段名为去掉指针和包前缀、类型参数后的类型名
// 例如 *pkg.Base[T] -> Base
func EmbeddedFieldName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return EmbeddedFieldName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return EmbeddedFieldName(e.X)
	case *ast.IndexListExpr:
		return EmbeddedFieldName(e.X)
	case *ast.ParenExpr:
		return EmbeddedFieldName(e.X)
	default:
		return ""
	}
}

// Qualifiers 返回类型表达式中出现的全部包限定符（去重，按出现顺序）
// 例如 map[string]*decimal.Decimal -> [decimal]
func Qualifiers(expr ast.Expr) []string {
	var result []string
	seen := make(map[string]bool)
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok && !seen[ident.Name] {
			seen[ident.Name] = true
			result = append(result, ident.Name)
		}
		return false
	})
	return result
}

// NeedsParens 判断类型用于转换表达式 T(x) 时是否需要加括号
// *T、func()、<-chan T 直接写成 T(x) 会有歧义
func NeedsParens(typeText string) bool {
	return strings.HasPrefix(typeText, "*") ||
		strings.HasPrefix(typeText, "func") ||
		strings.HasPrefix(typeText, "<-")
}
