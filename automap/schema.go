package automap

import (
	"fmt"
	"go/token"
)

// TypeRef 字段声明类型的不透明句柄
// 取值为类型表达式的源码文本（如 "[]string"、"*time.Time"），
// 核心逻辑只做透传，是否可转换由 emitter 查询转换表或交给 Go 类型检查决定
type TypeRef string

func (t TypeRef) String() string {
	return string(t)
}

// Directive 字段级覆盖指令（tagged choice）
// nil 表示没有指令，字段必须按名称从源结构体匹配
type Directive interface {
	directive()
}

// DefaultValue 默认值指令：字段永远不从源结构体读取，每次转换都重新求值 Expr
type DefaultValue struct {
	Expr string // Go 表达式源码
}

func (DefaultValue) directive() {}

// Field 结构体字段
type Field struct {
	Name      string         // 字段名，在所属 Schema 内唯一
	Type      TypeRef        // 声明类型
	Directive Directive      // 覆盖指令，可为 nil
	Pos       token.Position // 字段声明位置（用于诊断）
}

// DefaultExpr 返回默认值表达式，没有 DefaultValue 指令时 ok=false
func (f Field) DefaultExpr() (expr string, ok bool) {
	if d, isDefault := f.Directive.(DefaultValue); isDefault {
		return d.Expr, true
	}
	return "", false
}

// Schema 记录类型的字段列表
// 字段顺序为声明顺序，只影响诊断与生成代码的顺序
type Schema struct {
	Name    string
	Package string
	Fields  []Field
	Pos     token.Position
}

// Field 按名称查找字段（区分大小写）
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// AnnotatedSchema 带引用的结构体
// Reference 为转换来源的结构体名，只生成 "由 Reference 构造 Schema" 一个方向
type AnnotatedSchema struct {
	Schema    *Schema
	Reference string
	Pos       token.Position // 注解位置
}

// Universe 一个包内全部已知结构体的集合，生成开始前收集完毕，之后只读
type Universe struct {
	byName map[string]*Schema
	order  []string
}

// NewUniverse 创建结构体集合，重名时报错
func NewUniverse(schemas ...*Schema) (*Universe, error) {
	u := &Universe{byName: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		if existing, ok := u.byName[s.Name]; ok {
			return nil, fmt.Errorf("结构体 %s 重复定义: %s 与 %s", s.Name, existing.Pos, s.Pos)
		}
		seen := make(map[string]bool, len(s.Fields))
		for _, f := range s.Fields {
			if seen[f.Name] {
				return nil, fmt.Errorf("%s: 结构体 %s 的字段 %s 重复", f.Pos, s.Name, f.Name)
			}
			seen[f.Name] = true
		}
		u.byName[s.Name] = s
		u.order = append(u.order, s.Name)
	}
	return u, nil
}

// Lookup 按名称精确查找
func (u *Universe) Lookup(name string) (*Schema, bool) {
	if u == nil {
		return nil, false
	}
	s, ok := u.byName[name]
	return s, ok
}

// Schemas 按加入顺序返回全部结构体
func (u *Universe) Schemas() []*Schema {
	if u == nil {
		return nil
	}
	result := make([]*Schema, 0, len(u.order))
	for _, name := range u.order {
		result = append(result, u.byName[name])
	}
	return result
}

// Len 返回结构体数量
func (u *Universe) Len() int {
	if u == nil {
		return 0
	}
	return len(u.order)
}

// ValueKind 字段取值策略
type ValueKind int

const (
	ValueDefault ValueKind = iota + 1 // 使用覆盖表达式
	ValueConvert                      // 读取同名源字段并转换为目标类型
)

func (k ValueKind) String() string {
	switch k {
	case ValueDefault:
		return "default"
	case ValueConvert:
		return "convert"
	default:
		return "unknown"
	}
}

// ValueExpr 单个目标字段的取值表达式
type ValueExpr struct {
	Kind        ValueKind
	Expr        string  // ValueDefault: 覆盖表达式
	SourceField string  // ValueConvert: 源字段名
	SourceType  TypeRef // ValueConvert: 源字段类型
	TargetType  TypeRef // 目标字段类型
}

// Binding 目标字段名 -> 取值表达式
type Binding struct {
	Field string
	Value ValueExpr
}

// ConversionSpec 一次合成的结果
// Bindings 与目标结构体字段一一对应，顺序为目标字段声明顺序
type ConversionSpec struct {
	Source  string
	Target  string
	Package string

	Bindings []Binding
}

// Binding 按目标字段名查找
func (s *ConversionSpec) Binding(field string) (Binding, bool) {
	for _, b := range s.Bindings {
		if b.Field == field {
			return b, true
		}
	}
	return Binding{}, false
}
