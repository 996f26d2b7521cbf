package structparse

import (
	"go/token"
	"reflect"
)

// ImportInfo 导入信息
type ImportInfo struct {
	Alias       string // 显式别名（如果有）
	PackageName string // 真实包名（从 package 声明读取）
	ImportPath  string // 完整导入路径
}

// Qualifier 返回源码中引用该包使用的名称
func (i ImportInfo) Qualifier() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.PackageName
}

// FieldInfo 表示结构体字段信息
type FieldInfo struct {
	Name       string         // 字段名，嵌入字段为类型名
	Type       string         // 字段类型源码
	Tag        string         // 字段标签（去掉反引号）
	Embedded   bool           // 是否为嵌入字段
	Qualifiers []string       // 类型中引用的包限定符
	Pos        token.Position // 声明位置
}

// Lookup 读取标签中指定 key 的值
func (f FieldInfo) Lookup(key string) (string, bool) {
	return reflect.StructTag(f.Tag).Lookup(key)
}

// StructInfo 表示结构体信息
type StructInfo struct {
	Name        string         // 结构体名称
	PackageName string         // 包名
	FilePath    string         // 结构体所在文件路径
	TypeParams  []string       // 类型参数名，非泛型为空
	Fields      []FieldInfo    // 字段列表，声明顺序
	Imports     []ImportInfo   // 所在文件的导入
	Pos         token.Position // 声明位置
}

// Field 按名称查找字段
func (s *StructInfo) Field(name string) (FieldInfo, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// ImportFor 按限定符查找所在文件的导入
func (s *StructInfo) ImportFor(qualifier string) (ImportInfo, bool) {
	for _, imp := range s.Imports {
		if imp.Qualifier() == qualifier {
			return imp, true
		}
	}
	return ImportInfo{}, false
}

// PackageInfo 一个包目录的解析结果
type PackageInfo struct {
	Name    string        // 包名
	Dir     string        // 包目录（绝对路径）
	Files   []string      // 参与解析的文件
	Structs []*StructInfo // 全部结构体，按文件名、声明顺序
}

// Struct 按名称查找结构体
func (p *PackageInfo) Struct(name string) (*StructInfo, bool) {
	for _, s := range p.Structs {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
