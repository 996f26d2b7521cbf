package structparse

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
)

// ParsePackage 解析包目录中的全部结构体（包级便捷函数）
func ParsePackage(dir string) (*PackageInfo, error) {
	return NewParseContext(dir).ParsePackage(dir)
}

// ParseStruct 解析指定文件中的结构体（包级便捷函数）
func ParseStruct(filename, structName string) (*StructInfo, error) {
	return NewParseContext(filepath.Dir(filename)).ParseStruct(filename, structName)
}

// ParsePackage 解析包目录，跳过测试文件
// 其他工具生成的文件（protoc、sqlc 等）照常解析，只跳过头部等于 SkipFilesWithHeader 设置值的文件
func (c *ParseContext) ParsePackage(dir string) (*PackageInfo, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	files, err := FindGoFiles(absDir)
	if err != nil {
		return nil, fmt.Errorf("读取目录失败 %s: %w", dir, err)
	}

	pkg := &PackageInfo{Dir: absDir}
	fset := token.NewFileSet()
	for _, filename := range files {
		node, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("解析文件失败: %w", err)
		}
		if c.skipHeader != "" && hasHeader(node, c.skipHeader) {
			continue
		}

		if pkg.Name == "" {
			pkg.Name = node.Name.Name
		} else if pkg.Name != node.Name.Name {
			return nil, fmt.Errorf("目录 %s 中存在多个包: %s, %s", dir, pkg.Name, node.Name.Name)
		}

		pkg.Files = append(pkg.Files, filename)
		pkg.Structs = append(pkg.Structs, c.collectStructs(fset, filename, node)...)
	}

	return pkg, nil
}

// hasHeader 判断 package 子句之前是否有内容为 header 的行注释
func hasHeader(node *ast.File, header string) bool {
	for _, cg := range node.Comments {
		if cg.Pos() >= node.Package {
			break
		}
		for _, c := range cg.List {
			if strings.TrimSpace(strings.TrimPrefix(c.Text, "//")) == header {
				return true
			}
		}
	}
	return false
}

// ParseStruct 解析指定文件中的单个结构体
func (c *ParseContext) ParseStruct(filename, structName string) (*StructInfo, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}

	for _, s := range c.collectStructs(fset, filename, node) {
		if s.Name == structName {
			return s, nil
		}
	}
	return nil, fmt.Errorf("未找到结构体 %s", structName)
}

// collectStructs 收集文件顶层声明的全部结构体
func (c *ParseContext) collectStructs(fset *token.FileSet, filename string, node *ast.File) []*StructInfo {
	var imports []ImportInfo
	var result []*StructInfo

	for _, decl := range node.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok {
				continue
			}

			if imports == nil {
				imports = c.extractImports(node)
			}

			info := &StructInfo{
				Name:        typeSpec.Name.Name,
				PackageName: node.Name.Name,
				FilePath:    filename,
				Fields:      parseStructFields(fset, structType.Fields),
				Imports:     imports,
				Pos:         fset.Position(typeSpec.Name.Pos()),
			}
			if typeSpec.TypeParams != nil {
				for _, param := range typeSpec.TypeParams.List {
					for _, name := range param.Names {
						info.TypeParams = append(info.TypeParams, name.Name)
					}
				}
			}
			result = append(result, info)
		}
	}
	return result
}
