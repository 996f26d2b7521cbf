package structparse

import (
	"go/ast"
	"strconv"
)

// extractImports 提取文件中的导入信息
func (c *ParseContext) extractImports(file *ast.File) []ImportInfo {
	resolver := c.GetResolver()

	imports := make([]ImportInfo, 0, len(file.Imports))
	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}

		info := ImportInfo{
			ImportPath:  importPath,
			PackageName: resolver.GetPackageName(importPath),
		}
		if imp.Name != nil {
			info.Alias = imp.Name.Name
		}
		imports = append(imports, info)
	}
	return imports
}
