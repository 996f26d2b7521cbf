package pkgresolver

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// PackageFileReader 从磁盘路径读取真实包名
type PackageFileReader struct{}

// ReadPackageName 读取目录下第一个非测试 Go 文件的 package 声明
func (r *PackageFileReader) ReadPackageName(pkgDir string) (string, error) {
	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		return "", fmt.Errorf("读取目录失败 %s: %w", pkgDir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		return r.parsePackageNameFromFile(filepath.Join(pkgDir, name))
	}

	return "", fmt.Errorf("目录 %s 中没有找到 Go 源文件", pkgDir)
}

func (r *PackageFileReader) parsePackageNameFromFile(filename string) (string, error) {
	f, err := parser.ParseFile(token.NewFileSet(), filename, nil, parser.PackageClauseOnly)
	if err != nil {
		return "", fmt.Errorf("解析文件 %s 失败: %w", filename, err)
	}
	return f.Name.Name, nil
}
