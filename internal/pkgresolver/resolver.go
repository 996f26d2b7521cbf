// Package pkgresolver 把导入路径解析为真实包名
package pkgresolver

import (
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// PackageNameResolver 包名解析器（统一入口）
type PackageNameResolver struct {
	cache       *PackageNameCache
	reader      *PackageFileReader
	projectRoot string // 项目根目录（包含 go.mod）
	modulePath  string
	goroot      string
}

// NewPackageNameResolver 创建解析器，projectRoot 可为空
func NewPackageNameResolver(projectRoot string) *PackageNameResolver {
	r := &PackageNameResolver{
		cache:       NewPackageNameCache(),
		reader:      &PackageFileReader{},
		projectRoot: projectRoot,
		goroot:      build.Default.GOROOT,
	}
	if projectRoot != "" {
		r.modulePath, _ = getModuleName(projectRoot)
	}
	return r
}

// ModulePath 返回项目模块路径，未找到 go.mod 时为空
func (r *PackageNameResolver) ModulePath() string {
	return r.modulePath
}

// GetPackageName 获取导入路径对应的真实包名
// 读不到磁盘上的包时按导入路径推断，不返回错误
//
//	"net/http" → "http"
//	"gopkg.in/yaml.v3" → "yaml"
//	"example.com/proj/gg" → "g2" (如果 package 声明是 g2)
func (r *PackageNameResolver) GetPackageName(importPath string) string {
	if importPath == "" {
		return ""
	}
	if name, ok := r.cache.Get(importPath); ok {
		return name
	}

	name := AssumedPackageName(importPath)
	if diskPath, err := r.resolveDiskPath(importPath); err == nil {
		if pkgName, err := r.reader.ReadPackageName(diskPath); err == nil {
			name = pkgName
		}
	}

	r.cache.Set(importPath, name)
	return name
}

// IsStdLib 判断是否是标准库
func (r *PackageNameResolver) IsStdLib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	if strings.Contains(first, ".") || r.goroot == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(r.goroot, "src", filepath.FromSlash(importPath)))
	return err == nil && info.IsDir()
}

// resolveDiskPath 将导入路径解析为磁盘路径
func (r *PackageNameResolver) resolveDiskPath(importPath string) (string, error) {
	if r.IsStdLib(importPath) {
		return filepath.Join(r.goroot, "src", filepath.FromSlash(importPath)), nil
	}

	if r.modulePath != "" {
		if importPath == r.modulePath {
			return r.projectRoot, nil
		}
		if rel, ok := strings.CutPrefix(importPath, r.modulePath+"/"); ok {
			return filepath.Join(r.projectRoot, filepath.FromSlash(rel)), nil
		}
	}

	return findThirdPartyPackage(importPath)
}

// getModuleName 从go.mod文件获取模块名称
func getModuleName(projectRoot string) (string, error) {
	content, err := os.ReadFile(filepath.Join(projectRoot, "go.mod"))
	if err != nil {
		return "", err
	}
	name := modfile.ModulePath(content)
	if name == "" {
		return "", fmt.Errorf("未在 go.mod 中找到模块名称")
	}
	return name, nil
}

// FindProjectRoot 从 dir 向上查找包含 go.mod 的目录
func FindProjectRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(abs, "go.mod")); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%s 及其上级目录中没有 go.mod", dir)
		}
		abs = parent
	}
}

func goModCache() string {
	if dir := os.Getenv("GOMODCACHE"); dir != "" {
		return dir
	}
	goPath := os.Getenv("GOPATH")
	if goPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		goPath = filepath.Join(home, "go")
	}
	return filepath.Join(goPath, "pkg", "mod")
}

// findThirdPartyPackage 在 GOMODCACHE 中查找第三方包
func findThirdPartyPackage(importPath string) (string, error) {
	cache := goModCache()
	if cache == "" {
		return "", fmt.Errorf("无法确定 GOMODCACHE")
	}

	parts := strings.Split(importPath, "/")
	for i := len(parts); i >= 1; i-- {
		modulePath := strings.Join(parts[:i], "/")
		escaped, err := module.EscapePath(modulePath)
		if err != nil {
			continue
		}

		matches, err := filepath.Glob(filepath.Join(cache, filepath.FromSlash(escaped)+"@*"))
		if err != nil || len(matches) == 0 {
			continue
		}

		// 按字典序取最后一个版本
		finalPath := filepath.Join(matches[len(matches)-1], filepath.Join(parts[i:]...))
		if _, err := os.Stat(finalPath); err == nil {
			return finalPath, nil
		}
	}

	return "", fmt.Errorf("未找到第三方包 %s", importPath)
}

// AssumedPackageName 按导入路径推断包名
// 去掉主版本后缀（/v2、.v3）与 go- 前缀，截断到第一个非标识符字符
func AssumedPackageName(importPath string) string {
	prefix, _, ok := module.SplitPathVersion(importPath)
	if ok && prefix != "" {
		importPath = prefix
	}
	base := importPath[strings.LastIndex(importPath, "/")+1:]
	base = strings.TrimPrefix(base, "go-")
	for i, c := range base {
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || i > 0 && c >= '0' && c <= '9') {
			return base[:i]
		}
	}
	return base
}
