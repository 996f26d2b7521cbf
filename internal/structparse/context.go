package structparse

import (
	"sync"

	"github.com/donutnomad/autofrom/internal/pkgresolver"
)

// PackageResolver 包名解析器接口
type PackageResolver interface {
	GetPackageName(importPath string) string
}

// ParseContext 解析上下文，替代全局单例
type ParseContext struct {
	resolver     PackageResolver
	projectRoot  string
	resolverOnce sync.Once
	skipHeader   string
}

// NewParseContext 创建解析上下文，项目根目录从 dir 向上查找
func NewParseContext(dir string) *ParseContext {
	root, _ := pkgresolver.FindProjectRoot(dir)
	return &ParseContext{projectRoot: root}
}

// NewParseContextWithResolver 创建解析上下文（指定PackageResolver，用于测试）
func NewParseContextWithResolver(resolver PackageResolver) *ParseContext {
	return &ParseContext{resolver: resolver}
}

// SkipFilesWithHeader ParsePackage 跳过头部注释等于 header 的文件
func (c *ParseContext) SkipFilesWithHeader(header string) *ParseContext {
	c.skipHeader = header
	return c
}

// GetResolver 获取包解析器（延迟初始化）
func (c *ParseContext) GetResolver() PackageResolver {
	c.resolverOnce.Do(func() {
		if c.resolver == nil {
			c.resolver = pkgresolver.NewPackageNameResolver(c.projectRoot)
		}
	})
	return c.resolver
}
