package pkgresolver

import "sync"

// PackageNameCache 导入路径 → 包名缓存，并发安全
type PackageNameCache struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewPackageNameCache 创建缓存
func NewPackageNameCache() *PackageNameCache {
	return &PackageNameCache{names: make(map[string]string)}
}

func (c *PackageNameCache) Get(importPath string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[importPath]
	return name, ok
}

func (c *PackageNameCache) Set(importPath, pkgName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[importPath] = pkgName
}

// Len 返回缓存条目数
func (c *PackageNameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}
