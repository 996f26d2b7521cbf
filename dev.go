package main

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/tools/imports"

	"github.com/donutnomad/autofrom/internal/config"
	"github.com/donutnomad/autofrom/plugin"
)

// DevOptions dev 命令选项
type DevOptions struct {
	Patterns []string      // 监听的路径模式
	Verbose  bool          // 详细输出
	Output   string        // 默认输出路径
	Async    bool          // 异步执行
	Debounce time.Duration // 防抖动时间
}

// devRunner 处理文件变动的核心逻辑
type devRunner struct {
	opts     *DevOptions
	registry *plugin.Registry
	watcher  *fsnotify.Watcher
	scanner  *plugin.Scanner
	ctx      context.Context // 用于响应退出信号

	mu          sync.Mutex
	pendingDirs map[string]*time.Timer // key: 包目录路径
}

// runDev 启动开发模式
func runDev(cfg *config.Config, patterns []string) {
	if len(patterns) == 0 {
		patterns = cfg.Patterns
	}

	opts := &DevOptions{
		Patterns: patterns,
		Verbose:  cfg.Verbose,
		Output:   cfg.Output,
		Async:    cfg.Async,
		Debounce: time.Second,
	}

	if err := dev(newRegistry(cfg), opts); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// dev 启动开发模式
func dev(registry *plugin.Registry, opts *DevOptions) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer watcher.Close()

	runner := &devRunner{
		opts:        opts,
		registry:    registry,
		watcher:     watcher,
		scanner:     plugin.NewScanner(plugin.WithAnnotationFilter(registry.Annotations()...)),
		ctx:         ctx,
		pendingDirs: make(map[string]*time.Timer),
	}

	// 退出时停止所有待处理的定时器
	defer func() {
		runner.mu.Lock()
		for _, timer := range runner.pendingDirs {
			timer.Stop()
		}
		runner.mu.Unlock()
	}()

	dirs, err := collectWatchDirs(opts.Patterns)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("没有找到需要监听的目录")
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
		}
		plugin.Logger.Debug().Msgf("监听目录: %s", dir)
	}

	plugin.Logger.Info().Msgf("开发模式已启动，监听 %d 个目录，按 Ctrl+C 退出", len(dirs))

	err = runner.watchLoop(ctx)
	plugin.Logger.Info().Msg("正在退出...")
	return err
}

// watchLoop 事件处理循环
func (r *devRunner) watchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			plugin.Logger.Debug().Err(err).Msg("监听错误")
		}
	}
}

// handleEvent 处理文件事件
// 只关注 .go 文件的 Write 与 Create，跳过测试文件和生成的文件
func (r *devRunner) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	filePath := event.Name
	if !strings.HasSuffix(filePath, ".go") || strings.HasSuffix(filePath, "_test.go") {
		return
	}
	if isGeneratedFile(filePath) {
		return
	}

	plugin.Logger.Debug().Msgf("检测到文件变化: %s", filePath)

	// 包内任一文件的注解、转换函数或 go:autofrom: 指令变化都需要重新生成
	hasAnnotation, err := r.scanner.QuickMatchFile(filePath)
	if err != nil {
		plugin.Logger.Debug().Err(err).Msgf("检查注解失败 %s", filePath)
		return
	}
	if !hasAnnotation && !r.hasGeneratedSibling(filePath) {
		plugin.Logger.Debug().Msgf("跳过文件（无注解）: %s", filePath)
		return
	}

	if err := checkSyntax(filePath); err != nil {
		plugin.Logger.Warn().Msgf("语法错误 %s: %v", filePath, err)
		return
	}

	r.scheduleGenerate(filepath.Dir(filePath))
}

// hasGeneratedSibling 判断文件所在包是否已有 autofrom 生成的文件
// 源结构体本身没有注解，修改它也要重新生成
func (r *devRunner) hasGeneratedSibling(filePath string) bool {
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(filePath), "*.go"))
	for _, m := range matches {
		if m != filePath && isGeneratedFile(m) {
			return true
		}
	}
	return false
}

// scheduleGenerate 防抖动调度生成
func (r *devRunner) scheduleGenerate(pkgDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, exists := r.pendingDirs[pkgDir]; exists {
		timer.Stop()
	}

	r.pendingDirs[pkgDir] = time.AfterFunc(r.opts.Debounce, func() {
		if r.ctx.Err() != nil {
			return
		}

		r.runGenerate(pkgDir)

		r.mu.Lock()
		delete(r.pendingDirs, pkgDir)
		r.mu.Unlock()
	})
}

// runGenerate 只生成变动的包
func (r *devRunner) runGenerate(pkgDir string) {
	plugin.Logger.Debug().Msgf("触发代码生成: %s", pkgDir)

	stats, err := plugin.RunWithOptionsAndStats(r.ctx, &plugin.RunOptions{
		Registry: r.registry,
		Patterns: []string{pkgDir},
		Verbose:  r.opts.Verbose,
		Output:   r.opts.Output,
		Async:    r.opts.Async,
	})
	if err != nil {
		plugin.Logger.Error().Msgf("生成失败: %v", err)
		return
	}

	if stats != nil && stats.FileCount > 0 {
		plugin.Logger.Info().Msgf("生成完成: %d 个文件 (耗时: %v)", stats.FileCount, stats.TotalDuration)
	} else {
		plugin.Logger.Debug().Msg("生成完成: 无文件生成")
	}
}

// checkSyntax 检查文件语法
func checkSyntax(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	_, err = imports.Process(filePath, content, &imports.Options{
		Fragment:   true,
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true, // 只检查语法，不修改 imports
	})
	return err
}

// collectWatchDirs 收集所有需要监听的目录
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...") || pattern == "..."
		baseDir := strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
		if baseDir == "" {
			baseDir = "."
		}

		absDir, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Dir(absDir))
			continue
		}

		if !recursive {
			add(absDir)
			continue
		}

		err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			// 跳过隐藏目录、vendor 和 testdata，与扫描规则一致
			name := d.Name()
			if path != absDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}

// isGeneratedFile 根据文件头部的 Code generated 注释判断是否是生成的文件
func isGeneratedFile(filePath string) bool {
	file, err := parser.ParseFile(token.NewFileSet(), filePath, nil, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		return false
	}
	return ast.IsGenerated(file)
}
