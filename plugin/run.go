package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/donutnomad/gg"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"

	"github.com/donutnomad/autofrom/internal/utils"
)

// GeneratedHeader 生成文件的头部注释，满足 ast.IsGenerated
const GeneratedHeader = "Code generated by autofrom. DO NOT EDIT."

// ErrStale -check 模式下存在需要重新生成的文件
var ErrStale = errors.New("生成的文件已过期")

// Run 运行代码生成
// 1. 扫描指定路径的注解
// 2. 将目标分发给对应的生成器
// 3. 执行生成器
// 4. 合并同一文件的 gg 定义并写入文件
func Run(ctx context.Context, registry *Registry, patterns ...string) error {
	return RunWithOptions(ctx, &RunOptions{
		Registry: registry,
		Patterns: patterns,
	})
}

// RunGlobal 使用全局注册表运行
func RunGlobal(ctx context.Context, patterns ...string) error {
	return Run(ctx, globalRegistry, patterns...)
}

// RunOptions 运行选项
type RunOptions struct {
	Registry *Registry
	Patterns []string
	Verbose  bool
	Output   string // 默认输出路径（低于注解参数与包级配置）
	Async    bool   // 是否并行执行生成器
	NoOutput bool   // 不输出生成文件列表
	Check    bool   // 只比较不写入，存在差异时返回 ErrStale
}

// RunStats 运行统计信息
type RunStats struct {
	ScanDuration     time.Duration // 扫描耗时
	GenerateDuration time.Duration // 生成耗时
	TotalDuration    time.Duration // 总耗时
	TargetCount      int           // 目标数量
	FileCount        int           // 生成（或 -check 下比较）的文件数量
	ErrorCount       int           // 错误数量
	WarningCount     int           // 警告数量
	StaleFiles       []string      // -check 模式下内容不一致的文件
}

// RunWithOptions 带选项运行
func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

// RunWithOptionsAndStats 带选项运行并返回统计信息
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	totalStart := time.Now()
	stats := &RunStats{}

	registry := opts.Registry
	if registry == nil {
		registry = globalRegistry
	}

	annotations := registry.Annotations()
	if len(annotations) == 0 {
		return nil, fmt.Errorf("没有已注册的生成器")
	}

	// 扫描
	scanStart := time.Now()
	scanner := NewScanner(WithAnnotationFilter(annotations...))
	result, err := scanner.Scan(ctx, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	stats.ScanDuration = time.Since(scanStart)
	stats.TargetCount = len(result.All())

	if stats.TargetCount == 0 {
		Logger.Debug().Msg("没有找到任何带注解的目标")
		stats.TotalDuration = time.Since(totalStart)
		return stats, nil
	}
	Logger.Debug().Msgf("找到 %d 个带注解的目标 (扫描耗时: %v)", stats.TargetCount, stats.ScanDuration)

	generateStart := time.Now()
	dispatch := registry.DispatchTargets(result)

	genNames := lo.Keys(dispatch)
	slices.SortFunc(genNames, func(a, b string) int {
		genA, _ := registry.GetByName(a)
		genB, _ := registry.GetByName(b)
		return compareGenerators(genA, genB)
	})

	var allErrors, allWarnings []error

	// 先串行解析所有目标的参数（避免并发修改共享数据）
	for _, genName := range genNames {
		gen, _ := registry.GetByName(genName)
		for _, target := range dispatch[genName] {
			allErrors = append(allErrors, parseTargetParams(gen, target)...)
		}
	}

	type genResultItem struct {
		genName string
		result  *GenerateResult
		err     error
	}

	executeGenerator := func(genName string) genResultItem {
		targets := dispatch[genName]
		gen, _ := registry.GetByName(genName)

		Logger.Debug().Msgf("执行生成器: %s (开始处理 %d 个目标)", genName, len(targets))

		start := time.Now()
		genResult, err := gen.Generate(&GenerateContext{
			Targets:        targets,
			PackageConfigs: result.PackageConfigs,
			DefaultOutput:  opts.Output,
			Verbose:        opts.Verbose,
		})
		Logger.Debug().Msgf("执行生成器: %s (耗时: %v)", genName, time.Since(start))

		return genResultItem{genName: genName, result: genResult, err: err}
	}

	items := make([]genResultItem, len(genNames))
	if opts.Async {
		var wg sync.WaitGroup
		for i, genName := range genNames {
			wg.Add(1)
			go func() {
				defer wg.Done()
				items[i] = executeGenerator(genName)
			}()
		}
		wg.Wait()
	} else {
		for i, genName := range genNames {
			items[i] = executeGenerator(genName)
		}
	}

	// 按优先级顺序收集 gg 定义，按输出路径分组
	fileDefinitions := make(map[string][]*gg.Generator)
	fileGenNames := make(map[string][]string)
	for _, item := range items {
		if item.err != nil {
			allErrors = append(allErrors, fmt.Errorf("生成器 %s 执行失败: %w", item.genName, item.err))
			continue
		}
		if item.result == nil {
			continue
		}
		for path, def := range item.result.Definitions {
			fileDefinitions[path] = append(fileDefinitions[path], def)
			fileGenNames[path] = append(fileGenNames[path], item.genName)
		}
		allErrors = append(allErrors, item.result.Errors...)
		allWarnings = append(allWarnings, item.result.Warnings...)
	}

	paths := lo.Keys(fileDefinitions)
	slices.Sort(paths)
	for _, path := range paths {
		merged, err := mergeDefinitions(fileDefinitions[path], fileGenNames[path])
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("合并文件 %s 的定义失败: %w", path, err))
			continue
		}

		if opts.Check {
			stale, err := checkGGFile(path, merged)
			if err != nil {
				allErrors = append(allErrors, fmt.Errorf("比较文件 %s 失败: %w", path, err))
				continue
			}
			stats.FileCount++
			if stale {
				stats.StaleFiles = append(stats.StaleFiles, path)
			}
			continue
		}

		if err := writeGGFile(path, merged); err != nil {
			allErrors = append(allErrors, fmt.Errorf("写入文件 %s 失败: %w", path, err))
			continue
		}
		stats.FileCount++
		if !opts.NoOutput {
			Logger.Info().Msgf("生成文件: %s", path)
		}
	}

	stats.GenerateDuration = time.Since(generateStart)
	stats.TotalDuration = time.Since(totalStart)
	stats.ErrorCount = len(allErrors)
	stats.WarningCount = len(allWarnings)

	for _, w := range allWarnings {
		Logger.Warn().Msg(w.Error())
	}
	if len(allErrors) > 0 {
		for _, e := range allErrors {
			Logger.Error().Msg(e.Error())
		}
		return stats, fmt.Errorf("生成过程中出现 %d 个错误", len(allErrors))
	}
	if len(stats.StaleFiles) > 0 {
		return stats, fmt.Errorf("%w: %s", ErrStale, strings.Join(stats.StaleFiles, ", "))
	}

	return stats, nil
}

// parseTargetParams 解析目标上属于生成器主注解的参数
// 返回的错误带有目标位置，解析失败的注解对应 ParsedParams 为 nil
func parseTargetParams(gen Generator, target *AnnotatedTarget) []error {
	target.ParsedParams = make([]any, len(target.Annotations))
	if gen.NewParams() == nil {
		return nil
	}

	var errs []error
	primary := gen.Annotations()[0]
	for i, ann := range target.Annotations {
		if ann.Name != primary {
			continue
		}
		params := gen.NewParams()
		if reflect.ValueOf(params).Kind() != reflect.Ptr {
			errs = append(errs, fmt.Errorf("NewParams() 必须返回指针类型, 得到: %T", params))
			continue
		}
		if err := ParseAnnotationParams(ann, params, gen.ParamDefs()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %s: %w", target.Target.Position, target.Target.Name, err))
			continue
		}
		target.ParsedParams[i] = reflect.ValueOf(params).Elem().Interface()
	}
	return errs
}

// mergeDefinitions 合并多个 gg.Generator 定义到一个文件
// 多个生成器写入同一文件时，在每段前添加分隔注释
func mergeDefinitions(definitions []*gg.Generator, genNames []string) (*gg.Generator, error) {
	if len(definitions) == 0 {
		return nil, fmt.Errorf("没有定义需要合并")
	}

	var pkgName string
	for _, def := range definitions {
		if def.PackageName() == "" {
			continue
		}
		if pkgName == "" {
			pkgName = def.PackageName()
		} else if pkgName != def.PackageName() {
			return nil, fmt.Errorf("包名不一致: %s vs %s", pkgName, def.PackageName())
		}
	}

	merged := gg.New()
	merged.SetHeader(GeneratedHeader)
	if pkgName != "" {
		merged.SetPackage(pkgName)
	}

	withSeparator := len(lo.Uniq(genNames)) > 1
	for i, def := range definitions {
		if withSeparator {
			merged.Body().AddLine()
			merged.Body().Append(gg.LineComment("================ %s ================", genNames[i]))
			merged.Body().AddLine()
		}
		// Merge 会正确处理 imports 和别名
		merged.Merge(def)
	}

	return merged, nil
}

// writeGGFile 将 gg 定义格式化后写入文件
func writeGGFile(path string, gen *gg.Generator) error {
	return utils.WriteFormat(path, gen.Bytes())
}

// checkGGFile 比较磁盘上的文件与将要生成的内容，不一致时打印 unified diff
func checkGGFile(path string, gen *gg.Generator) (bool, error) {
	want, err := utils.FormatSource(path, gen.Bytes())
	if err != nil {
		return false, err
	}

	got, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if bytes.Equal(got, want) {
		return false, nil
	}

	diff, err := UnifiedDiff(path, got, want)
	if err != nil {
		return true, err
	}
	Logger.Warn().Msgf("文件需要重新生成: %s\n%s", path, diff)
	return true, nil
}

// UnifiedDiff 生成 oldData -> newData 的 unified diff 文本
func UnifiedDiff(path string, oldData, newData []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(oldData)),
		B:        difflib.SplitLines(string(newData)),
		FromFile: path + " (当前)",
		ToFile:   path + " (生成)",
		Context:  3,
	})
}

// GetOutputPath 根据注解参数和默认规则计算输出路径
// 优先级：注解参数 > 包级插件配置 > 包级默认配置 > 命令行/配置文件 > 默认文件名
// 模板变量：
//   - $FILE: 源文件名（不含 .go 后缀）
//   - $PACKAGE: 包名
func GetOutputPath(target *Target, annOutput string, defaultFileName string, pkgConfig *PackageConfig, pluginName string, cmdOutput string) string {
	output := annOutput
	if output == "" && pkgConfig != nil {
		output = pkgConfig.GetPluginOutput(strings.ToLower(pluginName))
	}
	if output == "" {
		output = cmdOutput
	}
	if output == "" {
		output = defaultFileName
	}
	if output == "" {
		output = "generate.go"
	}

	output = replaceTemplateVars(output, target)
	if !strings.HasSuffix(output, ".go") {
		output += ".go"
	}

	if filepath.IsAbs(output) {
		return output
	}
	// 相对于源文件目录
	return filepath.Join(filepath.Dir(target.FilePath), output)
}

// replaceTemplateVars 替换模板变量 $FILE 与 $PACKAGE
func replaceTemplateVars(template string, target *Target) string {
	fileName := strings.TrimSuffix(filepath.Base(target.FilePath), ".go")
	template = strings.ReplaceAll(template, "$FILE", fileName)
	template = strings.ReplaceAll(template, "$PACKAGE", target.PackageName)
	return template
}
