package plugin

import (
	"bufio"
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/donutnomad/autofrom/internal/xast"
)

// DirectiveName 包级配置指令名
const DirectiveName = "go:autofrom:"

// Scanner 两阶段并行注解扫描器
// 第一阶段：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对匹配的文件进行 AST 解析
type Scanner struct {
	workers int

	// 注解过滤器（可选）
	annotationFilter []string
}

// ScannerOption 扫描器选项
type ScannerOption func(*Scanner)

func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithAnnotationFilter(annotations ...string) ScannerOption {
	return func(s *Scanner) {
		s.annotationFilter = annotations
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// quickMatchRegex 快速匹配注解的正则
var quickMatchRegex = regexp.MustCompile(`@(\w+)`)

// Scan 扫描指定路径
// 支持: ./... ./pkg/... ./pkg /abs/path/... file.go
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	allFiles, err := s.collectFiles(patterns)
	if err != nil {
		return nil, err
	}

	matchedFiles := s.quickMatch(ctx, allFiles)
	if len(matchedFiles) == 0 {
		return &ScanResult{PackageConfigs: make(map[string]*PackageConfig)}, ctx.Err()
	}

	return s.parseFiles(ctx, matchedFiles)
}

// runParallel 用 workers 个 goroutine 处理 files，保持输入顺序返回结果
func runParallel[T any](ctx context.Context, workers int, files []string, fn func(string) T) []T {
	results := make([]T, len(files))
	idxCh := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxCh {
				results[idx] = fn(files[idx])
			}
		}()
	}

send:
	for i := range files {
		select {
		case <-ctx.Done():
			break send
		case idxCh <- i:
		}
	}
	close(idxCh)
	wg.Wait()

	return results
}

// quickMatch 第一阶段：并行读取文件，检查是否包含 @xxx 或包级指令
func (s *Scanner) quickMatch(ctx context.Context, files []string) []string {
	matched := runParallel(ctx, s.workers, files, func(file string) bool {
		ok, err := s.QuickMatchFile(file)
		return err == nil && ok
	})

	var result []string
	for i, ok := range matched {
		if ok {
			result = append(result, files[i])
		}
	}
	return result
}

// QuickMatchFile 快速检查文件是否包含注解或 go:autofrom: 配置
// 用于 dev 模式判断文件是否需要触发代码生成
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "/*") {
			continue
		}

		if strings.Contains(trimmed, DirectiveName) {
			return true, nil
		}

		for _, match := range quickMatchRegex.FindAllStringSubmatch(trimmed, -1) {
			if len(s.annotationFilter) == 0 || slices.Contains(s.annotationFilter, match[1]) {
				return true, nil
			}
		}
	}

	return false, scanner.Err()
}

// fileResult 单个文件的解析结果
type fileResult struct {
	structs   []*AnnotatedTarget
	funcs     []*AnnotatedTarget
	methods   []*AnnotatedTarget
	pkgConfig *PackageConfig
	err       error
}

// parseFiles 第二阶段：AST 解析
func (s *Scanner) parseFiles(ctx context.Context, files []string) (*ScanResult, error) {
	results := runParallel(ctx, s.workers, files, s.parseFile)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ScanResult{
		PackageConfigs: make(map[string]*PackageConfig),
	}
	for i, r := range results {
		if r.err != nil {
			Logger.Warn().Err(r.err).Str("file", files[i]).Msg("解析文件失败，已跳过")
			continue
		}
		result.Structs = append(result.Structs, r.structs...)
		result.Funcs = append(result.Funcs, r.funcs...)
		result.Methods = append(result.Methods, r.methods...)
		if r.pkgConfig != nil {
			mergePackageConfig(result.PackageConfigs, r.pkgConfig)
		}
	}

	return result, nil
}

// mergePackageConfig 合并同一包内多个文件的配置，后出现的覆盖先出现的
func mergePackageConfig(configs map[string]*PackageConfig, cfg *PackageConfig) {
	existing, ok := configs[cfg.PackageDir]
	if !ok {
		configs[cfg.PackageDir] = cfg
		return
	}

	if cfg.DefaultOutput != "" {
		if existing.DefaultOutput != "" && existing.DefaultOutput != cfg.DefaultOutput {
			Logger.Warn().Str("dir", cfg.PackageDir).Msgf("包中存在多个不同的 %s 默认输出配置，使用后发现的配置", DirectiveName)
		}
		existing.DefaultOutput = cfg.DefaultOutput
	}
	for k, v := range cfg.PluginOutputs {
		if old, ok := existing.PluginOutputs[k]; ok && old != v {
			Logger.Warn().Str("dir", cfg.PackageDir).Str("plugin", k).Msg("插件存在多个不同的输出配置，使用后发现的配置")
		}
		existing.PluginOutputs[k] = v
	}
}

// parseFile AST 解析单个文件，跳过生成的文件
func (s *Scanner) parseFile(filePath string) (result fileResult) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		result.err = err
		return
	}
	if ast.IsGenerated(file) {
		return
	}

	packageName := file.Name.Name
	result.pkgConfig = s.parsePackageConfig(file, filePath)

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok == token.TYPE {
				s.parseTypeDecl(fset, filePath, packageName, d, &result)
			}
		case *ast.FuncDecl:
			s.parseFuncDecl(fset, filePath, packageName, d, &result)
		}
	}

	return
}

func (s *Scanner) annotations(doc *ast.CommentGroup) []*Annotation {
	if doc == nil {
		return nil
	}
	annotations := ParseAnnotations(doc.Text())
	if len(s.annotationFilter) > 0 {
		annotations = FilterByNames(annotations, s.annotationFilter...)
	}
	return annotations
}

// parseTypeDecl 解析结构体声明
// 注解可以写在 type 关键字上方，也可以写在分组声明中的类型上方
func (s *Scanner) parseTypeDecl(fset *token.FileSet, filePath, packageName string, decl *ast.GenDecl, result *fileResult) {
	declAnnotations := s.annotations(decl.Doc)

	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		if _, ok := typeSpec.Type.(*ast.StructType); !ok {
			continue
		}

		annotations := s.annotations(typeSpec.Doc)
		if len(annotations) == 0 && len(decl.Specs) == 1 {
			annotations = declAnnotations
		}
		if len(annotations) == 0 {
			continue
		}

		result.structs = append(result.structs, &AnnotatedTarget{
			Target: &Target{
				Kind:        TargetStruct,
				Name:        typeSpec.Name.Name,
				PackageName: packageName,
				FilePath:    filePath,
				Position:    fset.Position(typeSpec.Name.Pos()),
				Node:        typeSpec,
			},
			Annotations: annotations,
		})
	}
}

// parseFuncDecl 解析函数声明
func (s *Scanner) parseFuncDecl(fset *token.FileSet, filePath, packageName string, decl *ast.FuncDecl, result *fileResult) {
	annotations := s.annotations(decl.Doc)
	if len(annotations) == 0 {
		return
	}

	target := &Target{
		Kind:        TargetFunc,
		Name:        decl.Name.Name,
		PackageName: packageName,
		FilePath:    filePath,
		Position:    fset.Position(decl.Name.Pos()),
		Node:        decl,
	}
	annotated := &AnnotatedTarget{Target: target, Annotations: annotations}

	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		target.Kind = TargetMethod
		recv := decl.Recv.List[0]
		if len(recv.Names) > 0 {
			target.ReceiverName = recv.Names[0].Name
		}
		target.ReceiverType = xast.GetFieldType(recv.Type)
		result.methods = append(result.methods, annotated)
		return
	}

	result.funcs = append(result.funcs, annotated)
}

// collectFiles 收集所有需要扫描的文件，跳过测试文件、隐藏目录、vendor 与 testdata
func (s *Scanner) collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...") || pattern == "..."
		if recursive {
			pattern = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
			if pattern == "" {
				pattern = "."
			}
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(absPath, ".go") {
				add(absPath)
			}
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == absPath {
					return nil
				}
				name := d.Name()
				if !recursive || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata" {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// 默认扫描器
var defaultScanner = NewScanner()

func Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	return defaultScanner.Scan(ctx, patterns...)
}

func ScanWithFilter(ctx context.Context, annotations []string, patterns ...string) (*ScanResult, error) {
	return NewScanner(WithAnnotationFilter(annotations...)).Scan(ctx, patterns...)
}

// directiveRegex 匹配 go:autofrom: 指令
// 支持两种格式：//go:autofrom: 和 // go:autofrom:
var directiveRegex = regexp.MustCompile(`go:autofrom:\s*(.*)`)

// parsePackageConfig 解析包级 go:autofrom: 配置
// 支持格式:
//
//	//go:autofrom: -output `$FILE_autofrom.go`
//	// go:autofrom: plugin:autofrom -output `zz_generated.go`
func (s *Scanner) parsePackageConfig(file *ast.File, filePath string) *PackageConfig {
	var lines []string
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimPrefix(c.Text, "//")
			text = strings.TrimPrefix(text, "/*")
			text = strings.TrimSuffix(text, "*/")
			text = strings.TrimSpace(text)
			if !strings.HasPrefix(text, DirectiveName) {
				continue
			}
			if matches := directiveRegex.FindStringSubmatch(text); len(matches) > 1 {
				lines = append(lines, matches[1])
			}
		}
	}

	if len(lines) == 0 {
		return nil
	}
	if len(lines) > 1 {
		Logger.Warn().Str("file", filePath).Msgf("文件定义了多个 %s 指令，将被忽略", DirectiveName)
		return nil
	}

	return parseDirectiveLine(lines[0], filePath)
}

// parseDirectiveLine 解析单行 go:autofrom: 配置
// 格式:
//
//	-output `xxx`                          // 默认输出
//	plugin:autofrom -output `xxx`          // 插件特定输出
func parseDirectiveLine(line string, filePath string) *PackageConfig {
	config := &PackageConfig{
		PackageDir:    filepath.Dir(filePath),
		PluginOutputs: make(map[string]string),
	}

	parts := splitDirectiveArgs(strings.TrimSpace(line))

	var currentPlugin string
	for i := 0; i < len(parts); i++ {
		part := parts[i]
		if strings.HasPrefix(part, "plugin:") {
			currentPlugin = strings.ToLower(strings.TrimPrefix(part, "plugin:"))
		} else if part == "-output" && i+1 < len(parts) {
			i++
			output := trimQuotes(parts[i])
			if currentPlugin == "" {
				config.DefaultOutput = output
			} else {
				config.PluginOutputs[currentPlugin] = output
			}
		}
	}

	if config.DefaultOutput == "" && len(config.PluginOutputs) == 0 {
		return nil
	}
	return config
}

// splitDirectiveArgs 按空白分割参数，引号内的空白保留
func splitDirectiveArgs(line string) []string {
	var parts []string
	var current strings.Builder
	quoteChar := byte(0)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quoteChar == 0 && (c == '`' || c == '"' || c == '\''):
			quoteChar = c
			current.WriteByte(c)
		case quoteChar != 0 && c == quoteChar:
			quoteChar = 0
			current.WriteByte(c)
		case quoteChar == 0 && (c == ' ' || c == '\t'):
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// trimQuotes 去除成对的引号
func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '`' || first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
