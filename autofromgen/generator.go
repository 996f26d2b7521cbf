package autofromgen

import (
	"cmp"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/donutnomad/autofrom/automap"
	"github.com/donutnomad/autofrom/internal/config"
	"github.com/donutnomad/autofrom/internal/structparse"
	"github.com/donutnomad/autofrom/plugin"
)

const generatorName = "autofrom"

const (
	autoFromAnnotation  = "AutoFrom"
	converterAnnotation = "Converter"
)

// AutoFromParams 定义 AutoFrom 注解支持的参数
type AutoFromParams struct {
	From   string `param:"name=from,required=true,default=,description=源结构体名（同包）"`
	Name   string `param:"name=name,required=false,default=,description=构造函数名模板，可用 {{.Target}} {{.Source}} {{.Package}}"`
	Method string `param:"name=method,required=false,default=,description=是否同时生成 From<Source> 方法: true|false"`
	Output string `param:"name=output,required=false,default=,description=输出文件"`
}

// AutoFromGenerator 实现 plugin.Generator 接口
type AutoFromGenerator struct {
	plugin.BaseGenerator

	nameTemplate string
	method       bool
}

// Option 生成器选项
type Option func(*AutoFromGenerator)

// WithNameTemplate 设置默认构造函数名模板
func WithNameTemplate(tmpl string) Option {
	return func(g *AutoFromGenerator) {
		if tmpl != "" {
			g.nameTemplate = tmpl
		}
	}
}

// WithMethod 设置是否默认生成 From<Source> 方法
func WithMethod(method bool) Option {
	return func(g *AutoFromGenerator) {
		g.method = method
	}
}

func NewAutoFromGenerator(opts ...Option) *AutoFromGenerator {
	gen := &AutoFromGenerator{
		BaseGenerator: *plugin.NewBaseGeneratorWithParamsStruct(
			generatorName,
			[]string{autoFromAnnotation, converterAnnotation},
			[]plugin.TargetKind{plugin.TargetStruct, plugin.TargetFunc, plugin.TargetMethod},
			AutoFromParams{},
		),
		nameTemplate: config.DefaultName,
	}
	gen.SetPriority(10)
	for _, opt := range opts {
		opt(gen)
	}
	return gen
}

// Generate 执行代码生成
// 每个包目录独立处理：先收集包内全部结构体与转换函数，再逐个合成
func (g *AutoFromGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()

	if len(ctx.Targets) == 0 {
		return result, nil
	}

	byDir := make(map[string][]*plugin.AnnotatedTarget)
	for _, at := range ctx.Targets {
		dir := filepath.Dir(at.Target.FilePath)
		byDir[dir] = append(byDir[dir], at)
	}
	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)

	// key: 输出路径
	fileUnits := make(map[string][]*conversionUnit)
	var report []reportRow

	for _, dir := range dirs {
		targets := byDir[dir]
		pkg, err := loadPackage(structparse.NewParseContext(dir).SkipFilesWithHeader(plugin.GeneratedHeader), dir)
		if err != nil {
			result.AddError(fmt.Errorf("解析包 %s 失败: %w", dir, err))
			continue
		}

		g.registerConverters(pkg, targets, result)

		for _, p := range g.planPackage(ctx, pkg, targets, result) {
			if p.unit != nil {
				fileUnits[p.output] = append(fileUnits[p.output], p.unit)
			}
			report = append(report, p.row)
		}
	}

	outputPaths := make([]string, 0, len(fileUnits))
	for path := range fileUnits {
		outputPaths = append(outputPaths, path)
	}
	slices.Sort(outputPaths)

	for _, outputPath := range outputPaths {
		units := fileUnits[outputPath]
		slices.SortStableFunc(units, func(a, b *conversionUnit) int {
			return cmp.Or(
				cmp.Compare(a.target.Pos.Filename, b.target.Pos.Filename),
				cmp.Compare(a.target.Pos.Line, b.target.Pos.Line),
			)
		})

		if ctx.Verbose {
			plugin.Logger.Debug().Msgf("[autofrom] %s:\n%s", outputPath, spew.Sdump(lo.Map(units, func(u *conversionUnit, _ int) *automap.ConversionSpec { return u.spec })))
		}

		def, err := generateDefinition(units)
		if err != nil {
			result.AddError(fmt.Errorf("生成 %s 失败: %w", outputPath, err))
			continue
		}
		result.AddDefinition(outputPath, def)
	}

	if ctx.Verbose && len(report) > 0 {
		plugin.Logger.Debug().Msgf("[autofrom] 处理结果:\n%s", formatReport(report))
	}

	return result, nil
}

// registerConverters 把包内 @Converter 函数加入转换函数表
func (g *AutoFromGenerator) registerConverters(pkg *loadedPackage, targets []*plugin.AnnotatedTarget, result *plugin.GenerateResult) {
	for _, at := range targets {
		if !plugin.HasAnnotation(at.Annotations, converterAnnotation) {
			continue
		}
		if at.Target.Kind == plugin.TargetStruct {
			result.AddError(fmt.Errorf("%s: @%s 只能用于函数: %s", at.Target.Position, converterAnnotation, at.Target.Name))
			continue
		}
		c, err := converterFromTarget(at.Target)
		if err != nil {
			result.AddError(err)
			continue
		}
		if err := pkg.converters.Register(c); err != nil {
			result.AddError(err)
		}
	}
}

// plannedUnit 一次 @AutoFrom 注解的处理结果
type plannedUnit struct {
	unit   *conversionUnit // 失败时为 nil
	output string
	row    reportRow
}

// pendingUnit 等待合成的注解
type pendingUnit struct {
	info   *structparse.StructInfo
	target *plugin.Target
	params AutoFromParams
}

// planPackage 合成包内全部 @AutoFrom 注解，单个注解失败不影响其他注解
func (g *AutoFromGenerator) planPackage(ctx *plugin.GenerateContext, pkg *loadedPackage, targets []*plugin.AnnotatedTarget, result *plugin.GenerateResult) []plannedUnit {
	var pending []pendingUnit
	var annotated []automap.AnnotatedSchema
	var planned []plannedUnit

	fail := func(target, source string, err error) {
		result.AddError(err)
		planned = append(planned, plannedUnit{row: reportRow{Target: target, Source: source, Status: "失败", Detail: firstLine(err)}})
	}

	for _, at := range targets {
		if !plugin.HasAnnotation(at.Annotations, autoFromAnnotation) {
			continue
		}
		if at.Target.Kind != plugin.TargetStruct {
			fail(at.Target.Name, "", fmt.Errorf("%s: @%s 只能用于结构体: %s", at.Target.Position, autoFromAnnotation, at.Target.Name))
			continue
		}

		info := pkg.structInfo(at.Target.Name)
		if info == nil {
			fail(at.Target.Name, "", fmt.Errorf("%s: 在包 %s 中未找到结构体 %s", at.Target.Position, pkg.info.Name, at.Target.Name))
			continue
		}
		if len(info.TypeParams) > 0 {
			fail(info.Name, "", fmt.Errorf("%s: 不支持泛型结构体 %s[%s]", info.Pos, info.Name, strings.Join(info.TypeParams, ", ")))
			continue
		}
		if err := pkg.extractErrs[info.Name]; err != nil {
			fail(info.Name, "", fmt.Errorf("解析结构体 %s 失败: %w", info.Name, err))
			continue
		}

		for i, ann := range at.Annotations {
			if ann.Name != autoFromAnnotation {
				continue
			}
			// 参数解析失败已由调用方报告
			if i >= len(at.ParsedParams) {
				continue
			}
			params, ok := at.ParsedParams[i].(AutoFromParams)
			if !ok {
				continue
			}
			if src := pkg.structInfo(params.From); src != nil && len(src.TypeParams) > 0 {
				fail(info.Name, params.From, fmt.Errorf("%s: %s 引用的结构体 %s 是泛型结构体，不支持", at.Target.Position, info.Name, params.From))
				continue
			}

			schema, _ := pkg.universe.Lookup(info.Name)
			pending = append(pending, pendingUnit{info: info, target: at.Target, params: params})
			annotated = append(annotated, automap.AnnotatedSchema{
				Schema:    schema,
				Reference: params.From,
				Pos:       at.Target.Position,
			})
		}
	}

	funcNames := make(map[string]string) // 函数名 -> 目标结构体
	for i, r := range automap.Plan(pkg.universe, annotated...) {
		p := pending[i]
		for _, w := range r.Warnings {
			result.AddWarning(w)
		}
		if r.Err != nil {
			diags := automap.AsDiagnostics(r.Err)
			if len(diags) == 0 {
				fail(p.info.Name, p.params.From, r.Err)
				continue
			}
			for _, d := range diags {
				result.AddError(d)
			}
			planned = append(planned, plannedUnit{row: reportRow{
				Target: p.info.Name,
				Source: p.params.From,
				Status: "失败",
				Detail: fmt.Sprintf("%d 个字段缺少来源: %s", len(diags.Fields()), strings.Join(diags.Fields(), ", ")),
			}})
			continue
		}

		unit, err := g.newUnit(pkg, p, r.Spec)
		if err != nil {
			fail(p.info.Name, p.params.From, fmt.Errorf("%s: %w", p.target.Position, err))
			continue
		}
		if prev, ok := funcNames[unit.funcName]; ok {
			fail(p.info.Name, p.params.From, fmt.Errorf("%s: 函数名 %s 与 %s 生成的函数重复", p.target.Position, unit.funcName, prev))
			continue
		}
		funcNames[unit.funcName] = p.info.Name

		output := plugin.GetOutputPath(p.target, p.params.Output, config.DefaultOutput,
			ctx.GetPackageConfig(filepath.Dir(p.target.FilePath)), g.Name(), ctx.DefaultOutput)
		planned = append(planned, plannedUnit{
			unit:   unit,
			output: output,
			row: reportRow{
				Target: p.info.Name,
				Source: p.params.From,
				Status: "成功",
				Detail: fmt.Sprintf("%s -> %s", unit.funcName, filepath.Base(output)),
			},
		})
	}
	return planned
}

// newUnit 根据注解参数确定函数名与是否生成方法
func (g *AutoFromGenerator) newUnit(pkg *loadedPackage, p pendingUnit, spec *automap.ConversionSpec) (*conversionUnit, error) {
	tmpl := cmp.Or(p.params.Name, g.nameTemplate)
	funcName, err := renderFuncName(tmpl, spec)
	if err != nil {
		return nil, err
	}

	method := g.method
	if p.params.Method != "" {
		method, err = cast.ToBoolE(p.params.Method)
		if err != nil {
			return nil, fmt.Errorf("参数 method 的值 %q 无效: %w", p.params.Method, err)
		}
	}

	return &conversionUnit{
		target:     p.info,
		spec:       spec,
		funcName:   funcName,
		method:     method,
		converters: pkg.converters,
	}, nil
}

func firstLine(err error) string {
	var d *automap.Diagnostic
	if errors.As(err, &d) {
		return d.Message
	}
	line, _, _ := strings.Cut(err.Error(), "\n")
	return line
}
