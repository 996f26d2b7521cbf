package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/donutnomad/autofrom/autofromgen"
	"github.com/donutnomad/autofrom/internal/config"
	"github.com/donutnomad/autofrom/plugin"
)

var (
	verbose    = flag.Bool("v", false, "详细输出")
	help       = flag.Bool("h", false, "显示帮助信息")
	output     = flag.String("output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE），默认 "+config.DefaultOutput)
	noOutput   = flag.Bool("no-output", false, "不打印生成的文件列表")
	async      = flag.Bool("async", false, "并行执行生成器")
	check      = flag.Bool("check", false, "只检查生成的文件是否最新，不写入文件")
	configPath = flag.String("config", "", "配置文件路径（默认读取工作目录下的 "+config.FileName+"）")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
	plugin.SetVerbose(cfg.Verbose)

	args := flag.Args()

	// 默认命令是 gen
	if len(args) == 0 {
		runGen(cfg, nil)
		return
	}

	switch args[0] {
	case "gen":
		runGen(cfg, args[1:])
	case "dev":
		runDev(cfg, args[1:])
	default:
		// 不是子命令，当作路径参数处理，执行 gen
		runGen(cfg, args)
	}
}

// loadConfig 读取配置文件，命令行显式指定的选项覆盖配置文件
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			cfg.Verbose = *verbose
		case "output":
			cfg.Output = *output
		case "async":
			cfg.Async = *async
		}
	})
	return cfg, nil
}

// newRegistry 按配置创建生成器注册表
func newRegistry(cfg *config.Config) *plugin.Registry {
	registry := plugin.NewRegistry()
	registry.MustRegister(autofromgen.NewAutoFromGenerator(
		autofromgen.WithNameTemplate(cfg.Name),
		autofromgen.WithMethod(cfg.Method),
	))
	return registry
}

func runGen(cfg *config.Config, patterns []string) {
	if len(patterns) == 0 {
		patterns = cfg.Patterns
	}

	registry := newRegistry(cfg)
	if cfg.Verbose {
		for _, gen := range registry.Generators() {
			anns := lo.Map(gen.Annotations(), func(item string, _ int) string {
				return "@" + item
			})
			plugin.Logger.Debug().Msgf("生成器 %s (%s)", gen.Name(), strings.Join(anns, ","))
		}
	}

	stats, err := plugin.RunWithOptionsAndStats(context.Background(), &plugin.RunOptions{
		Registry: registry,
		Patterns: patterns,
		Verbose:  cfg.Verbose,
		Output:   cfg.Output,
		Async:    cfg.Async,
		NoOutput: *noOutput,
		Check:    *check,
	})
	if err != nil {
		if errors.Is(err, plugin.ErrStale) {
			fmt.Fprintf(os.Stderr, "%v\n请运行 autofrom %s 重新生成\n", err, strings.Join(patterns, " "))
		} else {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		os.Exit(1)
	}

	if stats != nil && (stats.FileCount > 0 || cfg.Verbose) {
		plugin.Logger.Info().Msgf("统计: 扫描 %d 个目标, 生成 %d 个文件, %d 个警告", stats.TargetCount, stats.FileCount, stats.WarningCount)
		plugin.Logger.Debug().Msgf("耗时: 扫描 %v, 生成 %v, 总计 %v", stats.ScanDuration, stats.GenerateDuration, stats.TotalDuration)
	}
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `autofrom - 同包结构体转换函数生成工具

用法:
  autofrom [选项] [路径...]
  autofrom gen [选项] [路径...]
  autofrom dev [选项] [路径...]

命令:
  gen     执行代码生成（默认）
  dev     启动开发模式，监听文件变动自动生成

路径:
  支持 Go 包路径模式，如:
    ./...          递归扫描当前目录及子目录（默认）
    ./pkg/...      递归扫描指定目录
    ./models       只扫描 models 目录

选项:
`)
	flag.PrintDefaults()

	_, _ = fmt.Fprintf(os.Stderr, "\n支持的注解:\n")
	_, _ = fmt.Fprint(os.Stderr, plugin.FormatHelpText(newRegistry(config.Default())))

	_, _ = fmt.Fprintf(os.Stderr, `字段覆盖:
  Name string `+"`autofrom:\"default=<Go 表达式>\"`"+`   不读取源字段，使用表达式

模板变量:
  $FILE     - 源文件名（不含 .go 后缀）
  $PACKAGE  - 包名

示例:
  autofrom                                  扫描当前目录（默认 ./...）
  autofrom -v ./models/...                  详细模式扫描 models 目录
  autofrom -output $FILE_conv ./...         指定输出文件名
  autofrom -check ./...                     检查生成的文件是否最新
  autofrom dev ./...                        开发模式，监听文件变动
`)
}
