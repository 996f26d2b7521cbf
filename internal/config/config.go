// Package config 读取可选的 autofrom.yaml
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/donutnomad/autofrom/internal/utils"
)

// FileName 默认配置文件名，在工作目录查找
const FileName = "autofrom.yaml"

// DefaultOutput 默认输出路径模板
const DefaultOutput = "$FILE_autofrom.go"

// DefaultName 默认构造函数名模板
const DefaultName = "New{{.Target}}From{{.Source}}"

// Config 配置文件内容，全部字段可选
//
//	output: $FILE_autofrom.go
//	name: New{{.Target}}From{{.Source}}
//	method: false
//	async: false
//	verbose: false
//	patterns:
//	  - ./...
type Config struct {
	Output   string   `yaml:"output"`   // 默认输出路径
	Name     string   `yaml:"name"`     // 默认构造函数名模板
	Method   bool     `yaml:"method"`   // 默认是否同时生成 From<Source> 方法
	Async    bool     `yaml:"async"`    // 并行执行生成器
	Verbose  bool     `yaml:"verbose"`  // 详细输出
	Patterns []string `yaml:"patterns"` // 命令行未指定路径时使用的扫描路径
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load 读取配置文件
// path 为空时尝试读取工作目录下的 autofrom.yaml，文件不存在则返回默认配置；
// 显式指定的 path 不存在时报错
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Clean(path), err)
	}
	return cfg, nil
}

// Parse 解析 YAML，未知字段视为错误，支持 ${ENV} 展开
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	setDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = []string{"./..."}
	}
}

func validate(cfg *Config) error {
	if !strings.HasSuffix(cfg.Output, ".go") && !strings.Contains(cfg.Output, "$") {
		return fmt.Errorf("output 必须以 .go 结尾: %s", cfg.Output)
	}
	if _, err := utils.ExecuteTemplate(cfg.Name, map[string]string{"Target": "T", "Source": "S", "Package": "p"}); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	return nil
}
