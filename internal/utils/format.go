package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/tools/imports"
)

// FormatSource 整理 import 并 gofmt
// filename 只用于决定 import 分组与错误信息，不会读写磁盘
func FormatSource(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("格式化 %s 失败: %w", filename, err)
	}
	return out, nil
}

// WriteFormat 格式化后写入文件，自动创建目录
func WriteFormat(path string, src []byte) error {
	formatted, err := FormatSource(path, src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return os.WriteFile(path, formatted, 0o644)
}

// ExecuteTemplate 渲染 text/template，可使用 sprig 函数
func ExecuteTemplate(text string, data any) (string, error) {
	tmpl, err := template.New("").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("解析模板 %q 失败: %w", text, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("渲染模板 %q 失败: %w", text, err)
	}
	return buf.String(), nil
}

// MustExecuteTemplate 同 ExecuteTemplate，失败时 panic
func MustExecuteTemplate(text string, data any) string {
	s, err := ExecuteTemplate(text, data)
	if err != nil {
		panic(err)
	}
	return s
}
