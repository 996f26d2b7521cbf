package plugin

import (
	"fmt"
	"strings"
)

// FormatHelpText 为所有注册的生成器生成帮助文本
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var sb strings.Builder
	for _, gen := range generators {
		annotations := gen.Annotations()
		mainAnnotation := annotations[0]
		paramDefs := gen.ParamDefs()

		fmt.Fprintf(&sb, "  @%s - %s\n", mainAnnotation, gen.Name())
		for _, other := range annotations[1:] {
			fmt.Fprintf(&sb, "  @%s - %s\n", other, gen.Name())
		}

		sb.WriteString("    参数:\n")
		if !hasParam(paramDefs, "output") {
			sb.WriteString("      output - 输出文件路径（支持 $FILE、$PACKAGE）\n")
		}
		for _, param := range paramDefs {
			required := ""
			if param.Required {
				required = " (必填)"
			}
			defaultVal := ""
			if param.Default != "" {
				defaultVal = fmt.Sprintf(" [默认: %s]", param.Default)
			}
			fmt.Fprintf(&sb, "      %s%s%s - %s\n", param.Name, required, defaultVal, param.Description)
		}

		sb.WriteString("    示例:\n")
		fmt.Fprintf(&sb, "      @%s%s\n", mainAnnotation, exampleArgs(paramDefs, ""))
		fmt.Fprintf(&sb, "      @%s%s\n", mainAnnotation, exampleArgs(paramDefs, "output=`$FILE_gen.go`"))
		sb.WriteString("\n")
	}

	return sb.String()
}

// exampleArgs 用必填参数拼出注解示例参数
func exampleArgs(paramDefs []ParamDef, extra string) string {
	var args []string
	for _, p := range paramDefs {
		if p.Required {
			args = append(args, fmt.Sprintf("%s=%s", p.Name, strings.ToUpper(p.Name[:1])+p.Name[1:]))
		}
	}
	if extra != "" {
		args = append(args, extra)
	}
	if len(args) == 0 {
		return ""
	}
	return "(" + strings.Join(args, ", ") + ")"
}

func hasParam(paramDefs []ParamDef, name string) bool {
	for _, p := range paramDefs {
		if p.Name == name {
			return true
		}
	}
	return false
}

// FormatParamDef 格式化单个参数定义
func FormatParamDef(param ParamDef) string {
	parts := []string{param.Name}

	if param.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "optional")
	}
	if param.Default != "" {
		parts = append(parts, fmt.Sprintf("default=%s", param.Default))
	}
	if param.Description != "" {
		parts = append(parts, param.Description)
	}

	return strings.Join(parts, ", ")
}
