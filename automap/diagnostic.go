package automap

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

var (
	// ErrUnknownReference 注解引用的结构体不在当前包中
	ErrUnknownReference = errors.New("unknown reference")
	// ErrMissingSourceField 未覆盖的目标字段在源结构体中不存在
	ErrMissingSourceField = errors.New("missing source field")
)

// DiagnosticKind 诊断类型
type DiagnosticKind int

const (
	KindUnknownReference DiagnosticKind = iota + 1
	KindMissingSourceField
	KindShadowedField // lint：default 覆盖了同名源字段
)

func (k DiagnosticKind) String() string {
	switch k {
	case KindUnknownReference:
		return "UnknownReference"
	case KindMissingSourceField:
		return "MissingSourceField"
	case KindShadowedField:
		return "ShadowedField"
	default:
		return "Unknown"
	}
}

// Severity 严重程度
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic 生成期诊断
type Diagnostic struct {
	Kind     DiagnosticKind
	Severity Severity
	Target   string // 被注解的结构体
	Source   string // 引用的结构体
	Field    string // 相关字段（可为空）
	Pos      token.Position
	Message  string
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	if d.Pos.IsValid() {
		sb.WriteString(d.Pos.String())
		sb.WriteString(": ")
	}
	sb.WriteString(d.Message)
	return sb.String()
}

// Unwrap 使 errors.Is 能匹配哨兵错误
func (d *Diagnostic) Unwrap() error {
	switch d.Kind {
	case KindUnknownReference:
		return ErrUnknownReference
	case KindMissingSourceField:
		return ErrMissingSourceField
	default:
		return nil
	}
}

func newUnknownReference(a AnnotatedSchema) *Diagnostic {
	pos := a.Pos
	if !pos.IsValid() {
		pos = a.Schema.Pos
	}
	return &Diagnostic{
		Kind:     KindUnknownReference,
		Severity: SeverityError,
		Target:   a.Schema.Name,
		Source:   a.Reference,
		Pos:      pos,
		Message:  fmt.Sprintf("%s 引用的结构体 %s 在包 %s 中不存在", a.Schema.Name, a.Reference, a.Schema.Package),
	}
}

func newMissingSourceField(target string, field Field, source string) *Diagnostic {
	return &Diagnostic{
		Kind:     KindMissingSourceField,
		Severity: SeverityError,
		Target:   target,
		Source:   source,
		Field:    field.Name,
		Pos:      field.Pos,
		Message:  fmt.Sprintf("%s.%s 在 %s 中没有同名字段，且未设置 default", target, field.Name, source),
	}
}

func newShadowedField(target string, field Field, source string) *Diagnostic {
	return &Diagnostic{
		Kind:     KindShadowedField,
		Severity: SeverityWarning,
		Target:   target,
		Source:   source,
		Field:    field.Name,
		Pos:      field.Pos,
		Message:  fmt.Sprintf("%s.%s 的 default 覆盖了 %s.%s", target, field.Name, source, field.Name),
	}
}

// Diagnostics 诊断集合，保持加入顺序
type Diagnostics []*Diagnostic

// Errors 返回错误级诊断
func (ds Diagnostics) Errors() Diagnostics {
	return ds.filter(SeverityError)
}

// Warnings 返回警告级诊断
func (ds Diagnostics) Warnings() Diagnostics {
	return ds.filter(SeverityWarning)
}

func (ds Diagnostics) filter(sev Severity) Diagnostics {
	var result Diagnostics
	for _, d := range ds {
		if d.Severity == sev {
			result = append(result, d)
		}
	}
	return result
}

// Fields 返回诊断涉及的字段名
func (ds Diagnostics) Fields() []string {
	var fields []string
	for _, d := range ds {
		if d.Field != "" {
			fields = append(fields, d.Field)
		}
	}
	return fields
}

// Err 把全部错误级诊断合并为一个 error，没有错误时返回 nil
func (ds Diagnostics) Err() error {
	errs := ds.Errors()
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &MultiError{Diagnostics: errs}
	}
}

// MultiError 同一结构体的多个错误
type MultiError struct {
	Diagnostics Diagnostics
}

func (e *MultiError) Error() string {
	lines := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		lines = append(lines, d.Error())
	}
	return strings.Join(lines, "\n")
}

// Unwrap 支持 errors.Is / errors.As 遍历每一条诊断
func (e *MultiError) Unwrap() []error {
	errs := make([]error, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		errs = append(errs, d)
	}
	return errs
}

// AsDiagnostics 从 error 中取出全部诊断
func AsDiagnostics(err error) Diagnostics {
	if err == nil {
		return nil
	}
	var multi *MultiError
	if errors.As(err, &multi) {
		return multi.Diagnostics
	}
	var d *Diagnostic
	if errors.As(err, &d) {
		return Diagnostics{d}
	}
	return nil
}
