package automap

import "errors"

// Synthesize 为一个注解结构体合成转换规格
// 字段按声明顺序逐个匹配，收集全部 MissingSourceField 后一次性返回，
// 有任何错误时不返回规格。不检查类型是否可转换，那由 Go 编译器在生成代码上完成
func Synthesize(annotated AnnotatedSchema, source *Schema) (*ConversionSpec, error) {
	target := annotated.Schema
	spec := &ConversionSpec{
		Source:   source.Name,
		Target:   target.Name,
		Package:  target.Package,
		Bindings: make([]Binding, 0, len(target.Fields)),
	}

	var diags Diagnostics
	for _, field := range target.Fields {
		value, err := MatchField(field, target.Name, source)
		if err != nil {
			var d *Diagnostic
			if errors.As(err, &d) {
				diags = append(diags, d)
				continue
			}
			return nil, err
		}
		spec.Bindings = append(spec.Bindings, Binding{Field: field.Name, Value: value})
	}

	if err := diags.Err(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Lint 检查 default 是否遮蔽了同名源字段
// 只产生警告，不改变 default 优先的行为
func Lint(annotated AnnotatedSchema, source *Schema) Diagnostics {
	var diags Diagnostics
	for _, field := range annotated.Schema.Fields {
		if _, ok := field.DefaultExpr(); !ok {
			continue
		}
		if _, exists := source.Field(field.Name); exists {
			diags = append(diags, newShadowedField(annotated.Schema.Name, field, source.Name))
		}
	}
	return diags
}

// Result 单个注解的处理结果，Spec 与 Err 互斥
type Result struct {
	Annotated AnnotatedSchema
	Spec      *ConversionSpec
	Err       error
	Warnings  Diagnostics
}

// Plan 对每个注解独立执行 Resolve + Synthesize
// 某个注解失败不会影响其他注解，结果顺序与输入一致
func Plan(universe *Universe, annotated ...AnnotatedSchema) []Result {
	results := make([]Result, 0, len(annotated))
	for _, a := range annotated {
		r := Result{Annotated: a}

		source, err := Resolve(a, universe)
		if err != nil {
			r.Err = err
			results = append(results, r)
			continue
		}

		r.Warnings = Lint(a, source)
		r.Spec, r.Err = Synthesize(a, source)
		results = append(results, r)
	}
	return results
}
