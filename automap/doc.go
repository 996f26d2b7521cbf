// Package automap 实现结构体之间按字段名自动映射的核心算法。
//
// # 概述
//
// 给定一个带引用的目标结构体（[AnnotatedSchema]）和包内全部结构体（[Universe]），
// automap 决定生成的转换函数需要为每个目标字段写出什么取值表达式：
//
//  1. [Resolve] 在 Universe 中精确查找引用的源结构体
//  2. [MatchField] 为单个字段选择策略：default 覆盖，或同名源字段转换
//  3. [Synthesize] 按声明顺序汇总为 [ConversionSpec]，收集所有缺失字段
//
// 本包不解析源码、不输出代码，也不判断类型是否可转换。
// 源码解析见 internal/structparse，代码输出与转换表见 autofromgen。
//
// # 示例
//
//	model1 := &automap.Schema{Name: "Model1", Fields: []automap.Field{
//	    {Name: "ID", Type: "int"},
//	    {Name: "Name", Type: "string"},
//	}}
//	model3 := &automap.Schema{Name: "Model3", Fields: []automap.Field{
//	    {Name: "ID", Type: "int", Directive: automap.DefaultValue{Expr: "0"}},
//	    {Name: "Name", Type: "string"},
//	}}
//	universe, _ := automap.NewUniverse(model1, model3)
//	results := automap.Plan(universe, automap.AnnotatedSchema{Schema: model3, Reference: "Model1"})
//
// results[0].Spec 中 ID 绑定为 default "0"，Name 绑定为 convert(Name)。
//
// # 错误
//
// 所有错误都是生成期的 [*Diagnostic]，可以用 errors.Is 匹配
// [ErrUnknownReference] 与 [ErrMissingSourceField]。
// 同一结构体的多个缺失字段合并为 [*MultiError]，用 [AsDiagnostics] 取出。
package automap
