package automap

// MatchField 计算单个目标字段的取值策略
//  1. 有 DefaultValue 指令：直接使用表达式，不查找源字段
//  2. 否则在源结构体中查找同名字段（精确、区分大小写）
//  3. 找不到则返回 KindMissingSourceField 诊断
//
// 同名字段总是生成 convert，即使两侧类型相同
func MatchField(target Field, targetSchema string, source *Schema) (ValueExpr, error) {
	if expr, ok := target.DefaultExpr(); ok {
		return ValueExpr{
			Kind:       ValueDefault,
			Expr:       expr,
			TargetType: target.Type,
		}, nil
	}

	sourceField, ok := source.Field(target.Name)
	if !ok {
		return ValueExpr{}, newMissingSourceField(targetSchema, target, source.Name)
	}

	return ValueExpr{
		Kind:        ValueConvert,
		SourceField: sourceField.Name,
		SourceType:  sourceField.Type,
		TargetType:  target.Type,
	}, nil
}
