package automap

// Resolve 在 universe 中按名称精确查找注解引用的结构体
// 找不到时返回 KindUnknownReference 诊断，只影响这一个注解
func Resolve(annotated AnnotatedSchema, universe *Universe) (*Schema, error) {
	source, ok := universe.Lookup(annotated.Reference)
	if !ok {
		return nil, newUnknownReference(annotated)
	}
	return source, nil
}
