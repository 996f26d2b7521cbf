// Package autofromgen 为带 @AutoFrom 注解的结构体生成同包结构体之间的转换函数。
//
//	type Model1 struct {
//	    ID   int
//	    Name string
//	}
//
//	// @AutoFrom(from=Model1)
//	type Model3 struct {
//	    ID       int `autofrom:"default=0"`
//	    Name     string
//	    Metadata map[string]string `autofrom:"default=map[string]string{}"`
//	}
//
// 生成:
//
//	func NewModel3FromModel1(src Model1) Model3 {
//	    return Model3{ID: 0, Name: src.Name, Metadata: map[string]string{}}
//	}
//
// 字段取值规则：
//   - 有 autofrom:"default=<表达式>" 时始终使用该表达式
//   - 否则读取源结构体的同名字段（区分大小写）：类型文本相同直接赋值，
//     存在匹配的 @Converter 函数时调用它，其余写成 T(src.F) 交给编译器检查
//   - 既没有 default 也没有同名字段时报错，该结构体不生成任何代码
//
// @Converter 标记的包级函数必须恰好一个参数一个返回值，
// 同一对类型只能有一个转换函数。
package autofromgen
