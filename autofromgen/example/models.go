// Package example 演示 @AutoFrom 生成的转换函数
package example

//go:generate go run github.com/donutnomad/autofrom gen .

// MyString 需要显式转换函数的字符串类型
type MyString string

// @Converter
func ToMyString(s string) MyString {
	return MyString(s)
}

// @AutoFrom(from=Model2)
type Model1 struct {
	ID    int
	Name  string
	Attrs []string
}

// @AutoFrom(from=Model1)
type Model2 struct {
	ID    int
	Name  string
	Attrs []string
}

// @AutoFrom(from=Model1, method=true)
type Model3 struct {
	ID       int `autofrom:"default=0"`
	Name     string
	Attrs    []string
	Metadata map[string]string `autofrom:"default=map[string]string{}"`
}

// @AutoFrom(from=Model1)
type Model4 struct {
	ID    int64
	Name  MyString
	Attrs []string
	Tags  []string `autofrom:"default=nil"`
}
