// Package structparse 提供 Go 结构体的静态分析。
//
// 本包以包目录为单位工作：
//
//  1. 包解析 - 解析目录下全部非测试 Go 文件，收集所有结构体；
//     protoc 等工具生成的文件同样参与，可用 SkipFilesWithHeader 排除指定头部的文件
//  2. 字段解析 - 字段名、类型源码、标签、声明位置，嵌入字段按 Go 规则取类型名；
//     空白字段 _ 无法读写，直接忽略
//  3. 导入解析 - 记录每个文件的导入，并通过 pkgresolver 读取真实包名
//
// 嵌入字段不展开：嵌入字段本身就是外层结构体的一个字段。
//
// # 基本用法
//
//	pkg, err := structparse.ParsePackage("./models")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range pkg.Structs {
//	    fmt.Printf("结构体: %s.%s\n", s.PackageName, s.Name)
//	    for _, field := range s.Fields {
//	        fmt.Printf("  字段: %s %s\n", field.Name, field.Type)
//	    }
//	}
//
// # 依赖注入与测试
//
// 包名解析可以替换：
//
//	ctx := structparse.NewParseContextWithResolver(myResolver)
//	pkg, err := ctx.ParsePackage(dir)
package structparse
