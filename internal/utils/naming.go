package utils

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReceiverName 根据类型名生成方法接收者名：User -> u
func ReceiverName(typeName string) string {
	typeName = strings.TrimLeft(typeName, "*")
	r, _ := utf8.DecodeRuneInString(typeName)
	if r == utf8.RuneError || !unicode.IsLetter(r) {
		return "r"
	}
	return string(unicode.ToLower(r))
}

// IsValidIdent 判断是否是合法的 Go 标识符（非关键字）
func IsValidIdent(name string) bool {
	return token.IsIdentifier(name)
}

// IsExported 判断标识符是否导出
func IsExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
