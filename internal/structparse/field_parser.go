package structparse

import (
	"go/ast"
	"go/token"
	"strconv"

	"github.com/donutnomad/autofrom/internal/xast"
)

// parseStructFields 解析字段列表，保持声明顺序，跳过空白字段 _
func parseStructFields(fset *token.FileSet, fieldList *ast.FieldList) []FieldInfo {
	if fieldList == nil {
		return nil
	}

	var fields []FieldInfo
	for _, field := range fieldList.List {
		fieldType := xast.GetFieldType(field.Type)
		qualifiers := xast.Qualifiers(field.Type)

		var fieldTag string
		if field.Tag != nil {
			if tag, err := strconv.Unquote(field.Tag.Value); err == nil {
				fieldTag = tag
			}
		}

		if len(field.Names) == 0 {
			// 嵌入字段
			fields = append(fields, FieldInfo{
				Name:       xast.EmbeddedFieldName(field.Type),
				Type:       fieldType,
				Tag:        fieldTag,
				Embedded:   true,
				Qualifiers: qualifiers,
				Pos:        fset.Position(field.Type.Pos()),
			})
			continue
		}

		for _, name := range field.Names {
			if name.Name == "_" {
				continue
			}
			fields = append(fields, FieldInfo{
				Name:       name.Name,
				Type:       fieldType,
				Tag:        fieldTag,
				Qualifiers: qualifiers,
				Pos:        fset.Position(name.Pos()),
			})
		}
	}
	return fields
}
