package adapter

import (
	"strings"

	"github.com/rowan-gud/kysely-codegen/internal/ast"
)

// SQLite maps declared column types. SQLite accepts arbitrary declared type
// names, so ScalarTypeOf falls back to the affinity rules before giving up.
type SQLite struct {
	base
}

func newSQLite() *SQLite {
	scalars := idents(map[string]string{
		"blob":      ast.NameBuffer,
		"boolean":   ast.NameNumber,
		"integer":   ast.NameNumber,
		"int":       ast.NameNumber,
		"bigint":    ast.NameNumber,
		"smallint":  ast.NameNumber,
		"tinyint":   ast.NameNumber,
		"numeric":   ast.NameNumber,
		"decimal":   ast.NameNumber,
		"real":      ast.NameNumber,
		"double":    ast.NameNumber,
		"float":     ast.NameNumber,
		"text":      ast.NameString,
		"varchar":   ast.NameString,
		"char":      ast.NameString,
		"clob":      ast.NameString,
		"json":      ast.NameString,
		"date":      ast.NameString,
		"datetime":  ast.NameString,
		"timestamp": ast.NameString,
	})

	return &SQLite{base: base{
		dialect:        DialectSQLite,
		defaultSchemas: []string{"main"},
		scalars:        scalars,
		definitions:    jsonDefinitions(),
	}}
}

// ScalarTypeOf strips length arguments (varchar(255)) and applies SQLite's
// column affinity rules to declared types missing from the table.
func (a *SQLite) ScalarTypeOf(nativeType string) (ast.Node, bool) {
	name := strings.ToLower(strings.TrimSpace(nativeType))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	if t, ok := a.base.ScalarTypeOf(name); ok {
		return t, true
	}

	switch {
	case name == "":
		return ast.Unknown(), false
	case strings.Contains(name, "int"):
		return ast.Ident(ast.NameNumber), true
	case strings.Contains(name, "char"), strings.Contains(name, "clob"), strings.Contains(name, "text"):
		return ast.Ident(ast.NameString), true
	case strings.Contains(name, "blob"):
		return ast.Ident(ast.NameBuffer), true
	case strings.Contains(name, "real"), strings.Contains(name, "floa"), strings.Contains(name, "doub"):
		return ast.Ident(ast.NameNumber), true
	}
	return ast.Unknown(), false
}
