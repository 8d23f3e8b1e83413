package adapter

import "github.com/rowan-gud/kysely-codegen/internal/ast"

// MSSQL maps SQL Server system type names.
type MSSQL struct {
	base
}

func newMSSQL(p Policies) *MSSQL {
	definitions := merge(jsonDefinitions(), map[string]ast.Node{
		DefNumeric: stringNumeric(),
	})

	scalars := idents(map[string]string{
		"bigint":           ast.NameNumber,
		"binary":           ast.NameBuffer,
		"bit":              ast.NameBoolean,
		"char":             ast.NameString,
		"float":            ast.NameNumber,
		"geography":        ast.NameBuffer,
		"geometry":         ast.NameBuffer,
		"hierarchyid":      ast.NameBuffer,
		"image":            ast.NameBuffer,
		"int":              ast.NameNumber,
		"nchar":            ast.NameString,
		"ntext":            ast.NameString,
		"nvarchar":         ast.NameString,
		"real":             ast.NameNumber,
		"smallint":         ast.NameNumber,
		"text":             ast.NameString,
		"time":             ast.NameDate,
		"timestamp":        ast.NameBuffer,
		"rowversion":       ast.NameBuffer,
		"tinyint":          ast.NameNumber,
		"uniqueidentifier": ast.NameString,
		"varbinary":        ast.NameBuffer,
		"varchar":          ast.NameString,
		"xml":              ast.NameString,
	})

	a := &MSSQL{base: base{
		dialect:        DialectMSSQL,
		defaultSchemas: []string{"dbo"},
		scalars:        scalars,
		definitions:    definitions,
	}}

	keys, _ := policyKeysFor(DialectMSSQL)
	temporal := func(p Policy) ast.Node { return temporalNode(p, ast.NameDate) }
	a.applyPolicies(p, keys, temporal, temporal, func(p Policy) ast.Node {
		return numericNode(p, DefNumeric)
	})
	return a
}
