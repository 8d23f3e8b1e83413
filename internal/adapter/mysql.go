package adapter

import "github.com/rowan-gud/kysely-codegen/internal/ast"

// MySQL maps MySQL DATA_TYPE names. The table follows what the mysql2
// driver returns for each type.
type MySQL struct {
	base
}

func newMySQL(p Policies) *MySQL {
	definitions := merge(jsonDefinitions(), map[string]ast.Node{
		"Decimal": stringNumeric(),
		"Geometry": ast.NewUnion(
			ast.Ident("LineString"),
			ast.Ident("Point"),
			ast.Ident("Polygon"),
			ast.ArrayOf(ast.Ident("Geometry")),
		),
		"LineString": ast.ArrayOf(ast.Ident("Point")),
		"Point": ast.Obj(
			ast.Prop("x", ast.Ident(ast.NameNumber)),
			ast.Prop("y", ast.Ident(ast.NameNumber)),
		),
		"Polygon": ast.ArrayOf(ast.Ident("LineString")),
	})

	scalars := merge(idents(map[string]string{
		"bigint":     ast.NameNumber,
		"binary":     ast.NameBuffer,
		"bit":        ast.NameBuffer,
		"blob":       ast.NameBuffer,
		"char":       ast.NameString,
		"double":     ast.NameNumber,
		"float":      ast.NameNumber,
		"geometry":   "Geometry",
		"int":        ast.NameNumber,
		"json":       DefJson,
		"linestring": "LineString",
		"longblob":   ast.NameBuffer,
		"longtext":   ast.NameString,
		"mediumblob": ast.NameBuffer,
		"mediumint":  ast.NameNumber,
		"mediumtext": ast.NameString,
		"point":      "Point",
		"polygon":    "Polygon",
		"set":        ast.NameString,
		"smallint":   ast.NameNumber,
		"text":       ast.NameString,
		"time":       ast.NameString,
		"tinyblob":   ast.NameBuffer,
		"tinyint":    ast.NameNumber,
		"tinytext":   ast.NameString,
		"varbinary":  ast.NameBuffer,
		"varchar":    ast.NameString,
		"year":       ast.NameNumber,
		"enum":       ast.NameString,
	}), map[string]ast.Node{
		// information_schema reports "geomcollection"; Adminer calls it
		// "geometrycollection".
		"geomcollection":     ast.ArrayOf(ast.Ident("Geometry")),
		"geometrycollection": ast.ArrayOf(ast.Ident("Geometry")),
		"multilinestring":    ast.ArrayOf(ast.Ident("LineString")),
		"multipoint":         ast.ArrayOf(ast.Ident("Point")),
		"multipolygon":       ast.ArrayOf(ast.Ident("Polygon")),
	})

	a := &MySQL{base: base{
		dialect:     DialectMySQL,
		scalars:     scalars,
		definitions: definitions,
	}}

	keys, _ := policyKeysFor(DialectMySQL)
	temporal := func(p Policy) ast.Node { return temporalNode(p, ast.NameDate) }
	a.applyPolicies(p, keys, temporal, temporal, func(p Policy) ast.Node {
		return numericNode(p, "Decimal")
	})
	return a
}
