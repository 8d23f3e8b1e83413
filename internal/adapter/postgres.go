package adapter

import (
	"strings"

	"github.com/rowan-gud/kysely-codegen/internal/ast"
)

// Postgres maps PostgreSQL udt names (int4, timestamptz, _text, …).
type Postgres struct {
	base
}

func newPostgres(p Policies) *Postgres {
	intervalShape := ast.Obj(
		ast.Property{Name: "years", Type: ast.Ident(ast.NameNumber), Optional: true},
		ast.Property{Name: "months", Type: ast.Ident(ast.NameNumber), Optional: true},
		ast.Property{Name: "days", Type: ast.Ident(ast.NameNumber), Optional: true},
		ast.Property{Name: "hours", Type: ast.Ident(ast.NameNumber), Optional: true},
		ast.Property{Name: "minutes", Type: ast.Ident(ast.NameNumber), Optional: true},
		ast.Property{Name: "seconds", Type: ast.Ident(ast.NameNumber), Optional: true},
		ast.Property{Name: "milliseconds", Type: ast.Ident(ast.NameNumber), Optional: true},
	)
	intervalWritable := ast.NewUnion(ast.Ident("IPostgresInterval"), ast.Ident(ast.NameNumber), ast.Ident(ast.NameString))
	int8Writable := ast.NewUnion(ast.Ident(ast.NameBigint), ast.Ident(ast.NameNumber), ast.Ident(ast.NameString))

	definitions := merge(jsonDefinitions(), map[string]ast.Node{
		"Circle": ast.Obj(
			ast.Prop("x", ast.Ident(ast.NameNumber)),
			ast.Prop("y", ast.Ident(ast.NameNumber)),
			ast.Prop("radius", ast.Ident(ast.NameNumber)),
		),
		"IPostgresInterval": intervalShape,
		"Int8":              ast.Columns(ast.Ident(ast.NameString), int8Writable, int8Writable),
		"Interval":          ast.Columns(ast.Ident("IPostgresInterval"), intervalWritable, intervalWritable),
		DefNumeric:          stringNumeric(),
		"Point": ast.Obj(
			ast.Prop("x", ast.Ident(ast.NameNumber)),
			ast.Prop("y", ast.Ident(ast.NameNumber)),
		),
		DefTimestamp: dateColumn(),
	})

	scalars := idents(map[string]string{
		"bit":           ast.NameString,
		"bool":          ast.NameBoolean,
		"box":           ast.NameString,
		"bpchar":        ast.NameString,
		"bytea":         ast.NameBuffer,
		"char":          ast.NameString,
		"cidr":          ast.NameString,
		"circle":        "Circle",
		"citext":        ast.NameString,
		"float4":        ast.NameNumber,
		"float8":        ast.NameNumber,
		"inet":          ast.NameString,
		"int2":          ast.NameNumber,
		"int4":          ast.NameNumber,
		"int8":          "Int8",
		"interval":      "Interval",
		"json":          DefJson,
		"jsonb":         DefJson,
		"line":          ast.NameString,
		"lseg":          ast.NameString,
		"macaddr":       ast.NameString,
		"macaddr8":      ast.NameString,
		"money":         ast.NameString,
		"name":          ast.NameString,
		"oid":           ast.NameNumber,
		"path":          ast.NameString,
		"point":         "Point",
		"polygon":       ast.NameString,
		"text":          ast.NameString,
		"time":          ast.NameString,
		"timetz":        ast.NameString,
		"tsquery":       ast.NameString,
		"tsvector":      ast.NameString,
		"txid_snapshot": ast.NameString,
		"uuid":          ast.NameString,
		"varbit":        ast.NameString,
		"varchar":       ast.NameString,
		"xml":           ast.NameString,
		"int4range":     ast.NameString,
		"int8range":     ast.NameString,
		"numrange":      ast.NameString,
		"tsrange":       ast.NameString,
		"tstzrange":     ast.NameString,
		"daterange":     ast.NameString,
	})

	a := &Postgres{base: base{
		dialect:        DialectPostgres,
		defaultSchemas: []string{"public"},
		scalars:        scalars,
		definitions:    definitions,
	}}

	keys, _ := policyKeysFor(DialectPostgres)
	temporal := func(p Policy) ast.Node { return temporalNode(p, DefTimestamp) }
	a.applyPolicies(p, keys, temporal, temporal, func(p Policy) ast.Node {
		return numericNode(p, DefNumeric)
	})
	return a
}

// ScalarTypeOf resolves udt names, unwrapping the leading underscore
// PostgreSQL uses for array types (_int4 is int4[]).
func (a *Postgres) ScalarTypeOf(nativeType string) (ast.Node, bool) {
	if t, ok := a.base.ScalarTypeOf(nativeType); ok {
		return t, true
	}
	if elem, found := strings.CutPrefix(nativeType, "_"); found && elem != "" {
		if t, ok := a.ScalarTypeOf(elem); ok {
			return ast.ArrayOf(t), true
		}
	}
	return ast.Unknown(), false
}
