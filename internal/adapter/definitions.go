package adapter

import "github.com/rowan-gud/kysely-codegen/internal/ast"

// Names of the definitions shared by several dialects.
const (
	DefJson          = "Json"
	DefJsonArray     = "JsonArray"
	DefJsonObject    = "JsonObject"
	DefJsonPrimitive = "JsonPrimitive"
	DefJsonValue     = "JsonValue"
	DefNumeric       = "Numeric"
	DefTimestamp     = "Timestamp"
)

// jsonDefinitions returns the recursive JSON value shapes. JsonValue refers
// to JsonArray and JsonObject, which refer back to JsonValue.
func jsonDefinitions() map[string]ast.Node {
	return map[string]ast.Node{
		DefJson: ast.Columns(
			ast.Ident(DefJsonValue),
			ast.Ident(ast.NameString),
			ast.Ident(ast.NameString),
		),
		DefJsonArray: ast.ArrayOf(ast.Ident(DefJsonValue)),
		DefJsonObject: ast.Obj(
			ast.IndexProp("x", ast.NewUnion(ast.Ident(DefJsonValue), ast.Undefined())),
		),
		DefJsonPrimitive: ast.NewUnion(
			ast.Ident(ast.NameBoolean),
			ast.Ident(ast.NameNumber),
			ast.Ident(ast.NameString),
			ast.Null(),
		),
		DefJsonValue: ast.NewUnion(
			ast.Ident(DefJsonArray),
			ast.Ident(DefJsonObject),
			ast.Ident(DefJsonPrimitive),
		),
	}
}

// stringNumeric reads arbitrary-precision numbers as strings and accepts
// numbers or strings on write.
func stringNumeric() ast.Node {
	writable := ast.NewUnion(ast.Ident(ast.NameNumber), ast.Ident(ast.NameString))
	return ast.Columns(ast.Ident(ast.NameString), writable, writable)
}

// dateColumn reads native dates and accepts dates or strings on write.
func dateColumn() ast.Node {
	writable := ast.NewUnion(ast.Ident(ast.NameDate), ast.Ident(ast.NameString))
	return ast.Columns(ast.Ident(ast.NameDate), writable, writable)
}

func numericNode(p Policy, stringDefinition string) ast.Node {
	switch p {
	case PolicyNumberOrString:
		return ast.NewUnion(ast.Ident(ast.NameNumber), ast.Ident(ast.NameString))
	case PolicyString:
		return ast.Ident(stringDefinition)
	default:
		return ast.Ident(ast.NameNumber)
	}
}

func temporalNode(p Policy, temporal string) ast.Node {
	if p == PolicyString {
		return ast.Ident(ast.NameString)
	}
	return ast.Ident(temporal)
}

func merge(tables ...map[string]ast.Node) map[string]ast.Node {
	out := map[string]ast.Node{}
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

func idents(names map[string]string) map[string]ast.Node {
	out := make(map[string]ast.Node, len(names))
	for k, v := range names {
		out[k] = ast.Ident(v)
	}
	return out
}
