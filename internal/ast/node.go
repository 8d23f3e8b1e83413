// Package ast is the type-expression model shared by the adapters, the
// transformer and the serializer.
//
// Nodes are plain values. The set of node kinds is closed: only the types in
// this file implement Node. Equality is structural (see Equal), which lets
// unions drop duplicate members and lets named definitions be reused by
// reference instead of being copied.
package ast

// Node is a type expression.
type Node interface {
	node()
}

// Identifier names a type: a builtin (string, number, null), a definition
// (JsonValue) or an enum declaration.
type Identifier struct {
	Name string
}

// Literal is a string literal type, e.g. "active".
type Literal struct {
	Value string
}

// Raw is a type expression supplied verbatim by the user through an override.
type Raw struct {
	Text string
}

// Array is Element[].
type Array struct {
	Element Node
}

// Union is A | B | C. Build unions with NewUnion so that members are
// flattened and deduplicated.
type Union struct {
	Members []Node
}

// Object is an inline object type { a: A; b?: B }.
type Object struct {
	Properties []Property
}

// Property is a member of an Object. Index renders the property as an index
// signature [Name: string]: Type.
type Property struct {
	Name     string
	Type     Node
	Optional bool
	Index    bool
}

// ColumnType carries the select, insert and update shapes of a column.
// A nil Insert or Update means "same as Select".
type ColumnType struct {
	Select Node
	Insert Node
	Update Node
}

// Generic is Name<Args...>.
type Generic struct {
	Name string
	Args []Node
}

func (Identifier) node() {}
func (Literal) node()    {}
func (Raw) node()        {}
func (Array) node()      {}
func (Union) node()      {}
func (Object) node()     {}
func (Property) node()   {}
func (ColumnType) node() {}
func (Generic) node()    {}

// Builtin identifiers.
const (
	NameNull      = "null"
	NameUndefined = "undefined"
	NameUnknown   = "unknown"
	NameString    = "string"
	NameNumber    = "number"
	NameBoolean   = "boolean"
	NameBigint    = "bigint"
	NameDate      = "Date"
	NameBuffer    = "Buffer"
)

// Ident returns an Identifier node.
func Ident(name string) Node { return Identifier{Name: name} }

// Lit returns a string Literal node.
func Lit(value string) Node { return Literal{Value: value} }

// RawExpr returns a Raw node.
func RawExpr(text string) Node { return Raw{Text: text} }

// ArrayOf returns Element[].
func ArrayOf(element Node) Node { return Array{Element: element} }

// Obj returns an Object node.
func Obj(props ...Property) Node { return Object{Properties: props} }

// Prop returns a required Property.
func Prop(name string, t Node) Property { return Property{Name: name, Type: t} }

// IndexProp returns an index signature [name: string]: t.
func IndexProp(name string, t Node) Property { return Property{Name: name, Type: t, Index: true} }

// Columns returns a ColumnType node. Pass nil for a variant that matches
// the select shape.
func Columns(sel, insert, update Node) ColumnType {
	return ColumnType{Select: sel, Insert: insert, Update: update}
}

// GenericOf returns Name<Args...>.
func GenericOf(name string, args ...Node) Node { return Generic{Name: name, Args: args} }

// Null, Undefined and Unknown are shorthands for the builtin identifiers.
func Null() Node      { return Identifier{Name: NameNull} }
func Undefined() Node { return Identifier{Name: NameUndefined} }
func Unknown() Node   { return Identifier{Name: NameUnknown} }

// NewUnion builds a normalized union. Nested unions are flattened, members
// equal to an earlier member are dropped, and first-seen order is kept.
// A union that collapses to one member returns that member itself; an empty
// union returns the never-matching identifier "never".
func NewUnion(members ...Node) Node {
	flat := make([]Node, 0, len(members))
	seen := make(map[string]bool, len(members))
	var add func(n Node)
	add = func(n Node) {
		if n == nil {
			return
		}
		if u, ok := n.(Union); ok {
			for _, m := range u.Members {
				add(m)
			}
			return
		}
		k := Key(n)
		if seen[k] {
			return
		}
		seen[k] = true
		flat = append(flat, n)
	}
	for _, m := range members {
		add(m)
	}

	switch len(flat) {
	case 0:
		return Identifier{Name: "never"}
	case 1:
		return flat[0]
	default:
		return Union{Members: flat}
	}
}
