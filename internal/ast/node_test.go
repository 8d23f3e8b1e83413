package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnion(t *testing.T) {
	tests := []struct {
		name     string
		members  []Node
		expected Node
	}{
		{
			name:     "keeps first-seen order",
			members:  []Node{Ident("string"), Ident("number")},
			expected: Union{Members: []Node{Ident("string"), Ident("number")}},
		},
		{
			name:     "drops structural duplicates",
			members:  []Node{Ident("string"), Null(), Ident("string")},
			expected: Union{Members: []Node{Ident("string"), Null()}},
		},
		{
			name:     "flattens nested unions",
			members:  []Node{NewUnion(Ident("a"), Ident("b")), Ident("c"), NewUnion(Ident("b"), Ident("d"))},
			expected: Union{Members: []Node{Ident("a"), Ident("b"), Ident("c"), Ident("d")}},
		},
		{
			name:     "single member collapses",
			members:  []Node{Ident("string"), Ident("string")},
			expected: Ident("string"),
		},
		{
			name:     "nil members are ignored",
			members:  []Node{nil, Ident("string")},
			expected: Ident("string"),
		},
		{
			name:     "empty union is never",
			members:  nil,
			expected: Ident("never"),
		},
		{
			name:     "arrays compare structurally",
			members:  []Node{ArrayOf(Ident("number")), ArrayOf(Ident("number"))},
			expected: ArrayOf(Ident("number")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewUnion(tt.members...))
		})
	}
}

func TestEqual(t *testing.T) {
	point := Obj(Prop("x", Ident("number")), Prop("y", Ident("number")))

	assert.True(t, Equal(point, Obj(Prop("x", Ident("number")), Prop("y", Ident("number")))))
	assert.False(t, Equal(point, Obj(Prop("y", Ident("number")), Prop("x", Ident("number")))), "property order matters")
	assert.False(t, Equal(Lit("null"), Null()), "literal vs identifier")
	assert.False(t, Equal(Columns(Ident("a"), nil, nil), Columns(Ident("a"), Ident("a"), nil)))
	assert.True(t, Equal(GenericOf("ColumnType", Ident("a")), GenericOf("ColumnType", Ident("a"))))
}

func TestReferences(t *testing.T) {
	n := Columns(
		NewUnion(Ident("JsonArray"), Ident("JsonObject"), Null()),
		ArrayOf(Ident("JsonArray")),
		RawExpr("Record<string, JsonValue>"),
	)

	assert.Equal(t,
		[]string{"JsonArray", "JsonObject", "null", "Record", "string", "JsonValue"},
		References(n))
}

func TestReferences_RawStringLiterals(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"double quoted", `"Point" | "Circle"`, nil},
		{"single quoted", `'Point' | Shape`, []string{"Shape"}},
		{"escaped quote", `"say \"Hi\" Now" | Greeting`, []string{"Greeting"}},
		{"template placeholder", "`${Foo}-x` | Bar", []string{"Foo", "Bar"}},
		{"unterminated", `Shape | "Point`, []string{"Shape"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := References(RawExpr(tt.raw))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWalk_SkipsChildren(t *testing.T) {
	var visited []string
	Walk(ArrayOf(Ident("inner")), func(n Node) bool {
		if _, ok := n.(Array); ok {
			visited = append(visited, "array")
			return false
		}
		visited = append(visited, "other")
		return true
	})
	assert.Equal(t, []string{"array"}, visited)
}

func TestDatabase_Tables(t *testing.T) {
	db := &Database{Schemas: []Schema{
		{Name: "public", Tables: []Table{{Name: "users"}, {Name: "posts"}}},
		{Name: "auth", Tables: []Table{{Name: "sessions"}}},
	}}

	tables := db.Tables()
	require.Len(t, tables, 3)
	assert.Equal(t, "sessions", tables[2].Name)
}

func TestEnumDeclaration_Values(t *testing.T) {
	e := EnumDeclaration{Name: "Status", Members: []EnumMember{{Name: "ACTIVE", Value: "active"}, {Name: "DONE", Value: "done"}}}
	assert.Equal(t, []string{"active", "done"}, e.Values())
}
