package transformer

import (
	"slices"

	"github.com/rowan-gud/kysely-codegen/internal/ast"
)

// enumRegistry collects runtime enum declarations in registration order.
type enumRegistry struct {
	style    EnumStyle
	names    *namer
	reserved map[string]bool
	byName   map[string]int
	decls    []ast.EnumDeclaration
}

func newEnumRegistry(style EnumStyle, names *namer, reserved map[string]bool) *enumRegistry {
	if style == "" {
		style = EnumStyleScreamingSnake
	}
	return &enumRegistry{
		style:    style,
		names:    names,
		reserved: reserved,
		byName:   map[string]int{},
	}
}

// register declares an enum named name with values and returns the name to
// reference it by. Registering the same name and values again is a no-op.
// A different value set under a taken name gets a numeric suffix.
func (r *enumRegistry) register(name string, values []string) string {
	final := uniqueName(name, func(candidate string) bool {
		if i, ok := r.byName[candidate]; ok {
			return !slices.Equal(r.decls[i].Values(), values)
		}
		return r.reserved[candidate]
	})
	if _, ok := r.byName[final]; ok {
		return final
	}

	r.byName[final] = len(r.decls)
	r.decls = append(r.decls, ast.EnumDeclaration{Name: final, Members: r.members(values)})
	return final
}

func (r *enumRegistry) members(values []string) []ast.EnumMember {
	members := make([]ast.EnumMember, 0, len(values))
	used := map[string]bool{}
	for _, v := range values {
		var name string
		if r.style == EnumStylePascal {
			name = r.names.pascal(v)
		} else {
			name = r.names.screamingSnake(v)
		}
		name = uniqueName(name, func(c string) bool { return used[c] })
		used[name] = true
		members = append(members, ast.EnumMember{Name: name, Value: v})
	}
	return members
}

func (r *enumRegistry) declarations() []ast.EnumDeclaration {
	return slices.Clone(r.decls)
}
