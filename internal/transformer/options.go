package transformer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rowan-gud/kysely-codegen/internal/ast"
)

// EnumStyle selects how runtime enum member names are derived from values.
type EnumStyle string

const (
	EnumStyleScreamingSnake EnumStyle = "screaming-snake-case"
	EnumStylePascal         EnumStyle = "pascal-case"
)

// EnumStyles lists the accepted runtime enum styles.
var EnumStyles = []EnumStyle{EnumStyleScreamingSnake, EnumStylePascal}

// Override forces the type of matching columns. Key is schema.table.column,
// table.column, or a native type name. Keys use source names, before any
// camelCase renaming.
type Override struct {
	Key  string
	Type ast.Node
}

// Options configures one transformation.
type Options struct {
	CamelCase bool
	Singular  bool

	// Schemas restricts output to these schemas. Empty keeps every schema.
	Schemas []string

	// Include and Exclude match schema.table. Exclude wins.
	Include *regexp.Regexp
	Exclude *regexp.Regexp

	Partitions bool

	RuntimeEnums      bool
	RuntimeEnumsStyle EnumStyle

	Overrides []Override
}

// WarningKind classifies a Warning.
type WarningKind string

const (
	// WarnUnmappedType: the adapter has no mapping for a column's native type.
	WarnUnmappedType WarningKind = "unmapped_type"
	// WarnDanglingOverride: an override names a table or column that does not exist.
	WarnDanglingOverride WarningKind = "dangling_override"
	// WarnKeyCollision: two tables or columns map to the same emitted key.
	WarnKeyCollision WarningKind = "key_collision"
)

// Warning is a non-fatal finding of a transformation.
type Warning struct {
	Kind   WarningKind
	Schema string
	Table  string
	Column string
	Detail string
}

func (w Warning) String() string {
	var loc []string
	for _, s := range []string{w.Schema, w.Table, w.Column} {
		if s != "" {
			loc = append(loc, s)
		}
	}
	if len(loc) == 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", w.Kind, strings.Join(loc, "."), w.Detail)
}
