// Package transformer turns introspected table metadata into the typed
// Database AST the serializer renders.
//
// Transform is a pure function of its inputs apart from logging: the same
// tables, adapter tables and options always produce the same Database.
package transformer

import (
	"slices"
	"strings"

	"github.com/rowan-gud/kysely-codegen/internal/adapter"
	"github.com/rowan-gud/kysely-codegen/internal/ast"
	"github.com/rowan-gud/kysely-codegen/internal/logger"
	"github.com/rowan-gud/kysely-codegen/internal/schema"
)

type transformer struct {
	adapter   adapter.Adapter
	opts      Options
	log       *logger.Logger
	names     *namer
	enums     *enumRegistry
	overrides map[string]ast.Node
	defaults  map[string]bool

	warnings []Warning
	unmapped map[string]bool
}

// Transform builds the Database AST for tables. Unmapped native types and
// dangling overrides are reported as warnings and never fail the run.
func Transform(tables []schema.TableMetadata, a adapter.Adapter, opts Options, log *logger.Logger) (*ast.Database, []Warning) {
	if log == nil {
		log = logger.Nop()
	}

	t := &transformer{
		adapter:   a,
		opts:      opts,
		log:       log,
		names:     newNamer(),
		overrides: make(map[string]ast.Node, len(opts.Overrides)),
		defaults:  map[string]bool{},
		unmapped:  map[string]bool{},
	}
	for _, s := range a.DefaultSchemas() {
		t.defaults[s] = true
	}
	for _, o := range opts.Overrides {
		t.overrides[o.Key] = o.Type
	}

	t.checkOverrides(tables)

	kept := make([]schema.TableMetadata, 0, len(tables))
	for _, table := range tables {
		if t.keep(table) {
			kept = append(kept, table)
		}
	}

	definitions := a.Definitions()
	reserved := make(map[string]bool, len(definitions)+len(kept))
	for name := range definitions {
		reserved[name] = true
	}
	typeNames := make([]string, len(kept))
	taken := make(map[string]bool, len(kept))
	for i, table := range kept {
		typeNames[i] = t.uniqueKey(taken, t.typeName(table), table, "")
		reserved[typeNames[i]] = true
	}
	reserved["DB"] = true
	t.enums = newEnumRegistry(opts.RuntimeEnumsStyle, t.names, reserved)

	db := &ast.Database{Definitions: definitions}
	schemaIndex := map[string]int{}
	tableKeys := map[string]bool{}
	for i, table := range kept {
		out := ast.Table{
			Schema:   table.Schema,
			Name:     table.Name,
			TypeName: typeNames[i],
			Key:      t.uniqueKey(tableKeys, t.tableKey(table), table, ""),
			IsView:   table.IsView,
			Columns:  make([]ast.Column, 0, len(table.Columns)),
		}
		columnKeys := make(map[string]bool, len(table.Columns))
		for _, col := range table.Columns {
			out.Columns = append(out.Columns, ast.Column{
				Name:    col.Name,
				Key:     t.uniqueKey(columnKeys, t.columnKey(col.Name), table, col.Name),
				Type:    t.columnType(table, col),
				Comment: col.Comment,
			})
		}

		idx, ok := schemaIndex[table.Schema]
		if !ok {
			idx = len(db.Schemas)
			schemaIndex[table.Schema] = idx
			db.Schemas = append(db.Schemas, ast.Schema{Name: table.Schema})
		}
		db.Schemas[idx].Tables = append(db.Schemas[idx].Tables, out)
	}
	db.Enums = t.enums.declarations()

	return db, t.warnings
}

func (t *transformer) keep(table schema.TableMetadata) bool {
	if table.IsPartition && !t.opts.Partitions {
		return false
	}
	// An empty schema is the connection's own database and always passes
	// the allowlist.
	if len(t.opts.Schemas) > 0 && table.Schema != "" && !slices.Contains(t.opts.Schemas, table.Schema) {
		return false
	}
	name := table.QualifiedName()
	if t.opts.Include != nil && !t.opts.Include.MatchString(name) {
		return false
	}
	if t.opts.Exclude != nil && t.opts.Exclude.MatchString(name) {
		return false
	}
	return true
}

func (t *transformer) isDefaultSchema(s string) bool {
	return s == "" || t.defaults[s]
}

// typeName is the emitted interface name: PascalCase of the (singular)
// table name, prefixed with the schema outside the default schemas.
func (t *transformer) typeName(table schema.TableMetadata) string {
	name := table.Name
	if t.opts.Singular {
		name = singularize(name)
	}
	if !t.isDefaultSchema(table.Schema) {
		name = table.Schema + "_" + name
	}
	return t.names.pascal(name)
}

func (t *transformer) tableKey(table schema.TableMetadata) string {
	name := t.columnKey(table.Name)
	if t.isDefaultSchema(table.Schema) {
		return name
	}
	return t.columnKey(table.Schema) + "." + name
}

// uniqueKey records key in used and returns it, suffixing it with a number
// when an earlier table or column already took it. column is empty for
// table keys and type names.
func (t *transformer) uniqueKey(used map[string]bool, key string, table schema.TableMetadata, column string) string {
	final := uniqueName(key, func(c string) bool { return used[c] })
	used[final] = true
	if final == key {
		return key
	}

	t.warnings = append(t.warnings, Warning{
		Kind:   WarnKeyCollision,
		Schema: table.Schema,
		Table:  table.Name,
		Column: column,
		Detail: "key " + key + " is already taken, emitted as " + final,
	})
	t.log.WarnWith("emitted key collides, adding a suffix",
		logger.F("table", table.QualifiedName()),
		logger.F("column", column),
		logger.F("key", key),
		logger.F("emitted", final),
	)
	return final
}

func (t *transformer) columnKey(name string) string {
	if t.opts.CamelCase {
		return t.names.camel(name)
	}
	return name
}

func (t *transformer) columnType(table schema.TableMetadata, col schema.ColumnMetadata) ast.ColumnType {
	if override, ok := t.lookupOverride(table, col); ok {
		if ct, isColumn := override.(ast.ColumnType); isColumn {
			return ct
		}
		return ast.Columns(override, nil, nil)
	}
	if col.IsArray {
		if override, ok := t.nativeOverride(col.DataType); ok {
			return arrayOverride(override)
		}
	}

	var base ast.Node
	if col.IsEnum() {
		base = t.enumType(table, col)
	} else {
		var ok bool
		base, ok = t.adapter.ScalarTypeOf(col.DataType)
		if !ok {
			t.reportUnmapped(table, col)
		}
	}
	if col.IsArray {
		base = ast.ArrayOf(base)
	}

	sel := base
	if col.IsNullable {
		sel = ast.NewUnion(base, ast.Null())
	}

	var insert ast.Node
	if col.HasDefaultValue || col.IsAutoIncrementing {
		insert = ast.NewUnion(sel, ast.Undefined())
	}
	return ast.Columns(sel, insert, nil)
}

// lookupOverride checks schema.table.column, then table.column, then the
// native type. An array column matches a native type key only in its array
// spelling (int8[] or _int8); columnType wraps element type overrides.
func (t *transformer) lookupOverride(table schema.TableMetadata, col schema.ColumnMetadata) (ast.Node, bool) {
	if len(t.overrides) == 0 {
		return nil, false
	}
	keys := []string{table.Name + "." + col.Name}
	if table.Schema != "" {
		keys = slices.Insert(keys, 0, table.Schema+"."+table.Name+"."+col.Name)
	}
	for _, k := range keys {
		if n, ok := t.overrides[k]; ok {
			return n, true
		}
	}
	if col.IsArray {
		if n, ok := t.nativeOverride(col.DataType + "[]"); ok {
			return n, true
		}
		return t.nativeOverride("_" + col.DataType)
	}
	return t.nativeOverride(col.DataType)
}

func (t *transformer) nativeOverride(nativeType string) (ast.Node, bool) {
	if n, ok := t.overrides[nativeType]; ok {
		return n, true
	}
	n, ok := t.overrides[strings.ToLower(nativeType)]
	return n, ok
}

// arrayOverride applies an element type override to an array column.
func arrayOverride(n ast.Node) ast.ColumnType {
	ct, ok := n.(ast.ColumnType)
	if !ok {
		return ast.Columns(ast.ArrayOf(n), nil, nil)
	}
	wrap := func(v ast.Node) ast.Node {
		if v == nil {
			return nil
		}
		return ast.ArrayOf(v)
	}
	return ast.Columns(wrap(ct.Select), wrap(ct.Insert), wrap(ct.Update))
}

func (t *transformer) enumType(table schema.TableMetadata, col schema.ColumnMetadata) ast.Node {
	if !t.opts.RuntimeEnums {
		members := make([]ast.Node, len(col.EnumValues))
		for i, v := range col.EnumValues {
			members[i] = ast.Lit(v)
		}
		return ast.NewUnion(members...)
	}

	base, owner := col.EnumName, col.EnumSchema
	if base == "" {
		base, owner = table.Name+"_"+col.Name, table.Schema
	}
	if !t.isDefaultSchema(owner) {
		base = owner + "_" + base
	}
	return ast.Ident(t.enums.register(t.names.pascal(base), col.EnumValues))
}

func (t *transformer) reportUnmapped(table schema.TableMetadata, col schema.ColumnMetadata) {
	t.warnings = append(t.warnings, Warning{
		Kind:   WarnUnmappedType,
		Schema: table.Schema,
		Table:  table.Name,
		Column: col.Name,
		Detail: "no mapping for native type " + col.DataType,
	})

	if t.unmapped[col.DataType] {
		return
	}
	t.unmapped[col.DataType] = true
	t.log.WarnWith("unmapped native type, using unknown",
		logger.F("dialect", t.adapter.Dialect().String()),
		logger.F("type", col.DataType),
		logger.F("table", table.QualifiedName()),
		logger.F("column", col.Name),
	)
}

// checkOverrides reports dotted override keys that name no existing table
// or column. It runs on the unfiltered metadata so that overrides for
// filtered-out tables are not reported.
func (t *transformer) checkOverrides(tables []schema.TableMetadata) {
	for _, o := range t.opts.Overrides {
		parts := strings.Split(o.Key, ".")
		var found bool
		switch len(parts) {
		case 2:
			found = slices.ContainsFunc(tables, func(tm schema.TableMetadata) bool {
				_, ok := tm.Column(parts[1])
				return tm.Name == parts[0] && ok
			})
		case 3:
			found = slices.ContainsFunc(tables, func(tm schema.TableMetadata) bool {
				_, ok := tm.Column(parts[2])
				return tm.Schema == parts[0] && tm.Name == parts[1] && ok
			})
		default:
			continue
		}
		if found {
			continue
		}

		w := Warning{Kind: WarnDanglingOverride, Detail: "override " + o.Key + " matches no column"}
		if len(parts) == 3 {
			w.Schema, w.Table, w.Column = parts[0], parts[1], parts[2]
		} else {
			w.Table, w.Column = parts[0], parts[1]
		}
		t.warnings = append(t.warnings, w)
		t.log.WarnWith("override matches no column, ignoring", logger.F("key", o.Key))
	}
}
