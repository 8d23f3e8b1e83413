package ast

// Database is the output of the transformer: everything the serializer
// needs to render one artifact.
type Database struct {
	// Definitions is the dialect's table of named, possibly recursive, type
	// definitions. Only the ones reachable from tables are rendered.
	Definitions map[string]Node

	// Enums holds runtime enum declarations in registration order.
	Enums []EnumDeclaration

	Schemas []Schema
}

// Schema groups the tables of one database schema, in introspection order.
type Schema struct {
	Name   string
	Tables []Table
}

// Table is one emitted table or view.
type Table struct {
	Schema string // source schema name
	Name   string // source table name

	// TypeName is the emitted interface name, e.g. "User".
	TypeName string

	// Key is the property name of the table in the DB interface,
	// e.g. "users" or "auth.users".
	Key string

	IsView  bool
	Columns []Column
}

// Column is one emitted column.
type Column struct {
	Name    string // source column name
	Key     string // emitted property name
	Type    ColumnType
	Comment string
}

// EnumDeclaration is a runtime enum: a value-level constant object plus a
// type alias over its values.
type EnumDeclaration struct {
	Name    string
	Members []EnumMember
}

// EnumMember is one key/value pair of a runtime enum.
type EnumMember struct {
	Name  string
	Value string
}

// Values returns the member values in declaration order.
func (e EnumDeclaration) Values() []string {
	values := make([]string, len(e.Members))
	for i, m := range e.Members {
		values[i] = m.Value
	}
	return values
}

// Tables returns every table of every schema in emission order.
func (d *Database) Tables() []Table {
	var tables []Table
	for _, s := range d.Schemas {
		tables = append(tables, s.Tables...)
	}
	return tables
}
