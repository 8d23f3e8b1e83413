package schema

// ColumnMetadata describes one column as reported by introspection.
type ColumnMetadata struct {
	Name string

	// DataType is the dialect's native type name: int4, varchar, enum, a
	// user-defined enum's type name, a domain's base type, ...
	DataType string

	IsNullable         bool
	HasDefaultValue    bool
	IsAutoIncrementing bool

	// IsArray marks a column holding an array of DataType.
	IsArray bool

	// EnumValues is set when the column is an enum. Order is preserved.
	EnumValues []string
	// EnumName and EnumSchema name the enum type when the dialect has named
	// enum types (PostgreSQL). Both are empty for inline enums (MySQL).
	EnumName   string
	EnumSchema string

	Comment string
}

// IsEnum reports whether the column carries an enum value set.
func (c ColumnMetadata) IsEnum() bool { return len(c.EnumValues) > 0 }

// TableMetadata describes one table or view.
type TableMetadata struct {
	Schema  string
	Name    string
	Columns []ColumnMetadata

	IsView bool
	// IsPartition marks a partition child of a partitioned parent table.
	IsPartition bool

	Comment string
}

// QualifiedName returns schema.name, or name when the schema is empty.
func (t TableMetadata) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Column returns the column named name.
func (t TableMetadata) Column(name string) (ColumnMetadata, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnMetadata{}, false
}
