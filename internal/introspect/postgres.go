package introspect

import (
	"context"

	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/schema"
)

// PostgresReader implements schema.Reader for PostgreSQL using pg_catalog.
type PostgresReader struct {
	db database.DB
}

// NewPostgres creates a new PostgreSQL schema reader.
func NewPostgres(db database.DB) *PostgresReader {
	return &PostgresReader{db: db}
}

// Columns of tables, partitioned tables, views and materialized views.
// $1 resolves domains to their base type, $2 keeps partition children.
// Array columns report their element type.
const pgColumnsQuery = `
	SELECT
		n.nspname                                        AS table_schema,
		c.relname                                        AS table_name,
		c.relkind IN ('v', 'm')                          AS is_view,
		c.relispartition                                 AS is_partition,
		COALESCE(obj_description(c.oid, 'pg_class'), '') AS table_comment,
		a.attname                                        AS column_name,
		NOT a.attnotnull                                 AS is_nullable,
		a.atthasdef OR a.attidentity <> ''               AS has_default,
		a.attidentity <> ''
			OR COALESCE(pg_get_expr(d.adbin, d.adrelid), '') LIKE 'nextval(%'
		                                                 AS is_auto_increment,
		COALESCE(col_description(c.oid, a.attnum), '')   AS column_comment,
		et.typname                                       AS type_name,
		etn.nspname                                      AS type_schema,
		et.typtype = 'e'                                 AS is_enum,
		t.typcategory = 'A'                              AS is_array
	FROM pg_catalog.pg_class c
	JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
	JOIN pg_catalog.pg_attribute a
		ON a.attrelid = c.oid
		AND a.attnum > 0
		AND NOT a.attisdropped
	JOIN pg_catalog.pg_type rt ON rt.oid = a.atttypid
	JOIN pg_catalog.pg_type t
		ON t.oid = CASE WHEN $1 AND rt.typtype = 'd' THEN rt.typbasetype ELSE rt.oid END
	JOIN pg_catalog.pg_type et
		ON et.oid = CASE WHEN t.typcategory = 'A' THEN t.typelem ELSE t.oid END
	JOIN pg_catalog.pg_namespace etn ON etn.oid = et.typnamespace
	LEFT JOIN pg_catalog.pg_attrdef d
		ON d.adrelid = c.oid
		AND d.adnum = a.attnum
	WHERE c.relkind IN ('r', 'p', 'v', 'm')
	  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
	  AND n.nspname NOT LIKE 'pg\_toast%'
	  AND ($2 OR NOT c.relispartition)
	ORDER BY n.nspname, c.relname, a.attnum`

const pgEnumsQuery = `
	SELECT n.nspname, t.typname, e.enumlabel
	FROM pg_catalog.pg_enum e
	JOIN pg_catalog.pg_type t ON t.oid = e.enumtypid
	JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
	ORDER BY n.nspname, t.typname, e.enumsortorder`

// ReadTables returns every table and view in the non-system schemas.
func (p *PostgresReader) ReadTables(ctx context.Context, opts schema.Options) ([]schema.TableMetadata, error) {
	enums, err := p.readEnums(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.Query(ctx, pgColumnsQuery, opts.Domains, opts.Partitions)
	if err != nil {
		return nil, introspectionError("postgres", "columns", err)
	}
	defer rows.Close()

	var tables []schema.TableMetadata
	for rows.Next() {
		var (
			t          schema.TableMetadata
			c          schema.ColumnMetadata
			typeSchema string
			isEnum     bool
		)
		if err := rows.Scan(
			&t.Schema,
			&t.Name,
			&t.IsView,
			&t.IsPartition,
			&t.Comment,
			&c.Name,
			&c.IsNullable,
			&c.HasDefaultValue,
			&c.IsAutoIncrementing,
			&c.Comment,
			&c.DataType,
			&typeSchema,
			&isEnum,
			&c.IsArray,
		); err != nil {
			return nil, introspectionError("postgres", "column", err)
		}
		if !wantSchema(opts, t.Schema) {
			continue
		}

		if isEnum {
			c.EnumName = c.DataType
			c.EnumSchema = typeSchema
			c.EnumValues = enums[typeSchema+"."+c.DataType]
		}
		tables = appendColumn(tables, t, c)
	}
	if err := rows.Err(); err != nil {
		return nil, introspectionError("postgres", "columns", err)
	}
	return tables, nil
}

// readEnums returns enum labels keyed by schema.type, in sort order.
func (p *PostgresReader) readEnums(ctx context.Context) (map[string][]string, error) {
	rows, err := p.db.Query(ctx, pgEnumsQuery)
	if err != nil {
		return nil, introspectionError("postgres", "enums", err)
	}
	defer rows.Close()

	enums := map[string][]string{}
	for rows.Next() {
		var nsp, name, label string
		if err := rows.Scan(&nsp, &name, &label); err != nil {
			return nil, introspectionError("postgres", "enum label", err)
		}
		key := nsp + "." + name
		enums[key] = append(enums[key], label)
	}
	if err := rows.Err(); err != nil {
		return nil, introspectionError("postgres", "enums", err)
	}
	return enums, nil
}

var _ schema.Reader = (*PostgresReader)(nil)
