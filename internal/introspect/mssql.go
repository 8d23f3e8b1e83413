package introspect

import (
	"context"

	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/schema"
)

// MSSQLReader implements schema.Reader for SQL Server.
type MSSQLReader struct {
	db database.DB
}

// NewMSSQL creates a new SQL Server schema reader.
func NewMSSQL(db database.DB) *MSSQLReader {
	return &MSSQLReader{db: db}
}

const mssqlColumnsQuery = `
	SELECT
		c.TABLE_SCHEMA,
		c.TABLE_NAME,
		CAST(CASE WHEN t.TABLE_TYPE = 'VIEW' THEN 1 ELSE 0 END AS bit)          AS is_view,
		c.COLUMN_NAME,
		c.DATA_TYPE,
		CAST(CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS bit)          AS is_nullable,
		CAST(CASE WHEN c.COLUMN_DEFAULT IS NULL THEN 0 ELSE 1 END AS bit)        AS has_default,
		CAST(COALESCE(COLUMNPROPERTY(o.object_id, c.COLUMN_NAME, 'IsIdentity'), 0) AS bit)
		                                                                        AS is_identity,
		CAST(COALESCE(ep.value, '') AS nvarchar(4000))                          AS column_comment
	FROM INFORMATION_SCHEMA.COLUMNS c
	JOIN INFORMATION_SCHEMA.TABLES t
		ON t.TABLE_SCHEMA = c.TABLE_SCHEMA
		AND t.TABLE_NAME  = c.TABLE_NAME
	JOIN sys.objects o
		ON o.object_id = OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME))
	LEFT JOIN sys.extended_properties ep
		ON ep.class = 1
		AND ep.major_id = o.object_id
		AND ep.minor_id = COLUMNPROPERTY(o.object_id, c.COLUMN_NAME, 'ColumnId')
		AND ep.name = 'MS_Description'
	WHERE c.TABLE_SCHEMA NOT IN ('sys', 'INFORMATION_SCHEMA')
	ORDER BY c.TABLE_SCHEMA, c.TABLE_NAME, c.ORDINAL_POSITION`

// ReadTables returns every table and view outside the system schemas.
func (m *MSSQLReader) ReadTables(ctx context.Context, opts schema.Options) ([]schema.TableMetadata, error) {
	rows, err := m.db.Query(ctx, mssqlColumnsQuery)
	if err != nil {
		return nil, introspectionError("mssql", "columns", err)
	}
	defer rows.Close()

	var tables []schema.TableMetadata
	for rows.Next() {
		var (
			t schema.TableMetadata
			c schema.ColumnMetadata
		)
		if err := rows.Scan(
			&t.Schema,
			&t.Name,
			&t.IsView,
			&c.Name,
			&c.DataType,
			&c.IsNullable,
			&c.HasDefaultValue,
			&c.IsAutoIncrementing,
			&c.Comment,
		); err != nil {
			return nil, introspectionError("mssql", "column", err)
		}
		if !wantSchema(opts, t.Schema) {
			continue
		}
		tables = appendColumn(tables, t, c)
	}
	if err := rows.Err(); err != nil {
		return nil, introspectionError("mssql", "columns", err)
	}
	return tables, nil
}

var _ schema.Reader = (*MSSQLReader)(nil)
