package introspect

import (
	"context"
	"strings"

	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/schema"
)

// MySQLReader implements schema.Reader for MySQL using information_schema.
//
// Tables of the connection's own database are reported with an empty schema
// so they render without a schema prefix. When opts.Schemas names other
// databases, their tables are reported under the database name.
type MySQLReader struct {
	db database.DB
}

// NewMySQL creates a new MySQL schema reader.
func NewMySQL(db database.DB) *MySQLReader {
	return &MySQLReader{db: db}
}

const mysqlColumnsQuery = `
	SELECT
		c.TABLE_SCHEMA,
		c.TABLE_NAME,
		c.TABLE_SCHEMA = DATABASE()                 AS is_current,
		t.TABLE_TYPE = 'VIEW'                       AS is_view,
		COALESCE(t.TABLE_COMMENT, '')               AS table_comment,
		c.COLUMN_NAME,
		c.DATA_TYPE,
		c.COLUMN_TYPE,
		c.IS_NULLABLE = 'YES'                       AS is_nullable,
		c.COLUMN_DEFAULT IS NOT NULL                AS has_default,
		c.EXTRA LIKE '%auto_increment%'             AS is_auto_increment,
		COALESCE(c.COLUMN_COMMENT, '')              AS column_comment
	FROM information_schema.COLUMNS c
	JOIN information_schema.TABLES t
		ON t.TABLE_SCHEMA = c.TABLE_SCHEMA
		AND t.TABLE_NAME  = c.TABLE_NAME
	WHERE c.TABLE_SCHEMA NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')
	ORDER BY c.TABLE_SCHEMA, c.TABLE_NAME, c.ORDINAL_POSITION`

// ReadTables returns every table and view of the current database, or of
// the databases named in opts.Schemas.
func (m *MySQLReader) ReadTables(ctx context.Context, opts schema.Options) ([]schema.TableMetadata, error) {
	rows, err := m.db.Query(ctx, mysqlColumnsQuery)
	if err != nil {
		return nil, introspectionError("mysql", "columns", err)
	}
	defer rows.Close()

	var tables []schema.TableMetadata
	for rows.Next() {
		var (
			t          schema.TableMetadata
			c          schema.ColumnMetadata
			isCurrent  bool
			columnType string
		)
		if err := rows.Scan(
			&t.Schema,
			&t.Name,
			&isCurrent,
			&t.IsView,
			&t.Comment,
			&c.Name,
			&c.DataType,
			&columnType,
			&c.IsNullable,
			&c.HasDefaultValue,
			&c.IsAutoIncrementing,
			&c.Comment,
		); err != nil {
			return nil, introspectionError("mysql", "column", err)
		}

		switch {
		case len(opts.Schemas) == 0 && !isCurrent:
			continue
		case len(opts.Schemas) == 0:
			t.Schema = ""
		case !wantSchema(opts, t.Schema):
			continue
		}

		if strings.EqualFold(c.DataType, "enum") {
			c.EnumValues = parseEnumValues(columnType)
		}
		tables = appendColumn(tables, t, c)
	}
	if err := rows.Err(); err != nil {
		return nil, introspectionError("mysql", "columns", err)
	}
	return tables, nil
}

// parseEnumValues extracts the members of a COLUMN_TYPE such as
// enum('a','it''s'). Quotes inside a member are doubled.
func parseEnumValues(columnType string) []string {
	open := strings.IndexByte(columnType, '(')
	end := strings.LastIndexByte(columnType, ')')
	if open < 0 || end <= open {
		return nil
	}
	body := columnType[open+1 : end]

	var (
		values []string
		cur    strings.Builder
		inStr  bool
	)
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case !inStr && ch == '\'':
			inStr = true
			cur.Reset()
		case inStr && ch == '\'' && i+1 < len(body) && body[i+1] == '\'':
			cur.WriteByte('\'')
			i++
		case inStr && ch == '\\' && i+1 < len(body):
			cur.WriteByte(body[i+1])
			i++
		case inStr && ch == '\'':
			inStr = false
			values = append(values, cur.String())
		case inStr:
			cur.WriteByte(ch)
		}
	}
	return values
}

var _ schema.Reader = (*MySQLReader)(nil)
