package introspect

import (
	"context"
	"strings"

	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/schema"
)

// SQLiteReader implements schema.Reader for SQLite. Every table lives in
// the main schema.
type SQLiteReader struct {
	db database.DB
}

// NewSQLite creates a new SQLite schema reader.
func NewSQLite(db database.DB) *SQLiteReader {
	return &SQLiteReader{db: db}
}

const sqliteMainSchema = "main"

const sqliteColumnsQuery = `
	SELECT
		m.name,
		m.type = 'view'          AS is_view,
		p.name,
		p.type,
		p."notnull",
		p.dflt_value IS NOT NULL AS has_default,
		p.pk
	FROM sqlite_master m
	JOIN pragma_table_info(m.name) p
	WHERE m.type IN ('table', 'view')
	  AND m.name NOT LIKE 'sqlite\_%' ESCAPE '\'
	ORDER BY m.name, p.cid`

// ReadTables returns every table and view in the main schema.
func (s *SQLiteReader) ReadTables(ctx context.Context, opts schema.Options) ([]schema.TableMetadata, error) {
	if !wantSchema(opts, sqliteMainSchema) {
		return nil, nil
	}

	rows, err := s.db.Query(ctx, sqliteColumnsQuery)
	if err != nil {
		return nil, introspectionError("sqlite", "columns", err)
	}
	defer rows.Close()

	var (
		tables []schema.TableMetadata
		pks    [][]int // primary key position per column, parallel to tables
	)
	for rows.Next() {
		var (
			t       schema.TableMetadata
			c       schema.ColumnMetadata
			notNull int
			pk      int
		)
		if err := rows.Scan(&t.Name, &t.IsView, &c.Name, &c.DataType, &notNull, &c.HasDefaultValue, &pk); err != nil {
			return nil, introspectionError("sqlite", "column", err)
		}
		t.Schema = sqliteMainSchema
		c.IsNullable = notNull == 0

		n := len(tables)
		tables = appendColumn(tables, t, c)
		if len(tables) > n {
			pks = append(pks, nil)
		}
		pks[len(pks)-1] = append(pks[len(pks)-1], pk)
	}
	if err := rows.Err(); err != nil {
		return nil, introspectionError("sqlite", "columns", err)
	}

	for i := range tables {
		markRowidAlias(tables[i].Columns, pks[i])
	}
	return tables, nil
}

// markRowidAlias flags a lone INTEGER PRIMARY KEY column, which aliases the
// rowid: it is auto-assigned on insert and never null.
func markRowidAlias(cols []schema.ColumnMetadata, pks []int) {
	alias := -1
	for i, pk := range pks {
		if pk == 0 {
			continue
		}
		if alias >= 0 {
			return
		}
		alias = i
	}
	if alias < 0 || !strings.EqualFold(cols[alias].DataType, "integer") {
		return
	}
	cols[alias].IsAutoIncrementing = true
	cols[alias].IsNullable = false
}

var _ schema.Reader = (*SQLiteReader)(nil)
