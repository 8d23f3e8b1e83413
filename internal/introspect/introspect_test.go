package introspect

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/database/sqlite"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
	"github.com/rowan-gud/kysely-codegen/internal/schema"
)

func newMock(t *testing.T) (*database.SQLDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return database.NewSQLDB(db, nil), mock
}

var pgColumns = []string{
	"table_schema", "table_name", "is_view", "is_partition", "table_comment",
	"column_name", "is_nullable", "has_default", "is_auto_increment", "column_comment",
	"type_name", "type_schema", "is_enum", "is_array",
}

func TestPostgresReader_ReadTables(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM pg_catalog\.pg_enum`).
		WillReturnRows(sqlmock.NewRows([]string{"nspname", "typname", "enumlabel"}).
			AddRow("public", "status", "active").
			AddRow("public", "status", "banned"))
	mock.ExpectQuery(`FROM pg_catalog\.pg_class`).
		WithArgs(true, false).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow("audit", "log", false, false, "", "id", false, true, true, "", "int8", "pg_catalog", false, false).
			AddRow("public", "users", false, false, "Registered users", "id", false, true, true, "", "int4", "pg_catalog", false, false).
			AddRow("public", "users", false, false, "Registered users", "status", true, false, false, "Account state", "status", "public", true, false).
			AddRow("public", "users", false, false, "Registered users", "tags", false, false, false, "", "text", "pg_catalog", false, true).
			AddRow("public", "user_emails", true, false, "", "email", true, false, false, "", "varchar", "pg_catalog", false, false))

	tables, err := NewPostgres(db).ReadTables(context.Background(), schema.Options{
		Schemas: []string{"public"},
		Domains: true,
	})
	require.NoError(t, err)
	require.Len(t, tables, 2)

	users := tables[0]
	assert.Equal(t, "public.users", users.QualifiedName())
	assert.Equal(t, "Registered users", users.Comment)
	require.Len(t, users.Columns, 3)

	assert.Equal(t, schema.ColumnMetadata{
		Name:               "id",
		DataType:           "int4",
		HasDefaultValue:    true,
		IsAutoIncrementing: true,
	}, users.Columns[0])

	status := users.Columns[1]
	assert.True(t, status.IsEnum())
	assert.Equal(t, []string{"active", "banned"}, status.EnumValues)
	assert.Equal(t, "status", status.EnumName)
	assert.Equal(t, "public", status.EnumSchema)
	assert.True(t, status.IsNullable)
	assert.Equal(t, "Account state", status.Comment)

	assert.True(t, users.Columns[2].IsArray)
	assert.Equal(t, "text", users.Columns[2].DataType)

	assert.True(t, tables[1].IsView)
	assert.Equal(t, "user_emails", tables[1].Name)
}

func TestPostgresReader_PassesPartitionFlag(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`pg_enum`).WillReturnRows(sqlmock.NewRows([]string{"nspname", "typname", "enumlabel"}))
	mock.ExpectQuery(`pg_class`).
		WithArgs(false, true).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow("public", "events_2024", false, true, "", "id", false, false, false, "", "int4", "pg_catalog", false, false))

	tables, err := NewPostgres(db).ReadTables(context.Background(), schema.Options{Partitions: true})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.True(t, tables[0].IsPartition)
}

func TestPostgresReader_WrapsFailures(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`pg_enum`).WillReturnError(errors.New("relation does not exist"))

	_, err := NewPostgres(db).ReadTables(context.Background(), schema.Options{})
	require.Error(t, err)
	assert.True(t, errs.IsIntrospection(err))
	assert.Equal(t, errs.ErrKindIntrospection, errs.KindOf(err))
	assert.Contains(t, err.Error(), "failed to read postgres enums")
}

var mysqlColumns = []string{
	"TABLE_SCHEMA", "TABLE_NAME", "is_current", "is_view", "table_comment",
	"COLUMN_NAME", "DATA_TYPE", "COLUMN_TYPE", "is_nullable", "has_default",
	"is_auto_increment", "column_comment",
}

func mysqlRows() *sqlmock.Rows {
	return sqlmock.NewRows(mysqlColumns).
		AddRow("analytics", "events", false, false, "", "id", "bigint", "bigint", false, false, true, "").
		AddRow("app", "users", true, false, "", "id", "int", "int unsigned", false, false, true, "").
		AddRow("app", "users", true, false, "", "role", "enum", "enum('admin','it''s me','a,b')", false, true, false, "User role").
		AddRow("app", "users", true, false, "", "bio", "text", "text", true, false, false, "")
}

func TestMySQLReader_CurrentDatabase(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM information_schema\.COLUMNS`).WillReturnRows(mysqlRows())

	tables, err := NewMySQL(db).ReadTables(context.Background(), schema.Options{})
	require.NoError(t, err)
	require.Len(t, tables, 1)

	users := tables[0]
	assert.Equal(t, "", users.Schema)
	assert.Equal(t, "users", users.QualifiedName())
	require.Len(t, users.Columns, 3)

	assert.True(t, users.Columns[0].IsAutoIncrementing)
	assert.Equal(t, "int", users.Columns[0].DataType)

	role := users.Columns[1]
	assert.Equal(t, []string{"admin", "it's me", "a,b"}, role.EnumValues)
	assert.True(t, role.HasDefaultValue)
	assert.Equal(t, "User role", role.Comment)
	assert.Empty(t, role.EnumName)

	assert.True(t, users.Columns[2].IsNullable)
}

func TestMySQLReader_NamedSchemas(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`information_schema`).WillReturnRows(mysqlRows())

	tables, err := NewMySQL(db).ReadTables(context.Background(), schema.Options{Schemas: []string{"analytics", "app"}})
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "analytics.events", tables[0].QualifiedName())
	assert.Equal(t, "app.users", tables[1].QualifiedName())
}

func TestParseEnumValues(t *testing.T) {
	tests := []struct {
		in       string
		expected []string
	}{
		{"enum('a','b')", []string{"a", "b"}},
		{"enum('')", []string{""}},
		{"enum('it''s')", []string{"it's"}},
		{`enum('back\\slash')`, []string{`back\slash`}},
		{"enum('x)','y')", []string{"x)", "y"}},
		{"varchar(255)", nil},
		{"text", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseEnumValues(tt.in))
		})
	}
}

func TestMSSQLReader_ReadTables(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM INFORMATION_SCHEMA\.COLUMNS`).
		WillReturnRows(sqlmock.NewRows([]string{
			"TABLE_SCHEMA", "TABLE_NAME", "is_view", "COLUMN_NAME", "DATA_TYPE",
			"is_nullable", "has_default", "is_identity", "column_comment",
		}).
			AddRow("dbo", "orders", false, "id", "int", false, false, true, "").
			AddRow("dbo", "orders", false, "note", "nvarchar", true, false, false, "Free text").
			AddRow("sales", "summary", true, "total", "money", true, false, false, ""))

	tables, err := NewMSSQL(db).ReadTables(context.Background(), schema.Options{})
	require.NoError(t, err)
	require.Len(t, tables, 2)

	orders := tables[0]
	assert.Equal(t, "dbo.orders", orders.QualifiedName())
	assert.True(t, orders.Columns[0].IsAutoIncrementing)
	assert.Equal(t, "Free text", orders.Columns[1].Comment)
	assert.True(t, tables[1].IsView)
}

func TestSQLiteReader_ReadTables(t *testing.T) {
	ctx := context.Background()
	raw, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer raw.Close()

	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL, name VARCHAR(255), created_at TEXT DEFAULT CURRENT_TIMESTAMP)`,
		`CREATE TABLE memberships (user_id INTEGER NOT NULL, group_id INTEGER NOT NULL, PRIMARY KEY (user_id, group_id))`,
		`CREATE VIEW user_emails AS SELECT email FROM users`,
	} {
		_, err := raw.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	db := database.NewSQLDB(raw, sqlite.MapError)

	tables, err := NewSQLite(db).ReadTables(ctx, schema.Options{})
	require.NoError(t, err)
	require.Len(t, tables, 3)

	assert.Equal(t, "main.memberships", tables[0].QualifiedName())
	assert.False(t, tables[0].Columns[0].IsAutoIncrementing)

	assert.Equal(t, "user_emails", tables[1].Name)
	assert.True(t, tables[1].IsView)

	users := tables[2]
	assert.Equal(t, []string{"id", "email", "name", "created_at"}, columnNames(users))
	assert.True(t, users.Columns[0].IsAutoIncrementing)
	assert.False(t, users.Columns[0].IsNullable)
	assert.False(t, users.Columns[1].IsNullable)
	assert.Equal(t, "VARCHAR(255)", users.Columns[2].DataType)
	assert.True(t, users.Columns[2].IsNullable)
	assert.True(t, users.Columns[3].HasDefaultValue)

	none, err := NewSQLite(db).ReadTables(ctx, schema.Options{Schemas: []string{"public"}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNew(t *testing.T) {
	db, _ := newMock(t)
	for _, d := range []database.Driver{database.DriverPostgres, database.DriverMySQL, database.DriverMSSQL, database.DriverSQLite} {
		r, err := New(d, db)
		require.NoError(t, err)
		assert.NotNil(t, r)
	}

	_, err := New("oracle", db)
	assert.True(t, errs.IsConfig(err))
}

func columnNames(t schema.TableMetadata) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
