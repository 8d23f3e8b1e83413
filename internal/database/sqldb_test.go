package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

func newMock(t *testing.T) (*SQLDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLDB(db, nil), mock
}

func TestSQLDB_Query(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectQuery("SELECT name FROM tables").
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("users").AddRow("posts"))

	rows, err := d.Query(context.Background(), "SELECT name FROM tables WHERE schema = ?", "public")
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, cols)

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"users", "posts"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDB_ErrorMapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"timeout", context.DeadlineExceeded, errs.IsTimeout},
		{"canceled", context.Canceled, errs.IsTimeout},
		{"connection", sql.ErrConnDone, errs.IsConnectionFailed},
		{"other", errors.New("syntax error"), errs.IsQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := newMock(t)
			mock.ExpectQuery("SELECT 1").WillReturnError(tt.err)

			_, err := d.Query(context.Background(), "SELECT 1")
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected kind for %v", err)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSQLDB_QueryRowNotFound(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectQuery("SELECT version").WillReturnRows(sqlmock.NewRows([]string{"version"}))

	row, err := d.QueryRow(context.Background(), "SELECT version()")
	require.NoError(t, err)

	var v string
	err = row.Scan(&v)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestSQLDB_Ping(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectPing()
	assert.NoError(t, d.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(context.DeadlineExceeded)
	err := d.Ping(context.Background())
	assert.True(t, errs.IsTimeout(err))
}

func TestMapError(t *testing.T) {
	assert.NoError(t, MapError(nil, "x"))

	wrapped := errs.New(errs.ErrKindPermissionDenied, "denied")
	assert.Same(t, wrapped, MapError(wrapped, "x"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(DriverMySQL, "mysql://localhost/app")
	assert.Equal(t, DriverMySQL, cfg.Driver)
	assert.Equal(t, "mysql://localhost/app", cfg.DSN)
	assert.Positive(t, cfg.MaxConns)
	assert.Positive(t, cfg.ConnectTimeout)
}
