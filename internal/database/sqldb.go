package database

import (
	"context"
	"database/sql"

	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

// SQLDB implements DB on top of database/sql. The MySQL, SQL Server and
// SQLite drivers share it; each supplies its own ErrorMapper.
type SQLDB struct {
	db     *sql.DB
	mapErr ErrorMapper
}

// NewSQLDB wraps an open *sql.DB. A nil mapErr uses MapError.
func NewSQLDB(db *sql.DB, mapErr ErrorMapper) *SQLDB {
	if mapErr == nil {
		mapErr = MapError
	}
	return &SQLDB{db: db, mapErr: mapErr}
}

// OpenSQL opens a database/sql pool for driverName, applies the pool
// settings from cfg and pings it before returning.
func OpenSQL(ctx context.Context, driverName, dsn string, cfg *Config, mapErr ErrorMapper) (*SQLDB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	d := NewSQLDB(db, mapErr)

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *SQLDB) Ping(ctx context.Context) error {
	return d.mapErr(d.db.PingContext(ctx), "ping failed")
}

func (d *SQLDB) Close() {
	_ = d.db.Close()
}

func (d *SQLDB) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, d.mapErr(err, "query failed")
	}
	return &sqlRows{rows: rows, mapErr: d.mapErr}, nil
}

func (d *SQLDB) QueryRow(ctx context.Context, query string, args ...any) (Row, error) {
	return &sqlRow{row: d.db.QueryRowContext(ctx, query, args...), mapErr: d.mapErr}, nil
}

// --- sql.DB type wrappers ---

type sqlRows struct {
	rows   *sql.Rows
	mapErr ErrorMapper
}

func (r *sqlRows) Next() bool                 { return r.rows.Next() }
func (r *sqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *sqlRows) Close()                     { _ = r.rows.Close() }

func (r *sqlRows) Scan(dest ...any) error {
	return r.mapErr(r.rows.Scan(dest...), "failed to scan row")
}

func (r *sqlRows) Err() error {
	return r.mapErr(r.rows.Err(), "error iterating rows")
}

type sqlRow struct {
	row    *sql.Row
	mapErr ErrorMapper
}

func (r *sqlRow) Scan(dest ...any) error {
	return r.mapErr(r.row.Scan(dest...), "failed to scan row")
}

var _ DB = (*SQLDB)(nil)
