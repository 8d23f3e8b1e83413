// Package introspect reads table and column metadata from a live database
// into the dialect-neutral schema model.
package introspect

import (
	"context"
	"slices"

	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/database/mssql"
	"github.com/rowan-gud/kysely-codegen/internal/database/mysql"
	"github.com/rowan-gud/kysely-codegen/internal/database/postgres"
	"github.com/rowan-gud/kysely-codegen/internal/database/sqlite"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
	"github.com/rowan-gud/kysely-codegen/internal/schema"
)

// Connect opens a connection pool for cfg.Driver.
func Connect(ctx context.Context, cfg *database.Config) (database.DB, error) {
	switch cfg.Driver {
	case database.DriverPostgres:
		db, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	case database.DriverMySQL:
		db, err := mysql.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	case database.DriverMSSQL:
		db, err := mssql.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	case database.DriverSQLite:
		db, err := sqlite.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, errs.Newf(errs.ErrKindConfig, "unsupported driver %q", cfg.Driver)
}

// New returns the Reader for driver d reading through db.
func New(d database.Driver, db database.DB) (schema.Reader, error) {
	switch d {
	case database.DriverPostgres:
		return NewPostgres(db), nil
	case database.DriverMySQL:
		return NewMySQL(db), nil
	case database.DriverMSSQL:
		return NewMSSQL(db), nil
	case database.DriverSQLite:
		return NewSQLite(db), nil
	}
	return nil, errs.Newf(errs.ErrKindConfig, "unsupported driver %q", d)
}

// appendColumn adds c to the last table when it is t, or starts a new table.
// Rows must arrive grouped by table.
func appendColumn(tables []schema.TableMetadata, t schema.TableMetadata, c schema.ColumnMetadata) []schema.TableMetadata {
	if n := len(tables); n > 0 && tables[n-1].Schema == t.Schema && tables[n-1].Name == t.Name {
		tables[n-1].Columns = append(tables[n-1].Columns, c)
		return tables
	}
	t.Columns = []schema.ColumnMetadata{c}
	return append(tables, t)
}

func wantSchema(opts schema.Options, name string) bool {
	return len(opts.Schemas) == 0 || slices.Contains(opts.Schemas, name)
}

func introspectionError(dialect, what string, err error) error {
	return errs.Wrap(errs.ErrKindIntrospection, "failed to read "+dialect+" "+what, err)
}
