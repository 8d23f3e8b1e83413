package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

// PostgreSQL SQLSTATE classes and codes relevant to catalog reads.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgClassConnection       = "08"
	pgClassInvalidAuth      = "28"
	pgErrInsufficientPrivil = "42501"
	pgErrUndefinedTable     = "42P01"
	pgErrUndefinedColumn    = "42703"
)

// MapError translates pgx / pgconn native errors into *errs.Error.
func MapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}
	if mapped, ok := database.MapCommon(err, msg); ok {
		return mapped
	}

	// Postgres server-side error (SQLSTATE codes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(classify(pgErr.Code), fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// Fallthrough: connection-level errors (TLS, network, auth)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func classify(code string) errs.ErrKind {
	switch {
	case strings.HasPrefix(code, pgClassConnection):
		return errs.ErrKindConnectionFailed
	case strings.HasPrefix(code, pgClassInvalidAuth), code == pgErrInsufficientPrivil:
		return errs.ErrKindPermissionDenied
	case code == pgErrUndefinedTable, code == pgErrUndefinedColumn:
		return errs.ErrKindNotFound
	default:
		return errs.ErrKindQueryFailed
	}
}
