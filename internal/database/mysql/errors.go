package mysql

import (
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

// MySQL error numbers
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errDBAccessDenied  = 1044
	errAccessDenied    = 1045
	errTableAccess     = 1142
	errTooManyConns    = 1040
	errUserConnLimit   = 1203
	errUnknownDatabase = 1049
	errNoSuchTable     = 1146
	errConnRefused     = 2003
)

// MapError converts a MySQL driver error into an *errs.Error.
func MapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if mapped, ok := database.MapCommon(err, msg); ok {
		return mapped
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(classify(mysqlErr.Number), fmt.Sprintf("%s: %s", msg, mysqlErr.Message), err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

func classify(number uint16) errs.ErrKind {
	switch number {
	case errDBAccessDenied, errAccessDenied, errTableAccess:
		return errs.ErrKindPermissionDenied
	case errTooManyConns, errUserConnLimit, errUnknownDatabase, errConnRefused:
		return errs.ErrKindConnectionFailed
	case errNoSuchTable:
		return errs.ErrKindNotFound
	default:
		return errs.ErrKindQueryFailed
	}
}
