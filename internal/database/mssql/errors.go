package mssql

import (
	"errors"
	"fmt"

	gomssql "github.com/microsoft/go-mssqldb"

	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

// SQL Server error numbers
// Full list: https://learn.microsoft.com/sql/relational-databases/errors-events/database-engine-events-and-errors
const (
	errInvalidObject    = 208
	errPermissionDenied = 229
	errCannotOpenDB     = 4060
	errLoginFailed      = 18456
)

// MapError converts a go-mssqldb error into an *errs.Error.
func MapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if mapped, ok := database.MapCommon(err, msg); ok {
		return mapped
	}

	var msErr gomssql.Error
	if errors.As(err, &msErr) {
		return errs.Wrap(classify(msErr.Number), fmt.Sprintf("%s: %s", msg, msErr.Message), err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

func classify(number int32) errs.ErrKind {
	switch number {
	case errLoginFailed, errPermissionDenied:
		return errs.ErrKindPermissionDenied
	case errCannotOpenDB:
		return errs.ErrKindConnectionFailed
	case errInvalidObject:
		return errs.ErrKindNotFound
	default:
		return errs.ErrKindQueryFailed
	}
}
