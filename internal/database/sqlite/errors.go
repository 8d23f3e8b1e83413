package sqlite

import (
	"errors"
	"fmt"

	gosqlite "modernc.org/sqlite" // registers "sqlite"

	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

// Primary SQLite result codes. Extended codes carry these in the low byte.
// Full list: https://www.sqlite.org/rescode.html
const (
	codePerm     = 3
	codeCantOpen = 14
	codeAuth     = 23
	codeNotADB   = 26
)

// MapError converts a modernc sqlite error into an *errs.Error.
func MapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if mapped, ok := database.MapCommon(err, msg); ok {
		return mapped
	}

	var sqlErr *gosqlite.Error
	if errors.As(err, &sqlErr) {
		return errs.Wrap(classify(sqlErr.Code()), fmt.Sprintf("%s: %s", msg, sqlErr.Error()), err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

func classify(code int) errs.ErrKind {
	switch code & 0xff {
	case codeCantOpen, codeNotADB:
		return errs.ErrKindConnectionFailed
	case codePerm, codeAuth:
		return errs.ErrKindPermissionDenied
	default:
		return errs.ErrKindQueryFailed
	}
}
