package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

// ErrorMapper translates a driver error into an *errs.Error. msg describes
// the operation that failed. A nil err maps to nil.
type ErrorMapper func(err error, msg string) error

// MapCommon classifies the errors whose kind does not depend on the driver:
// cancellation, missing rows and broken connections. ok is false when the
// caller has to classify err itself.
func MapCommon(err error, msg string) (mapped *errs.Error, ok bool) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return errs.Wrap(errs.ErrKindTimeout, msg, err), true
	case errors.Is(err, sql.ErrNoRows):
		return errs.Wrap(errs.ErrKindNotFound, msg, err), true
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err), true
	}
	return nil, false
}

// MapError is the ErrorMapper for drivers without specific error codes.
// Anything MapCommon does not recognise is a query failure.
func MapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if mapped, ok := MapCommon(err, msg); ok {
		return mapped
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
