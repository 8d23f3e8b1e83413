// Package adapter maps each dialect's native column types onto the shared
// type-expression model.
//
// An Adapter is built per run by New and owns that run's date, timestamp
// and numeric representation policies. Do not share one Adapter between runs
// that use different policies.
package adapter

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rowan-gud/kysely-codegen/internal/ast"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

// Dialect identifies the database engine.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectMSSQL    Dialect = "mssql"
	DialectSQLite   Dialect = "sqlite"
)

// Dialects lists every supported dialect.
var Dialects = []Dialect{DialectPostgres, DialectMySQL, DialectMSSQL, DialectSQLite}

// ParseDialect validates a dialect name.
func ParseDialect(name string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(name)))
	if slices.Contains(Dialects, d) {
		return d, nil
	}
	return "", errs.Newf(errs.ErrKindConfig,
		"unknown dialect %q (valid dialects: postgres, mysql, mssql, sqlite)", name)
}

// Adapter is the per-dialect capability used by the transformer.
type Adapter interface {
	// Dialect returns the dialect tag this adapter was built for.
	Dialect() Dialect

	// DefaultSchemas lists the schemas whose tables are emitted without a
	// schema prefix.
	DefaultSchemas() []string

	// Scalars returns the native type name to type expression table, with
	// the run's policies already applied.
	Scalars() map[string]ast.Node

	// Definitions returns the named type definitions the scalar types refer to.
	Definitions() map[string]ast.Node

	// ScalarTypeOf resolves a native type name. Unknown names resolve to the
	// unknown identifier and ok=false; it never fails.
	ScalarTypeOf(nativeType string) (t ast.Node, ok bool)
}

// New builds the adapter for dialect d with the given policies.
func New(d Dialect, p Policies) (Adapter, error) {
	keys, err := policyKeysFor(d)
	if err != nil {
		return nil, err
	}
	if err := p.validate(d, keys); err != nil {
		return nil, err
	}

	switch d {
	case DialectPostgres:
		return newPostgres(p), nil
	case DialectMySQL:
		return newMySQL(p), nil
	case DialectMSSQL:
		return newMSSQL(p), nil
	case DialectSQLite:
		return newSQLite(), nil
	default:
		return nil, errs.Newf(errs.ErrKindConfig, "unknown dialect %q", d)
	}
}

// base holds the tables shared by every dialect implementation.
type base struct {
	dialect        Dialect
	defaultSchemas []string
	scalars        map[string]ast.Node
	definitions    map[string]ast.Node
}

func (b *base) Dialect() Dialect { return b.dialect }

func (b *base) DefaultSchemas() []string { return slices.Clone(b.defaultSchemas) }

func (b *base) Scalars() map[string]ast.Node { return maps.Clone(b.scalars) }

func (b *base) Definitions() map[string]ast.Node { return maps.Clone(b.definitions) }

func (b *base) ScalarTypeOf(nativeType string) (ast.Node, bool) {
	if t, ok := b.scalars[strings.ToLower(nativeType)]; ok {
		return t, true
	}
	return ast.Unknown(), false
}

// applyPolicies rewrites the scalar entries governed by a policy.
func (b *base) applyPolicies(p Policies, keys policyKeys, date, timestamp func(Policy) ast.Node, numeric func(Policy) ast.Node) {
	for _, k := range keys.date {
		b.scalars[k] = date(p.Date.Resolve(k, PolicyTimestamp))
	}
	for _, k := range keys.timestamp {
		b.scalars[k] = timestamp(p.Timestamp.Resolve(k, PolicyTimestamp))
	}
	for _, k := range keys.numeric {
		b.scalars[k] = numeric(p.Numeric.Resolve(k, PolicyNumber))
	}
}

// Ensure interface implementation
var (
	_ Adapter = (*Postgres)(nil)
	_ Adapter = (*MySQL)(nil)
	_ Adapter = (*MSSQL)(nil)
	_ Adapter = (*SQLite)(nil)
)

func (d Dialect) String() string { return string(d) }

// GoString keeps %#v output short in test failures.
func (d Dialect) GoString() string { return fmt.Sprintf("adapter.Dialect(%q)", string(d)) }
