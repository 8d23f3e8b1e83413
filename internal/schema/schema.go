// Package schema holds the dialect-neutral table and column metadata that
// introspection produces and the transformer consumes.
package schema

import "context"

// Options narrows what an introspector reads.
type Options struct {
	// Schemas limits introspection to these schemas. Empty means every
	// non-system schema.
	Schemas []string

	// Partitions includes partition children. They are reported with
	// IsPartition set either way; the transformer decides whether to emit them.
	Partitions bool

	// Domains resolves PostgreSQL domains to their base types.
	Domains bool
}

// Reader is the interface for introspecting a database schema.
type Reader interface {
	// ReadTables returns every table and view visible under opts, ordered by
	// schema then name, columns in ordinal order.
	ReadTables(ctx context.Context, opts Options) ([]TableMetadata, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ctx context.Context, opts Options) ([]TableMetadata, error)

// ReadTables calls f.
func (f ReaderFunc) ReadTables(ctx context.Context, opts Options) ([]TableMetadata, error) {
	return f(ctx, opts)
}
