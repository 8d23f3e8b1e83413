// Package filestore defines where generated artifacts are read from and
// written to.
//
// Providers (local filesystem, MinIO) implement the Store interface.
// generator.OpenStore picks one from a Config; everything else sees only Store.
//
// Usage:
//
//	store := local.New(filestore.DefaultConfig())
//	defer store.Close()
//
//	info, err := store.Put(ctx, "src/db.d.ts", data)
package filestore

import "context"

// Store is the single interface all artifact storage providers implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// Get reads the whole artifact name. A missing artifact yields an
	// error for which errs.IsNotFound is true.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put replaces the artifact name with data, creating parent
	// directories as needed.
	Put(ctx context.Context, name string, data []byte) (*ObjectInfo, error)
}
