package filestore

import "time"

// ObjectInfo describes a stored artifact.
type ObjectInfo struct {
	// Key is the resolved location: a file path or an object key.
	Key string

	// Size is the byte size of the artifact.
	Size int64

	// ETag is the backend's entity tag. Empty for local files.
	ETag string

	// LastModified is when the artifact was last written.
	LastModified time.Time
}
