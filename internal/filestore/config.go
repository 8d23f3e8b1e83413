package filestore

// Provider identifies the artifact storage backend.
type Provider string

const (
	ProviderLocal Provider = "local"
	ProviderMinIO Provider = "minio"
)

// Providers lists every supported backend.
var Providers = []Provider{ProviderLocal, ProviderMinIO}

// Config holds all settings needed to reach an artifact storage backend.
type Config struct {
	// Provider is the storage backend (e.g. ProviderLocal).
	Provider Provider

	// Root prefixes every artifact name: a directory for the local
	// provider, a key prefix for MinIO. Absolute local names ignore it.
	Root string

	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string

	// Bucket holds the generated artifacts.
	Bucket string
}

// DefaultConfig writes artifacts to the local filesystem relative to the
// working directory.
func DefaultConfig() *Config {
	return &Config{Provider: ProviderLocal}
}
