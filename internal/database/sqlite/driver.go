package sqlite

import (
	"context"
	"strings"

	"github.com/rowan-gud/kysely-codegen/internal/database"
)

// New opens a SQLite database using the pure-Go modernc driver.
func New(ctx context.Context, cfg *database.Config) (*database.SQLDB, error) {
	return database.OpenSQL(ctx, "sqlite", DSNFromURL(cfg.DSN), cfg, MapError)
}

// DSNFromURL strips the sqlite:// or sqlite: scheme from raw, leaving a file
// path or file: URI for the driver.
func DSNFromURL(raw string) string {
	for _, prefix := range []string{"sqlite://", "sqlite:"} {
		if strings.HasPrefix(raw, prefix) {
			return strings.TrimPrefix(raw, prefix)
		}
	}
	return raw
}
