// Package generator runs the pipeline end to end: introspect, transform,
// serialize, then print, verify or store the artifact.
package generator

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rowan-gud/kysely-codegen/internal/adapter"
	"github.com/rowan-gud/kysely-codegen/internal/config"
	"github.com/rowan-gud/kysely-codegen/internal/database"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
	"github.com/rowan-gud/kysely-codegen/internal/filestore"
	"github.com/rowan-gud/kysely-codegen/internal/introspect"
	"github.com/rowan-gud/kysely-codegen/internal/logger"
	"github.com/rowan-gud/kysely-codegen/internal/schema"
	"github.com/rowan-gud/kysely-codegen/internal/serializer"
	"github.com/rowan-gud/kysely-codegen/internal/transformer"
	"github.com/rowan-gud/kysely-codegen/internal/verify"
)

// ConnectFunc opens the schema reader for run. release frees whatever the
// reader holds and is called once the metadata has been read.
type ConnectFunc func(ctx context.Context, run *config.Run) (r schema.Reader, release func(), err error)

// Connect opens a pooled connection for run and returns the dialect's
// introspector over it.
func Connect(ctx context.Context, run *config.Run) (schema.Reader, func(), error) {
	db, err := introspect.Connect(ctx, run.Connection)
	if err != nil {
		return nil, nil, err
	}
	r, err := introspect.New(run.Connection.Driver, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return r, db.Close, nil
}

// Result describes one finished run.
type Result struct {
	Run      string
	Tables   int
	Warnings []transformer.Warning

	// Artifact is set when the output was stored.
	Artifact *filestore.ObjectInfo
	// Report is set in verify mode.
	Report *verify.Report
}

// Generator executes runs against one artifact store.
// It is safe for concurrent use by multiple goroutines.
type Generator struct {
	store   filestore.Store
	connect ConnectFunc
	log     *logger.Logger

	mu  sync.Mutex // serializes writes to out
	out io.Writer
}

// Option configures a Generator.
type Option func(*Generator)

// WithConnector replaces the database connector. Tests use it to feed
// metadata without a database.
func WithConnector(fn ConnectFunc) Option {
	return func(g *Generator) { g.connect = fn }
}

// New creates a Generator storing artifacts in store and printing to out.
// A nil log discards everything.
func New(store filestore.Store, out io.Writer, log *logger.Logger, opts ...Option) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	g := &Generator{store: store, out: out, log: log, connect: Connect}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate executes run. In verify mode a stale or missing artifact yields
// a drift error alongside a Result carrying the report; nothing is written.
func (g *Generator) Generate(ctx context.Context, run *config.Run) (*Result, error) {
	log := g.log.With().Str("run", run.Name).Str("dialect", run.Dialect.String()).Logger()

	tables, err := g.readTables(ctx, run)
	if err != nil {
		log.ErrorWith("introspection failed", err)
		return nil, err
	}
	log.Debugf("read %d tables", len(tables))

	a, err := adapter.New(run.Dialect, run.Policies)
	if err != nil {
		return nil, err
	}
	db, warnings := transformer.Transform(tables, a, run.Transform, log)
	text := []byte(serializer.Serialize(db, run.Serialize))

	res := &Result{Run: run.Name, Tables: len(db.Tables()), Warnings: warnings}

	switch {
	case run.Print:
		g.mu.Lock()
		_, err := g.out.Write(text)
		g.mu.Unlock()
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to print "+run.OutFile, err)
		}

	case run.Verify:
		report, err := g.verify(ctx, run.OutFile, text)
		if err != nil {
			return nil, err
		}
		res.Report = &report
		if err := report.Err(); err != nil {
			log.WarnWith("artifact is out of date", logger.F("changes", len(report.Changes)))
			return res, err
		}
		log.Info("artifact is up to date")

	default:
		info, err := g.store.Put(ctx, run.OutFile, text)
		if err != nil {
			return nil, err
		}
		res.Artifact = info
		log.InfoWith("wrote artifact",
			logger.F("key", info.Key),
			logger.F("bytes", info.Size),
			logger.F("tables", res.Tables),
			logger.F("warnings", len(warnings)))
	}
	return res, nil
}

func (g *Generator) readTables(ctx context.Context, run *config.Run) ([]schema.TableMetadata, error) {
	r, release, err := g.connect(ctx, run)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindIntrospection, "failed to connect to the "+run.Dialect.String()+" database", err)
	}
	if release != nil {
		defer release()
	}

	if timeout := queryTimeout(run.Connection); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tables, err := r.ReadTables(ctx, run.Introspect)
	if err != nil {
		if errs.IsIntrospection(err) {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrKindIntrospection, "failed to read schema metadata", err)
	}
	return tables, nil
}

func (g *Generator) verify(ctx context.Context, name string, fresh []byte) (verify.Report, error) {
	persisted, err := g.store.Get(ctx, name)
	switch {
	case errs.IsNotFound(err):
		return verify.Missing(name, fresh), nil
	case err != nil:
		return verify.Report{}, err
	}
	return verify.Compare(name, persisted, fresh), nil
}

func queryTimeout(c *database.Config) time.Duration {
	if c == nil {
		return 0
	}
	return c.QueryTimeout
}
