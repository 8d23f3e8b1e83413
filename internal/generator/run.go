package generator

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/rowan-gud/kysely-codegen/internal/config"
	"github.com/rowan-gud/kysely-codegen/internal/errs"
	"github.com/rowan-gud/kysely-codegen/internal/filestore"
	"github.com/rowan-gud/kysely-codegen/internal/filestore/local"
	"github.com/rowan-gud/kysely-codegen/internal/filestore/minio"
)

// OpenStore opens the artifact store described by cfg and checks it is
// reachable.
func OpenStore(ctx context.Context, cfg *filestore.Config) (filestore.Store, error) {
	var (
		store filestore.Store
		err   error
	)
	switch cfg.Provider {
	case filestore.ProviderLocal, "":
		store = local.New(cfg)
	case filestore.ProviderMinIO:
		store, err = minio.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errs.Newf(errs.ErrKindConfig, "unsupported store provider %q", cfg.Provider)
	}

	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// RunAll executes runs concurrently and returns their results in input
// order. The first hard failure cancels the remaining runs. Drift does not:
// every run is verified and all drift errors are returned together.
func (g *Generator) RunAll(ctx context.Context, runs []*config.Run) ([]*Result, error) {
	results := make([]*Result, len(runs))
	drift := make([]error, len(runs))

	eg, ctx := errgroup.WithContext(ctx)
	for i, run := range runs {
		eg.Go(func() error {
			res, err := g.Generate(ctx, run)
			results[i] = res
			if errs.IsDrift(err) {
				drift[i] = err
				return nil
			}
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return results, err
	}

	var found []error
	for _, err := range drift {
		if err != nil {
			found = append(found, err)
		}
	}
	switch len(found) {
	case 0:
		return results, nil
	case 1:
		return results, found[0]
	}
	return results, errors.Join(found...)
}
