package local

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	s := NewWithFs(fsys, "/project")

	info, err := s.Put(ctx, "src/db.d.ts", []byte("export interface DB {}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/project/src/db.d.ts", info.Key)
	assert.EqualValues(t, 23, info.Size)

	data, err := s.Get(ctx, "src/db.d.ts")
	require.NoError(t, err)
	assert.Equal(t, "export interface DB {}\n", string(data))

	_, err = fsys.Stat("/project/src/db.d.ts.tmp")
	assert.Error(t, err, "temp file must not survive")

	_, err = s.Put(ctx, "src/db.d.ts", []byte("x"))
	require.NoError(t, err)
	data, err = s.Get(ctx, "src/db.d.ts")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestStore_GetMissing(t *testing.T) {
	s := NewWithFs(afero.NewMemMapFs(), "")

	_, err := s.Get(context.Background(), "db.d.ts")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestStore_AbsoluteNamesIgnoreRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := NewWithFs(fsys, "/project")

	_, err := s.Put(context.Background(), "/tmp/out/db.d.ts", []byte("x"))
	require.NoError(t, err)

	ok, err := afero.Exists(fsys, "/tmp/out/db.d.ts")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_Ping(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()

	assert.NoError(t, NewWithFs(fsys, "").Ping(ctx))
	assert.NoError(t, NewWithFs(fsys, "/missing").Ping(ctx))

	require.NoError(t, afero.WriteFile(fsys, "/file", []byte("x"), 0o644))
	err := NewWithFs(fsys, "/file").Ping(ctx)
	assert.True(t, errs.IsInvalidInput(err))
}
