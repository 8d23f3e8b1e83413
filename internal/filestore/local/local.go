// Package local provides a filesystem implementation of filestore.Store
// on top of afero.
package local

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/rowan-gud/kysely-codegen/internal/errs"
	"github.com/rowan-gud/kysely-codegen/internal/filestore"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store reads and writes artifacts as files below a root directory.
type Store struct {
	fs   afero.Fs
	root string
}

// New returns a Store on the OS filesystem rooted at cfg.Root.
func New(cfg *filestore.Config) *Store {
	return NewWithFs(afero.NewOsFs(), cfg.Root)
}

// NewWithFs returns a Store on fsys rooted at root.
func NewWithFs(fsys afero.Fs, root string) *Store {
	return &Store{fs: fsys, root: root}
}

// Ping checks that the root, when it exists, is a directory.
func (s *Store) Ping(_ context.Context) error {
	if s.root == "" {
		return nil
	}
	info, err := s.fs.Stat(s.root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return mapError(err, "ping failed")
	case !info.IsDir():
		return errs.Newf(errs.ErrKindInvalidInput, "store root %s is not a directory", s.root)
	}
	return nil
}

func (s *Store) Close() error { return nil }

// Get reads the file for name.
func (s *Store) Get(_ context.Context, name string) ([]byte, error) {
	p := s.path(name)
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		return nil, mapError(err, "failed to read "+p)
	}
	return data, nil
}

// Put writes data to a sibling temp file and renames it over name, so
// readers never observe a partial artifact.
func (s *Store) Put(_ context.Context, name string, data []byte) (*filestore.ObjectInfo, error) {
	p := s.path(name)
	if err := s.fs.MkdirAll(filepath.Dir(p), dirPerm); err != nil {
		return nil, mapError(err, "failed to create directory for "+p)
	}

	tmp := p + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, filePerm); err != nil {
		return nil, mapError(err, "failed to write "+tmp)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return nil, mapError(err, "failed to replace "+p)
	}

	info, err := s.fs.Stat(p)
	if err != nil {
		return nil, mapError(err, "failed to stat "+p)
	}
	return &filestore.ObjectInfo{
		Key:          p,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}

func (s *Store) path(name string) string {
	if s.root == "" || filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(s.root, name)
}

func mapError(err error, msg string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	case errors.Is(err, fs.ErrPermission):
		return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
	default:
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}
}

var _ filestore.Store = (*Store)(nil)
