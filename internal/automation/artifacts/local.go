package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/spf13/afero"
)

// LocalStore writes artifacts to an afero filesystem rooted at a base path.
type LocalStore struct {
	fs afero.Fs
}

// NewLocalStore roots artifacts under basePath on the OS filesystem.
func NewLocalStore(basePath string) *LocalStore {
	return &LocalStore{fs: afero.NewBasePathFs(afero.NewOsFs(), basePath)}
}

// NewFsStore uses fs directly; tests pass afero.NewMemMapFs().
func NewFsStore(fs afero.Fs) *LocalStore {
	return &LocalStore{fs: fs}
}

func (s *LocalStore) Write(ctx context.Context, p string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p = clean(p)
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir for %s: %w", p, err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", p, err)
	}
	return p, nil
}

func (s *LocalStore) Read(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, clean(p))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", p, err)
	}
	return data, nil
}

func (s *LocalStore) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return afero.Exists(s.fs, clean(p))
}
