// Package blob keeps uploaded video files in a local directory.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

type FileStore struct {
	dir string
}

// NewFileStore creates dir if it is missing.
func NewFileStore(dir string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("video dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create video dir: %w", err)
	}
	return &FileStore{dir: abs}, nil
}

func (s *FileStore) Dir() string { return s.dir }

// Save writes r under name and returns the final path and the byte count.
// The file only appears once it is complete.
func (s *FileStore) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", 0, err
	}

	pf, err := renameio.NewPendingFile(path, renameio.WithTempDir(s.dir), renameio.WithPermissions(0o644))
	if err != nil {
		return "", 0, fmt.Errorf("blob temp file: %w", err)
	}
	defer pf.Cleanup()

	n, err := io.Copy(pf, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		return "", 0, fmt.Errorf("blob write: %w", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return "", 0, fmt.Errorf("blob commit: %w", err)
	}
	return path, n, nil
}

func (s *FileStore) Open(path string) (io.ReadSeekCloser, error) {
	if !s.contains(path) {
		return nil, fmt.Errorf("blob open: %s is outside %s", path, s.dir)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("blob open: %w", err)
	}
	return f, nil
}

func (s *FileStore) Remove(path string) error {
	if !s.contains(path) {
		return fmt.Errorf("blob remove: %s is outside %s", path, s.dir)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blob remove: %w", err)
	}
	return nil
}

func (s *FileStore) resolve(name string) (string, error) {
	clean := filepath.Base(filepath.Clean("/" + name))
	if clean == "/" || clean == "." || clean == "" {
		return "", fmt.Errorf("blob name %q is invalid", name)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *FileStore) contains(path string) bool {
	rel, err := filepath.Rel(s.dir, path)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
