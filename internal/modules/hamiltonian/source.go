package hamiltonian

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source opens named data objects, either parameter files or the norm table.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Describe(name string) string
}

// FileSource reads objects from a local data directory.
type FileSource struct {
	Dir string
}

// NewFileSource creates a source rooted at dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path(name), err)
	}
	return f, nil
}

func (s *FileSource) Describe(name string) string {
	return s.path(name)
}

func (s *FileSource) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}
