package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/c360studio/sintology/instance"
)

// GraphStore loads and saves the instance graph.
type GraphStore interface {
	Load(ctx context.Context) (*instance.Graph, error)
	Save(ctx context.Context, g *instance.Graph) error
}

// FileStore keeps the instance graph in one JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the graph. A missing file is an empty graph.
func (s *FileStore) Load(_ context.Context) (*instance.Graph, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return instance.NewGraph(), nil
	}
	if err != nil {
		return nil, ioErr("open", s.path, err)
	}
	defer f.Close()
	return instance.Decode(f)
}

// Save replaces the file atomically.
func (s *FileStore) Save(_ context.Context, g *instance.Graph) error {
	return WriteAtomic(s.path, 0o644, func(w io.Writer) error {
		return instance.Encode(w, g)
	})
}
