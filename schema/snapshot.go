package schema

import (
	"errors"
	"sync/atomic"

	"github.com/c360studio/sintology/ontology"
)

// ErrNotLoaded is returned by Current before the first successful Load.
var ErrNotLoaded = errors.New("schema not loaded")

// Snapshot holds the Model the process currently validates against.
// Reload swaps in a new Model; a Model already handed out never changes.
type Snapshot struct {
	path    string
	current atomic.Pointer[ontology.Model]
}

// NewSnapshot creates an empty snapshot for the schema document at path.
func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

// Path returns the schema document path.
func (s *Snapshot) Path() string {
	return s.path
}

// Load reads the document the first time and returns the current Model.
func (s *Snapshot) Load() (*ontology.Model, error) {
	if m := s.current.Load(); m != nil {
		return m, nil
	}
	return s.Reload()
}

// Current returns the loaded Model.
func (s *Snapshot) Current() (*ontology.Model, error) {
	m := s.current.Load()
	if m == nil {
		return nil, ErrNotLoaded
	}
	return m, nil
}

// Reload rereads the document. On failure the previous Model stays current.
func (s *Snapshot) Reload() (*ontology.Model, error) {
	m, err := LoadFile(s.path)
	if err != nil {
		return nil, err
	}
	s.current.Store(m)
	return m, nil
}

// Set replaces the current Model without reading the document.
func (s *Snapshot) Set(m *ontology.Model) {
	s.current.Store(m)
}
