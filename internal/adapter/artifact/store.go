package artifact

import (
	"errors"

	"github.com/orbis-globe/data-engine/internal/domain"
)

// Store binds an artifact path to its output format.
// It implements pipeline.ArtifactStore.
type Store struct {
	path   string
	format string
}

// NewStore creates a store writing format to path.
func NewStore(path, format string) *Store {
	return &Store{path: path, format: format}
}

// Path returns the artifact location.
func (s *Store) Path() string { return s.path }

// LoadSnapshot returns the country table of the current artifact. A missing
// artifact is an empty snapshot, not an error.
func (s *Store) LoadSnapshot() (domain.Snapshot, error) {
	a, err := Read(s.path)
	if errors.Is(err, ErrNotFound) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.NewSnapshot(a.Countries), nil
}

// Save atomically replaces the artifact and returns its size in bytes.
func (s *Store) Save(a domain.Artifact) (int, error) {
	return Write(s.path, a, s.format)
}
