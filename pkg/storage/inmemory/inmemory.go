// Package inmemory provides a map-backed transcript store used when no
// database is configured.
package inmemory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/papercomputeco/uistream/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of transcripts
	mu sync.RWMutex

	// transcripts is keyed by message id
	transcripts map[string]*storage.Transcript
}

// NewDriver creates a new in-memory store.
func NewDriver() *Driver {
	return &Driver{
		transcripts: make(map[string]*storage.Transcript),
	}
}

// Put stores a transcript. Returns false if the id is already present.
func (s *Driver) Put(_ context.Context, t *storage.Transcript) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transcripts[t.ID]; ok {
		return false, nil
	}

	cp := *t
	s.transcripts[t.ID] = &cp
	return true, nil
}

// Get retrieves a transcript by id.
func (s *Driver) Get(_ context.Context, id string) (*storage.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transcripts[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	cp := *t
	return &cp, nil
}

// List returns up to limit transcripts, newest first.
func (s *Driver) List(_ context.Context, limit int) ([]*storage.Transcript, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	s.mu.RLock()
	result := make([]*storage.Transcript, 0, len(s.transcripts))
	for _, t := range s.transcripts {
		cp := *t
		result = append(result, &cp)
	}
	s.mu.RUnlock()

	slices.SortFunc(result, func(a, b *storage.Transcript) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Close is a no-op for the in-memory store.
func (s *Driver) Close() error {
	return nil
}
