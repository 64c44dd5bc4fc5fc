// Package memory provides an in-process transaction store for tests and
// ephemeral runs. It follows the file store's operation semantics, including
// first-row projection on rewrite, but has no header, so rows keep their own
// column sets across appends.
package memory

import (
	"context"
	"sync"

	"spendlog/internal/core"
)

// Store holds rows in insertion order behind a mutex. Rows are copied on the
// way in and out, so callers never share map memory with the store.
type Store struct {
	mu   sync.RWMutex
	rows []core.Row
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(ctx context.Context, row core.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row.Clone())
	return nil
}

func (s *Store) LoadAll(ctx context.Context) ([]core.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Row, 0, len(s.rows))
	for _, r := range s.rows {
		if r.IsBlank() {
			continue
		}
		out = append(out, r.Clone())
	}
	return out, nil
}

func (s *Store) RewriteAll(ctx context.Context, rows []core.Row) error {
	projected := core.ProjectRows(rows)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = projected
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept, removed := core.RemoveByID(s.rows, id)
	s.rows = core.ProjectRows(kept)
	if removed == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateByID(ctx context.Context, id string, patch map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := core.PatchByID(s.rows, id, patch)
	s.rows = core.ProjectRows(s.rows)
	if !found {
		return core.ErrNotFound
	}
	return nil
}
