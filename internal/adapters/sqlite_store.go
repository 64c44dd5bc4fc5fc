// Package adapters bridges the SQLite repository to the transaction store
// contract, so the HTTP service works unchanged with DATA_BACKEND=sqlite.
package adapters

import (
	"context"

	"spendlog/internal/core"
	"spendlog/internal/storage"
)

// SQLiteStore implements the store contract on top of storage.Repository.
// Collection-level rules follow the file store: rewrites project every row
// onto the first row's column set, and a missed delete or update still
// rewrites before reporting core.ErrNotFound.
type SQLiteStore struct {
	repo *storage.Repository
}

func NewSQLiteStore(repo *storage.Repository) *SQLiteStore {
	return &SQLiteStore{repo: repo}
}

func (s *SQLiteStore) Append(ctx context.Context, row core.Row) error {
	return s.repo.InsertRow(ctx, row)
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]core.Row, error) {
	rows, err := s.repo.SelectAllRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		if r.IsBlank() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *SQLiteStore) RewriteAll(ctx context.Context, rows []core.Row) error {
	return s.repo.ReplaceAllRows(ctx, core.ProjectRows(rows))
}

func (s *SQLiteStore) DeleteByID(ctx context.Context, id string) error {
	rows, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	kept, removed := core.RemoveByID(rows, id)
	if err := s.RewriteAll(ctx, kept); err != nil {
		return err
	}
	if removed == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpdateByID(ctx context.Context, id string, patch map[string]string) error {
	rows, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	found := core.PatchByID(rows, id, patch)
	if err := s.RewriteAll(ctx, rows); err != nil {
		return err
	}
	if !found {
		return core.ErrNotFound
	}
	return nil
}
