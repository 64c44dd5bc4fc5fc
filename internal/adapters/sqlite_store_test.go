package adapters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"spendlog/internal/core"
	"spendlog/internal/storage"
)

func testSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "spendlog.db"))
	if err != nil {
		t.Fatalf("creating repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewSQLiteStore(repo)
}

func baseRow(id, name string) core.Row {
	return core.Row{
		core.ColID:       id,
		core.ColName:     name,
		core.ColAmount:   "10.00",
		core.ColDate:     "2024-03-01",
		core.ColCategory: "Utilities",
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testSQLiteStore(t)

	for _, id := range []string{"a1", "b2"} {
		if err := s.Append(ctx, baseRow(id, "Item "+id)); err != nil {
			t.Fatalf("append %q: %v", id, err)
		}
	}

	rows, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][core.ColID] != "a1" || rows[1][core.ColID] != "b2" {
		t.Fatalf("insertion order lost: %v", rows)
	}
}

func TestSQLiteStoreDeleteAndUpdateParity(t *testing.T) {
	// The SQLite adapter must report ErrNotFound exactly like the file store.
	ctx := context.Background()
	s := testSQLiteStore(t)

	if err := s.Append(ctx, baseRow("a1", "Rent")); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := s.DeleteByID(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missed delete, got %v", err)
	}
	if err := s.UpdateByID(ctx, "missing", map[string]string{core.ColName: "X"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missed update, got %v", err)
	}

	if err := s.UpdateByID(ctx, "a1", map[string]string{core.ColName: "Rent March"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.DeleteByID(ctx, "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rows, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty store, got %v", rows)
	}
}

func TestSQLiteStoreRewriteProjects(t *testing.T) {
	ctx := context.Background()
	s := testSQLiteStore(t)

	wide := baseRow("b2", "Lunch")
	wide[core.ColMealType] = "lunch"
	if err := s.RewriteAll(ctx, []core.Row{baseRow("a1", "Rent"), wide}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	rows, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Has(core.ColMealType) {
		t.Fatalf("rewrite kept a column outside the first row's set: %v", rows[1])
	}
}
