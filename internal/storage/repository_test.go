package storage

import (
	"context"
	"path/filepath"
	"testing"

	"spendlog/internal/core"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "spendlog.db"))
	if err != nil {
		t.Fatalf("creating repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestInsertAndSelectRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	base := core.Row{
		core.ColID:       "a1",
		core.ColName:     "Rent",
		core.ColAmount:   "800.00",
		core.ColDate:     "2024-03-01",
		core.ColCategory: "Utilities",
	}
	food := core.Row{
		core.ColID:       "b2",
		core.ColName:     "Lunch",
		core.ColAmount:   "12.50",
		core.ColDate:     "2024-03-02",
		core.ColCategory: "Food",
		core.ColMealType: "lunch",
		core.ColLocation: "",
	}

	for _, r := range []core.Row{base, food} {
		if err := repo.InsertRow(ctx, r); err != nil {
			t.Fatalf("insert %q: %v", r[core.ColID], err)
		}
	}

	rows, err := repo.SelectAllRows(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if rows[0][core.ColID] != "a1" || rows[1][core.ColID] != "b2" {
		t.Fatalf("insertion order lost: %q, %q", rows[0][core.ColID], rows[1][core.ColID])
	}
	if rows[0].Has(core.ColMealType) {
		t.Fatalf("absent column came back on the base row: %v", rows[0])
	}
	if !rows[1].Has(core.ColLocation) {
		t.Fatalf("present-but-empty column dropped: %v", rows[1])
	}
	if rows[1][core.ColLocation] != "" {
		t.Fatalf("expected empty location, got %q", rows[1][core.ColLocation])
	}
}

func TestSelectAllRowsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	rows, err := repo.SelectAllRows(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestReplaceAllRows(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	if err := repo.InsertRow(ctx, core.Row{core.ColID: "old", core.ColName: "Old", core.ColAmount: "1.00", core.ColDate: "2024-01-01", core.ColCategory: "X"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	replacement := []core.Row{
		{core.ColID: "n1", core.ColName: "New 1", core.ColAmount: "2.00", core.ColDate: "2024-02-01", core.ColCategory: "Y"},
		{core.ColID: "n2", core.ColName: "New 2", core.ColAmount: "3.00", core.ColDate: "2024-02-02", core.ColCategory: "Y"},
	}
	if err := repo.ReplaceAllRows(ctx, replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}

	rows, err := repo.SelectAllRows(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][core.ColID] != "n1" || rows[1][core.ColID] != "n2" {
		t.Fatalf("unexpected rows after replace: %v", rows)
	}
}

func TestPatchRowByID(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	food := core.Row{
		core.ColID:       "a1",
		core.ColName:     "Lunch",
		core.ColAmount:   "12.50",
		core.ColDate:     "2024-03-02",
		core.ColCategory: "Food",
		core.ColMealType: "lunch",
	}
	if err := repo.InsertRow(ctx, food); err != nil {
		t.Fatalf("insert: %v", err)
	}

	found, err := repo.PatchRowByID(ctx, "a1", map[string]string{
		core.ColName:          "Dinner",
		core.ColTransportMode: "train", // column is NULL on this row, must stay NULL
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if !found {
		t.Fatalf("expected a match")
	}

	rows, err := repo.SelectAllRows(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	got := rows[0]
	if got[core.ColName] != "Dinner" {
		t.Fatalf("patch not applied: %v", got)
	}
	if got.Has(core.ColTransportMode) {
		t.Fatalf("patch introduced a column on a row that never had it: %v", got)
	}
	if got[core.ColMealType] != "lunch" {
		t.Fatalf("unpatched column changed: %v", got)
	}
}

func TestPatchRowByIDFirstMatchOnly(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	for _, name := range []string{"First", "Second"} {
		row := core.Row{core.ColID: "dup", core.ColName: name, core.ColAmount: "1.00", core.ColDate: "2024-01-01", core.ColCategory: "X"}
		if err := repo.InsertRow(ctx, row); err != nil {
			t.Fatalf("insert %q: %v", name, err)
		}
	}

	found, err := repo.PatchRowByID(ctx, "dup", map[string]string{core.ColName: "Patched"})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if !found {
		t.Fatalf("expected a match")
	}

	rows, err := repo.SelectAllRows(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if rows[0][core.ColName] != "Patched" || rows[1][core.ColName] != "Second" {
		t.Fatalf("expected only the first row patched, got %q and %q", rows[0][core.ColName], rows[1][core.ColName])
	}
}

func TestPatchRowByIDMissing(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	found, err := repo.PatchRowByID(ctx, "nope", map[string]string{core.ColName: "X"})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if found {
		t.Fatalf("expected no match on an empty table")
	}
}

func TestDeleteRowsByID(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	for _, id := range []string{"a1", "dup", "dup"} {
		row := core.Row{core.ColID: id, core.ColName: "Item", core.ColAmount: "1.00", core.ColDate: "2024-01-01", core.ColCategory: "X"}
		if err := repo.InsertRow(ctx, row); err != nil {
			t.Fatalf("insert %q: %v", id, err)
		}
	}

	n, err := repo.DeleteRowsByID(ctx, "dup")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows deleted, got %d", n)
	}

	n, err = repo.DeleteRowsByID(ctx, "dup")
	if err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows deleted, got %d", n)
	}

	rows, err := repo.SelectAllRows(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 || rows[0][core.ColID] != "a1" {
		t.Fatalf("unexpected rows after delete: %v", rows)
	}
}
