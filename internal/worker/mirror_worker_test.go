package worker

import (
	"context"
	"path/filepath"
	"testing"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/storage"
)

func testWorker(t *testing.T) (*MirrorWorker, *storage.Repository) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("creating repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewMirrorWorker(repo), repo
}

func sampleRow(id string) core.Row {
	return core.Row{
		core.ColID:       id,
		core.ColName:     "Coffee",
		core.ColAmount:   "5.45",
		core.ColDate:     "2025-06-01",
		core.ColCategory: "Food",
		core.ColMealType: "breakfast",
		core.ColLocation: "Downtown",
	}
}

func TestHandleEventCreated(t *testing.T) {
	ctx := context.Background()
	w, repo := testWorker(t)

	if err := w.HandleEvent(ctx, amqp.NewCreatedEvent(sampleRow("t1"))); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	rows, err := repo.SelectAllRows(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0][core.ColName] != "Coffee" || rows[0][core.ColMealType] != "breakfast" {
		t.Errorf("mirrored row = %v", rows[0])
	}
	if rows[0].Has(core.ColTransportMode) {
		t.Errorf("food row grew a travel column: %v", rows[0])
	}
}

func TestHandleEventCreatedWithoutRow(t *testing.T) {
	ctx := context.Background()
	w, repo := testWorker(t)

	event := &amqp.TransactionEvent{Type: amqp.EventTransactionCreated, ID: "t1"}
	if err := w.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	rows, err := repo.SelectAllRows(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty mirror, got %d rows", len(rows))
	}
}

func TestHandleEventUpdated(t *testing.T) {
	ctx := context.Background()
	w, repo := testWorker(t)

	if err := repo.InsertRow(ctx, sampleRow("t1")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	patch := map[string]string{core.ColAmount: "7.80", core.ColLocation: "Airport"}
	if err := w.HandleEvent(ctx, amqp.NewUpdatedEvent("t1", patch)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	rows, err := repo.SelectAllRows(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if rows[0][core.ColAmount] != "7.80" {
		t.Errorf("amount = %q, want 7.80", rows[0][core.ColAmount])
	}
	if rows[0][core.ColLocation] != "Airport" {
		t.Errorf("location = %q, want Airport", rows[0][core.ColLocation])
	}
	if rows[0][core.ColName] != "Coffee" {
		t.Errorf("untouched column changed: %q", rows[0][core.ColName])
	}
}

func TestHandleEventUpdatedUnknownRowIsDropped(t *testing.T) {
	ctx := context.Background()
	w, _ := testWorker(t)

	event := amqp.NewUpdatedEvent("missing", map[string]string{core.ColAmount: "1.00"})
	if err := w.HandleEvent(ctx, event); err != nil {
		t.Errorf("HandleEvent = %v, want nil for unknown row", err)
	}
}

func TestHandleEventDeleted(t *testing.T) {
	ctx := context.Background()
	w, repo := testWorker(t)

	if err := repo.InsertRow(ctx, sampleRow("t1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.InsertRow(ctx, sampleRow("t2")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := w.HandleEvent(ctx, amqp.NewDeletedEvent("t1")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	rows, err := repo.SelectAllRows(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 || rows[0][core.ColID] != "t2" {
		t.Errorf("rows after delete = %v", rows)
	}

	// Deleting again finds nothing but still acks.
	if err := w.HandleEvent(ctx, amqp.NewDeletedEvent("t1")); err != nil {
		t.Errorf("repeat delete = %v, want nil", err)
	}
}

func TestHandleEventUnknownType(t *testing.T) {
	ctx := context.Background()
	w, _ := testWorker(t)

	event := &amqp.TransactionEvent{Type: "transaction.archived", ID: "t1"}
	if err := w.HandleEvent(ctx, event); err != nil {
		t.Errorf("HandleEvent = %v, want nil for unknown type", err)
	}
}
