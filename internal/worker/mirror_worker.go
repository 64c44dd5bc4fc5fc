// Package worker applies the transaction event stream to the SQLite mirror,
// keeping a queryable copy of the primary store up to date.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/amqp"
	"spendlog/internal/storage"
)

// MirrorWorker consumes transaction events and replays them against the
// mirror repository. Events that cannot apply, such as an update for a row
// the mirror never saw, are logged and dropped rather than requeued: the
// mirror is best-effort and a poisoned message must not wedge the queue.
type MirrorWorker struct {
	repo *storage.Repository
}

func NewMirrorWorker(repo *storage.Repository) *MirrorWorker {
	return &MirrorWorker{repo: repo}
}

// HandleEvent applies one event to the mirror. A non-nil return means the
// delivery should be requeued and retried.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	slog.DebugContext(ctx, "Processing transaction event",
		"type", event.Type,
		"id", event.ID)

	switch event.Type {
	case amqp.EventTransactionCreated:
		return w.handleCreated(ctx, event)
	case amqp.EventTransactionUpdated:
		return w.handleUpdated(ctx, event)
	case amqp.EventTransactionDeleted:
		return w.handleDeleted(ctx, event)
	default:
		slog.WarnContext(ctx, "Dropping event of unknown type",
			"type", event.Type,
			"id", event.ID)
		return nil
	}
}

func (w *MirrorWorker) handleCreated(ctx context.Context, event *amqp.TransactionEvent) error {
	if event.Row == nil {
		slog.WarnContext(ctx, "Dropping created event without row data", "id", event.ID)
		return nil
	}

	if err := w.repo.InsertRow(ctx, event.Row); err != nil {
		return fmt.Errorf("mirror created event %s: %w", event.ID, err)
	}

	slog.InfoContext(ctx, "Mirrored new transaction",
		"id", event.ID,
		"columns", len(event.Row))
	return nil
}

func (w *MirrorWorker) handleUpdated(ctx context.Context, event *amqp.TransactionEvent) error {
	matched, err := w.repo.PatchRowByID(ctx, event.ID, event.Patch)
	if err != nil {
		return fmt.Errorf("mirror updated event %s: %w", event.ID, err)
	}
	if !matched {
		slog.WarnContext(ctx, "Update event for a row the mirror does not have", "id", event.ID)
		return nil
	}

	slog.InfoContext(ctx, "Mirrored transaction update",
		"id", event.ID,
		"fields", len(event.Patch))
	return nil
}

func (w *MirrorWorker) handleDeleted(ctx context.Context, event *amqp.TransactionEvent) error {
	n, err := w.repo.DeleteRowsByID(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("mirror deleted event %s: %w", event.ID, err)
	}
	if n == 0 {
		slog.WarnContext(ctx, "Delete event for a row the mirror does not have", "id", event.ID)
		return nil
	}

	slog.InfoContext(ctx, "Mirrored transaction deletion",
		"id", event.ID,
		"rows", n)
	return nil
}
