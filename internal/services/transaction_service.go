// Package services coordinates the store and the event stream behind the
// HTTP handlers.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/store"
)

// TransactionService runs every transaction operation against the configured
// store and publishes a change event after each successful mutation. The
// event stream is best-effort: a publish failure is logged, never returned,
// because the row is already persisted by the time the event goes out.
type TransactionService struct {
	store      store.Store
	amqpClient *amqp.Client
}

func NewTransactionService(st store.Store, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		store:      st,
		amqpClient: amqpClient,
	}
}

// List returns the stored rows, filtered. The result is never nil, so an
// empty store renders as [] and not null.
func (s *TransactionService) List(ctx context.Context, f core.Filters) ([]core.Row, error) {
	rows, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	rows = core.ApplyFilters(rows, f)
	if rows == nil {
		rows = []core.Row{}
	}
	return rows, nil
}

// Statistics aggregates the stored rows after filtering.
func (s *TransactionService) Statistics(ctx context.Context, f core.Filters) (core.Statistics, error) {
	rows, err := s.store.LoadAll(ctx)
	if err != nil {
		return core.Statistics{}, fmt.Errorf("load transactions: %w", err)
	}
	return core.Aggregate(core.ApplyFilters(rows, f))
}

// Report returns the filtered rows together with their aggregate, loading the
// store once. The export handler feeds both into the report builder.
func (s *TransactionService) Report(ctx context.Context, f core.Filters) ([]core.Row, core.Statistics, error) {
	rows, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, core.Statistics{}, fmt.Errorf("load transactions: %w", err)
	}
	rows = core.ApplyFilters(rows, f)
	stats, err := core.Aggregate(rows)
	if err != nil {
		return nil, core.Statistics{}, err
	}
	return rows, stats, nil
}

// Create flattens and appends the transaction, then publishes a created
// event. The persisted row is returned.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Row, error) {
	row := t.Flatten()
	if err := s.store.Append(ctx, row); err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", t.ID,
		"transaction_name", t.Name,
		"amount", core.FormatAmount(t.Amount),
		"category", t.Category)

	s.publishEvent(ctx, amqp.NewCreatedEvent(row))
	return row, nil
}

// Update patches the stored row, then publishes an updated event carrying the
// patch. Returns core.ErrNotFound when the id matches nothing.
func (s *TransactionService) Update(ctx context.Context, id string, patch map[string]string) error {
	if err := s.store.UpdateByID(ctx, id, patch); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction updated", "transaction_id", id, "fields", len(patch))

	s.publishEvent(ctx, amqp.NewUpdatedEvent(id, patch))
	return nil
}

// Delete removes the stored row, then publishes a deleted event. Returns
// core.ErrNotFound when the id matches nothing.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)

	s.publishEvent(ctx, amqp.NewDeletedEvent(id))
	return nil
}

// Ready reports whether the store can serve a full load.
func (s *TransactionService) Ready(ctx context.Context) error {
	if _, err := s.store.LoadAll(ctx); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	return nil
}

func (s *TransactionService) publishEvent(ctx context.Context, event *amqp.TransactionEvent) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not configured, skipping event", "event_type", event.Type)
		return
	}

	if err := s.amqpClient.PublishTransactionEvent(ctx, event); err != nil {
		// Don't fail the request - the row is already persisted.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"event_type", event.Type,
			"transaction_id", event.ID,
			"error", err)
	}
}

// Close releases the AMQP connection. The store's own lifecycle belongs to
// whoever created it.
func (s *TransactionService) Close() error {
	if s.amqpClient == nil {
		return nil
	}
	if err := s.amqpClient.Close(); err != nil {
		return fmt.Errorf("close amqp client: %w", err)
	}
	return nil
}
