package amqp

import (
	"encoding/json"
	"time"

	"spendlog/internal/core"
)

// Event types carried on the transaction stream.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionUpdated = "transaction.updated"
	EventTransactionDeleted = "transaction.deleted"
)

// TransactionEvent describes one mutation of the transaction store. A created
// event carries the full flattened row, an updated event carries the applied
// patch, a deleted event carries only the id.
type TransactionEvent struct {
	Type      string            `json:"type"`
	ID        string            `json:"id"`
	Row       core.Row          `json:"row,omitempty"`
	Patch     map[string]string `json:"patch,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewCreatedEvent builds the event for a freshly appended row.
func NewCreatedEvent(row core.Row) *TransactionEvent {
	return &TransactionEvent{
		Type:      EventTransactionCreated,
		ID:        row[core.ColID],
		Row:       row.Clone(),
		Timestamp: time.Now(),
	}
}

// NewUpdatedEvent builds the event for a patched row.
func NewUpdatedEvent(id string, patch map[string]string) *TransactionEvent {
	copied := make(map[string]string, len(patch))
	for k, v := range patch {
		copied[k] = v
	}
	return &TransactionEvent{
		Type:      EventTransactionUpdated,
		ID:        id,
		Patch:     copied,
		Timestamp: time.Now(),
	}
}

// NewDeletedEvent builds the event for a removed row.
func NewDeletedEvent(id string) *TransactionEvent {
	return &TransactionEvent{
		Type:      EventTransactionDeleted,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON creates an event from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var event TransactionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
