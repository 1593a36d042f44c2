// ABOUTME: Domain events emitted after ledger writes
// ABOUTME: Defines EntryRecorded and the Publisher interface with a no-op implementation

package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Enne678/RGZ-1SEM/internal/store"
)

// TypeEntryRecorded is the event type of EntryRecorded
const TypeEntryRecorded = "entry.recorded"

// EntryRecorded announces a ledger entry that was just persisted
type EntryRecorded struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	EntryID    string          `json:"entry_id"`
	AccountID  string          `json:"account_id"`
	Kind       store.Kind      `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Date       string          `json:"date"`
	Comment    string          `json:"comment,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEntryRecorded builds the event for entry. currency is the base
// currency the amount is stored in.
func NewEntryRecorded(entry *store.Entry, currency string) EntryRecorded {
	return EntryRecorded{
		EventID:    uuid.New().String(),
		Type:       TypeEntryRecorded,
		EntryID:    entry.ID,
		AccountID:  entry.AccountID,
		Kind:       entry.Kind,
		Amount:     entry.Amount,
		Currency:   currency,
		Date:       entry.Date.Format(store.DateLayout),
		Comment:    entry.Comment,
		OccurredAt: entry.CreatedAt,
	}
}

// Publisher delivers events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, event EntryRecorded) error
	Close() error
}

// Nop discards every event
type Nop struct{}

// Publish does nothing
func (Nop) Publish(context.Context, EntryRecorded) error { return nil }

// Close does nothing
func (Nop) Close() error { return nil }

var _ Publisher = Nop{}
