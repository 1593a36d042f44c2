// ABOUTME: Store interface and data types for the finance bot ledger
// ABOUTME: Defines Account, Entry and Kind plus the Store interface for persistence

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrAccountExists is returned when registering an identity that already has an account
var ErrAccountExists = errors.New("account already exists")

// DateLayout is the storage format for entry dates
const DateLayout = "2006-01-02"

// Kind tags an entry as income or expense
type Kind string

// Kind values
const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// ParseKind converts a string into a Kind, accepting either case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	}
	return "", fmt.Errorf("unknown entry kind %q", s)
}

// Valid reports whether k is one of the defined kinds
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Account is a registered user. ID is the conversation identity.
type Account struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Entry is a single income or expense record.
// Amount is non-negative and always in the base currency.
type Entry struct {
	ID        string
	AccountID string
	Date      time.Time
	Amount    decimal.Decimal
	Kind      Kind
	Comment   string // empty when the user left no comment
	CreatedAt time.Time
}

// Store defines the ledger persistence operations used by the bot
type Store interface {
	// Accounts
	CreateAccount(ctx context.Context, account *Account) error
	AccountExists(ctx context.Context, id string) (bool, error)
	GetAccount(ctx context.Context, id string) (*Account, error)

	// Entries (append-only)
	CreateEntry(ctx context.Context, entry *Entry) error
	ListEntries(ctx context.Context, accountID string) ([]*Entry, error)

	// Close releases any resources held by the store
	Close() error
}

// validateEntry checks the fields every implementation requires before writing
func validateEntry(entry *Entry) error {
	if entry.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	if entry.AccountID == "" {
		return fmt.Errorf("entry account id is required")
	}
	if !entry.Kind.Valid() {
		return fmt.Errorf("invalid entry kind %q", entry.Kind)
	}
	if entry.Amount.IsNegative() {
		return fmt.Errorf("entry amount must not be negative")
	}
	if entry.Date.IsZero() {
		return fmt.Errorf("entry date is required")
	}
	return nil
}
