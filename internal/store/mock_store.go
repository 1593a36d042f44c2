// ABOUTME: Mock Store implementation for testing
// ABOUTME: In-memory accounts and entries with optional error injection

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MockStore is an in-memory Store implementation for testing.
// The *Err fields, when set, are returned by the matching method
// instead of touching the data.
type MockStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account // keyed by account ID
	entries  map[string][]*Entry // keyed by account ID

	CreateAccountErr error
	AccountExistsErr error
	GetAccountErr    error
	CreateEntryErr   error
	ListEntriesErr   error

	// Calls counts method invocations by name
	calls map[string]int
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		accounts: make(map[string]*Account),
		entries:  make(map[string][]*Entry),
		calls:    make(map[string]int),
	}
}

// Calls returns how many times the named method was invoked
func (m *MockStore) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

// CreateAccount stores a new account.
func (m *MockStore) CreateAccount(ctx context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["CreateAccount"]++

	if m.CreateAccountErr != nil {
		return m.CreateAccountErr
	}
	if account.ID == "" {
		return fmt.Errorf("account id is required")
	}
	if _, exists := m.accounts[account.ID]; exists {
		return ErrAccountExists
	}

	a := *account
	m.accounts[a.ID] = &a
	return nil
}

// AccountExists reports whether the account is present.
func (m *MockStore) AccountExists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["AccountExists"]++

	if m.AccountExistsErr != nil {
		return false, m.AccountExistsErr
	}
	_, ok := m.accounts[id]
	return ok, nil
}

// GetAccount retrieves an account by ID.
func (m *MockStore) GetAccount(ctx context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["GetAccount"]++

	if m.GetAccountErr != nil {
		return nil, m.GetAccountErr
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *a
	return &result, nil
}

// CreateEntry appends an entry to its account.
func (m *MockStore) CreateEntry(ctx context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["CreateEntry"]++

	if m.CreateEntryErr != nil {
		return m.CreateEntryErr
	}
	if err := validateEntry(entry); err != nil {
		return err
	}
	// Match the foreign key enforced by the SQL stores
	if _, ok := m.accounts[entry.AccountID]; !ok {
		return fmt.Errorf("inserting entry: account %q: %w", entry.AccountID, ErrNotFound)
	}

	e := *entry
	m.entries[e.AccountID] = append(m.entries[e.AccountID], &e)
	return nil
}

// ListEntries returns copies of an account's entries, newest date first.
func (m *MockStore) ListEntries(ctx context.Context, accountID string) ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["ListEntries"]++

	if m.ListEntriesErr != nil {
		return nil, m.ListEntriesErr
	}

	stored := m.entries[accountID]
	result := make([]*Entry, 0, len(stored))
	for _, e := range stored {
		c := *e
		result = append(result, &c)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Close is a no-op for MockStore.
func (m *MockStore) Close() error {
	return nil
}

var (
	_ Store = (*MockStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
