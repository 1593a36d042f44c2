// ABOUTME: Shared behavioural checks every Store implementation must pass
// ABOUTME: Run against MockStore, SQLiteStore and (when configured) PostgresStore

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()
	const id = "!ledger:example.org"

	exists, err := s.AccountExists(ctx, id)
	if err != nil {
		t.Fatalf("AccountExists failed: %v", err)
	}
	if exists {
		t.Fatal("account exists before registration")
	}

	if _, err := s.GetAccount(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	created := time.Now().UTC().Truncate(time.Second)
	if err := s.CreateAccount(ctx, &Account{ID: id, Name: "alice", CreatedAt: created}); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if err := s.CreateAccount(ctx, &Account{ID: id, Name: "mallory", CreatedAt: created}); !errors.Is(err, ErrAccountExists) {
		t.Errorf("expected ErrAccountExists on duplicate, got %v", err)
	}

	account, err := s.GetAccount(ctx, id)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if account.Name != "alice" {
		t.Errorf("Name mismatch: got %q, want %q", account.Name, "alice")
	}

	exists, err = s.AccountExists(ctx, id)
	if err != nil || !exists {
		t.Fatalf("AccountExists after create = %v, %v", exists, err)
	}

	base := time.Now().UTC()
	entries := []*Entry{
		{ID: "e-old", Date: mustDate(t, "2024-01-15"), Amount: decimal.RequireFromString("400"), Kind: KindExpense, Comment: "rent"},
		{ID: "e-new", Date: mustDate(t, "2024-03-01"), Amount: decimal.RequireFromString("1000"), Kind: KindIncome, Comment: "salary"},
		{ID: "e-mid-1", Date: mustDate(t, "2024-02-10"), Amount: decimal.RequireFromString("12.34"), Kind: KindExpense},
		{ID: "e-mid-2", Date: mustDate(t, "2024-02-10"), Amount: decimal.RequireFromString("5"), Kind: KindExpense, Comment: "coffee"},
	}
	for i, e := range entries {
		e.AccountID = id
		e.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := s.CreateEntry(ctx, e); err != nil {
			t.Fatalf("CreateEntry(%s) failed: %v", e.ID, err)
		}
	}

	got, err := s.ListEntries(ctx, id)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	wantOrder := []string{"e-new", "e-mid-2", "e-mid-1", "e-old"}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(got))
	}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("entry %d: got %q, want %q", i, got[i].ID, want)
		}
	}

	salary := got[0]
	if salary.Kind != KindIncome {
		t.Errorf("Kind mismatch: got %q, want %q", salary.Kind, KindIncome)
	}
	if !salary.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Amount mismatch: got %s, want 1000", salary.Amount)
	}
	if salary.Date.Format(DateLayout) != "2024-03-01" {
		t.Errorf("Date mismatch: got %s", salary.Date.Format(DateLayout))
	}
	if salary.Comment != "salary" {
		t.Errorf("Comment mismatch: got %q", salary.Comment)
	}
	if got[2].Comment != "" {
		t.Errorf("expected empty comment, got %q", got[2].Comment)
	}

	other, err := s.ListEntries(ctx, "someone-else")
	if err != nil {
		t.Fatalf("ListEntries for other account failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no entries for other account, got %d", len(other))
	}

	if err := s.CreateEntry(ctx, &Entry{ID: "bad", AccountID: id, Date: base, Amount: decimal.NewFromInt(-1), Kind: KindIncome}); err == nil {
		t.Error("expected error for negative amount")
	}
	if err := s.CreateEntry(ctx, &Entry{ID: "bad", AccountID: id, Date: base, Amount: decimal.NewFromInt(1), Kind: "gift"}); err == nil {
		t.Error("expected error for invalid kind")
	}
}
