// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Persists accounts and ledger entries with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// timestampLayout is fixed width so created_at sorts correctly as text
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Wait on a locked database instead of failing writes immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS accounts (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS entries (
			id         TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id),
			date       TEXT NOT NULL,
			amount     TEXT NOT NULL,
			kind       TEXT NOT NULL,
			comment    TEXT,
			created_at TEXT NOT NULL,

			CHECK (kind IN ('income', 'expense'))
		);

		CREATE INDEX IF NOT EXISTS idx_entries_account_date
			ON entries(account_id, date DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// CreateAccount inserts a new account.
// Returns ErrAccountExists if the identity is already registered.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *Account) error {
	if account.ID == "" {
		return fmt.Errorf("account id is required")
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("account name is required")
	}

	query := `INSERT INTO accounts (id, name, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrAccountExists
		}
		return fmt.Errorf("inserting account: %w", err)
	}

	s.logger.Debug("created account", "id", account.ID)
	return nil
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "PRIMARY KEY constraint failed")
}

// AccountExists reports whether an account with the given identity exists
func (s *SQLiteStore) AccountExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying account: %w", err)
	}
	return true, nil
}

// GetAccount retrieves an account by identity.
// Returns ErrNotFound if the account doesn't exist.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*Account, error) {
	var account Account
	var createdAtStr string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM accounts WHERE id = ?`, id,
	).Scan(&account.ID, &account.Name, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying account: %w", err)
	}

	account.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &account, nil
}

// CreateEntry appends a ledger entry. The owning account must exist.
func (s *SQLiteStore) CreateEntry(ctx context.Context, entry *Entry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	var comment sql.NullString
	if entry.Comment != "" {
		comment = sql.NullString{String: entry.Comment, Valid: true}
	}

	query := `
		INSERT INTO entries (id, account_id, date, amount, kind, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.AccountID,
		entry.Date.Format(DateLayout),
		entry.Amount.String(),
		string(entry.Kind),
		comment,
		entry.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}

	s.logger.Debug("created entry", "id", entry.ID, "account_id", entry.AccountID, "kind", entry.Kind)
	return nil
}

// ListEntries returns all entries of an account, newest date first
func (s *SQLiteStore) ListEntries(ctx context.Context, accountID string) ([]*Entry, error) {
	query := `
		SELECT id, account_id, date, amount, kind, comment, created_at
		FROM entries
		WHERE account_id = ?
		ORDER BY date DESC, created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			entry                            Entry
			dateStr, amountStr, createdAtStr string
			kind                             string
			comment                          sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.AccountID, &dateStr, &amountStr, &kind, &comment, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entry.Date, err = time.Parse(DateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing date: %w", err)
		}
		entry.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parsing amount: %w", err)
		}
		entry.CreatedAt, err = time.Parse(timestampLayout, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		entry.Kind = Kind(kind)
		entry.Comment = comment.String

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}
