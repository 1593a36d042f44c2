// ABOUTME: PostgreSQL implementation of the Store interface using lib/pq
// ABOUTME: Mirrors the SQLite schema with native DATE and NUMERIC columns

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// PostgresStore implements the Store interface on PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore connects to the database at dsn, verifies the connection
// and creates the schema if needed.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	logger := slog.Default().With("component", "store", "driver", "postgres")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &PostgresStore{db: db, logger: logger}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("Postgres store initialized")
	return s, nil
}

func (s *PostgresStore) createSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS accounts (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS entries (
			id         TEXT PRIMARY KEY,
			account_id TEXT NOT NULL REFERENCES accounts(id),
			date       DATE NOT NULL,
			amount     NUMERIC(14, 2) NOT NULL CHECK (amount >= 0),
			kind       TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
			comment    TEXT,
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_account_date
			ON entries(account_id, date DESC);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.logger.Info("closing Postgres store")
	return s.db.Close()
}

// CreateAccount inserts a new account, returning ErrAccountExists on duplicates
func (s *PostgresStore) CreateAccount(ctx context.Context, account *Account) error {
	if account.ID == "" {
		return fmt.Errorf("account id is required")
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("account name is required")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, created_at) VALUES ($1, $2, $3)`,
		account.ID, account.Name, account.CreatedAt.UTC(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrAccountExists
		}
		return fmt.Errorf("inserting account: %w", err)
	}
	return nil
}

// AccountExists reports whether the identity has an account
func (s *PostgresStore) AccountExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("querying account: %w", err)
	}
	return exists, nil
}

// GetAccount retrieves an account, returning ErrNotFound when absent
func (s *PostgresStore) GetAccount(ctx context.Context, id string) (*Account, error) {
	var account Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM accounts WHERE id = $1`, id,
	).Scan(&account.ID, &account.Name, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying account: %w", err)
	}
	return &account, nil
}

// CreateEntry appends a ledger entry
func (s *PostgresStore) CreateEntry(ctx context.Context, entry *Entry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	var comment sql.NullString
	if entry.Comment != "" {
		comment = sql.NullString{String: entry.Comment, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (id, account_id, date, amount, kind, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID,
		entry.AccountID,
		entry.Date.Format(DateLayout),
		entry.Amount,
		string(entry.Kind),
		comment,
		entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}

// ListEntries returns all entries of an account, newest date first
func (s *PostgresStore) ListEntries(ctx context.Context, accountID string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, date, amount, kind, comment, created_at
		FROM entries
		WHERE account_id = $1
		ORDER BY date DESC, created_at DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			entry   Entry
			kind    string
			comment sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Date, &entry.Amount, &kind, &comment, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
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
