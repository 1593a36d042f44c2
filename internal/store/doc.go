// Package store provides persistent storage for the finance bot ledger.
//
// # Architecture
//
// The Store interface covers the two entities the bot persists:
//
//   - Account: a registered user, keyed by the conversation identity
//   - Entry: an income or expense record owned by one account
//
// Entries are append-only. Amounts are non-negative decimals in the base
// currency; the Kind field carries the direction.
//
// # Implementations
//
//   - SQLiteStore: modernc.org/sqlite, the default for single-node installs
//   - PostgresStore: lib/pq, for shared deployments
//   - MockStore: in-memory, with error injection for tests
//
// Open picks an implementation from the configured driver name:
//
//	s, err := store.Open(ctx, "sqlite", "/var/lib/finance-bot/ledger.db")
//
// # Ordering
//
// ListEntries returns entries newest date first, ties broken by creation
// time (newest first). Every implementation honours the same order.
//
// # Errors
//
//   - ErrAccountExists: CreateAccount on an identity that is already registered
//   - ErrNotFound: GetAccount on an unknown identity
package store
