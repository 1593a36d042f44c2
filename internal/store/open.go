// ABOUTME: Driver selection for the ledger store
// ABOUTME: Maps a configured driver name onto a Store implementation

package store

import (
	"context"
	"fmt"
)

// Driver names accepted by Open
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open creates the Store for driver. source is a file path for sqlite
// and a connection string for postgres.
func Open(ctx context.Context, driver, source string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLiteStore(source)
	case DriverPostgres:
		return NewPostgresStore(ctx, source)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
