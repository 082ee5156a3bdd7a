// Package sqlite stores transcripts in SQLite through mattn/go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"

	"github.com/papercomputeco/uistream/pkg/storage/sqldriver"
)

// Memory opens a private in-memory database.
const Memory = ":memory:"

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

// Driver implements storage.Driver using SQLite.
type Driver struct {
	*sqldriver.Driver
}

// NewDriver opens the database file at path, or Memory, and creates the
// transcripts table when missing.
func NewDriver(ctx context.Context, path string) (*Driver, error) {
	d, err := sqldriver.Open(ctx, "sqlite3", dialect.SQLite, path, func(ctx context.Context, db *sql.DB) error {
		// Every connection to Memory is its own database, and SQLite
		// serializes writers anyway.
		db.SetMaxOpenConns(1)

		for _, p := range pragmas {
			if _, err := db.ExecContext(ctx, p); err != nil {
				return fmt.Errorf("failed to apply %q: %w", p, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Driver{Driver: d}, nil
}
