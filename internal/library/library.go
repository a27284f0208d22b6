package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sableglen/resonate/internal/shared"
)

// Store provides access to a library's metadata database.
type Store struct {
	db   *sql.DB
	root string
}

// Open opens (creating if necessary) the metadata database for the library
// rooted at root and brings its schema up to date.
func Open(root string, cfg *shared.Config) (*Store, error) {
	dataDir := filepath.Join(root, cfg.Library.DataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := shared.NewDatabase(filepath.Join(dataDir, cfg.Library.DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	shared.ConfigureDatabase(db, cfg.Library.MaxOpenConns, cfg.Library.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate library database: %w", err)
	}

	return &Store{db: db, root: root}, nil
}

// OpenDB wraps an existing database connection, running migrations on it.
// Used by tests with in-memory databases.
func OpenDB(db *sql.DB, root string) (*Store, error) {
	if err := shared.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to migrate library database: %w", err)
	}
	return &Store{db: db, root: root}, nil
}

// Root returns the library root the store was opened against.
func (s *Store) Root() string { return s.root }

// Close releases the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }
