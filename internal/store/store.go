// Package store provides SQLite-backed persistence for transaction records
// and classifier model state.
package store

import (
	"database/sql"
	"fmt"

	"salio/sms-ledger/internal/logging"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions
(
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    transaction_code TEXT NOT NULL,
    merchant TEXT NOT NULL,
    transaction_type TEXT NOT NULL,
    transaction_date TEXT NOT NULL,
    transaction_time TEXT NOT NULL,
    amount REAL NOT NULL,
    transaction_cost REAL NOT NULL,
    direction TEXT NOT NULL,
    message TEXT NOT NULL,
    category TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS model_state
(
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Store wraps the SQLite database holding transactions and model state.
type Store struct {
	db  *sql.DB
	log logging.Logger
}

// Open opens (or creates) the SQLite database at path and ensures the schema
// exists. Write transactions take the write lock immediately so an import
// batch is never partially visible to readers.
func Open(path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewMockLogger()
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logger.WithField("path", path).Debug("Database opened")
	return &Store{db: db, log: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
