// Package sqlitestore implements the store repositories on a local SQLite
// database, the default backend for single-machine use.
package sqlitestore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	user_id      TEXT NOT NULL,
	account_id   TEXT NOT NULL,
	account_name TEXT NOT NULL,
	account_type TEXT NOT NULL,
	balance      REAL NOT NULL DEFAULT 0,
	version      INTEGER NOT NULL DEFAULT 0,
	active       INTEGER NOT NULL DEFAULT 1,
	created_ts   TEXT NOT NULL,
	updated_ts   TEXT NOT NULL,
	PRIMARY KEY (user_id, account_id)
);

CREATE TABLE IF NOT EXISTS transactions (
	user_id        TEXT NOT NULL,
	transaction_id TEXT NOT NULL,
	account_id     TEXT NOT NULL,
	amount         REAL NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL DEFAULT '',
	tx_type        TEXT NOT NULL,
	tx_date        TEXT NOT NULL,
	recurring      INTEGER NOT NULL DEFAULT 0,
	series_id      TEXT NOT NULL DEFAULT '',
	frequency      TEXT NOT NULL DEFAULT '',
	start_date     TEXT NOT NULL DEFAULT '',
	created_ts     TEXT NOT NULL,
	updated_ts     TEXT NOT NULL,
	PRIMARY KEY (user_id, transaction_id)
);

CREATE INDEX IF NOT EXISTS idx_transactions_recurring
	ON transactions (recurring) WHERE recurring = 1;
CREATE INDEX IF NOT EXISTS idx_transactions_account
	ON transactions (user_id, account_id);
`

// Store owns the SQLite handle and hands out the repositories.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and bootstraps the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("Open: opening %s: %w", path, err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Accounts returns the account repository backed by this database.
func (s *Store) Accounts() *AccountStore {
	return &AccountStore{db: s.db}
}

// Transactions returns the transaction repository backed by this database.
func (s *Store) Transactions() *TransactionStore {
	return &TransactionStore{db: s.db}
}
