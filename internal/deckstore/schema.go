// Package deckstore persists built decks in SQLite.
package deckstore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS decks (
	id             TEXT PRIMARY KEY,
	commander      TEXT NOT NULL,
	color_identity TEXT NOT NULL DEFAULT '[]',
	rc_mode        TEXT NOT NULL DEFAULT 'hybrid',
	language       TEXT NOT NULL DEFAULT '',
	validation     TEXT NOT NULL DEFAULT '',
	stats          TEXT NOT NULL DEFAULT '{}',
	notes          TEXT NOT NULL DEFAULT '[]',
	checksum       TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS deck_cards (
	deck_id  TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name     TEXT NOT NULL,
	PRIMARY KEY (deck_id, position)
);

CREATE INDEX IF NOT EXISTS idx_decks_commander ON decks(commander COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_deck_cards_name ON deck_cards(name COLLATE NOCASE);
`

// DB wraps a sql.DB with deck-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("deckstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("deckstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("deckstore: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
