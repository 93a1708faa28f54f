package deckstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/deckwright/internal/apperr"
	"github.com/starford/deckwright/internal/models"
)

// SaveDeck inserts a deck and its cards within a transaction. Saving an id
// that already exists returns apperr.ErrAlreadyExists.
func (db *DB) SaveDeck(ctx context.Context, d models.DeckRecord, checksum string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deckstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	ciJSON, _ := json.Marshal(d.ColorIdentity.Strings())
	statsJSON, _ := json.Marshal(d.Stats)
	notes := d.Notes
	if notes == nil {
		notes = []string{}
	}
	notesJSON, _ := json.Marshal(notes)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO decks (id, commander, color_identity, rc_mode, language, validation, stats, notes, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.Commander, string(ciJSON), d.RCMode, d.Language, d.Validation,
		string(statsJSON), string(notesJSON), checksum, d.CreatedAt.UTC())
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("deckstore: deck %s: %w", d.ID, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("deckstore: insert deck: %w", err)
	}

	if len(d.Cards) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO deck_cards (deck_id, position, name) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("deckstore: prepare card insert: %w", err)
		}
		defer stmt.Close()
		for i, name := range d.Cards {
			if _, err := stmt.ExecContext(ctx, d.ID, i, name); err != nil {
				return fmt.Errorf("deckstore: insert card: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetDeck returns a deck with its cards in build order.
func (db *DB) GetDeck(ctx context.Context, id string) (*models.DeckRecord, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, commander, color_identity, rc_mode, language, validation, stats, notes, created_at
		FROM decks WHERE id = ?`, id)
	d, err := scanDeck(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deckstore: deck %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("deckstore: get deck: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT name FROM deck_cards WHERE deck_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("deckstore: get cards: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		d.Cards = append(d.Cards, name)
	}
	return d, rows.Err()
}

// ListDecks returns decks newest first without their cards, plus the total
// count. A non-empty commander filters case-insensitively.
func (db *DB) ListDecks(ctx context.Context, limit, offset int, commander string) ([]models.DeckRecord, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	var args []any
	if commander != "" {
		where = ` WHERE commander = ? COLLATE NOCASE`
		args = append(args, strings.TrimSpace(commander))
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM decks`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("deckstore: count decks: %w", err)
	}

	q := `SELECT id, commander, color_identity, rc_mode, language, validation, stats, notes, created_at
		FROM decks` + where + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	rows, err := db.conn.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("deckstore: list decks: %w", err)
	}
	defer rows.Close()

	var out []models.DeckRecord
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

// DeleteDeck removes a deck and, through the foreign key, its cards.
func (db *DB) DeleteDeck(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deckstore: delete deck: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deckstore: deck %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// DecksWithCard returns the ids of every stored deck containing name.
func (db *DB) DecksWithCard(ctx context.Context, name string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT c.deck_id FROM deck_cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE c.name = ? COLLATE NOCASE
		ORDER BY d.created_at DESC, c.deck_id`, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("deckstore: decks with card: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Checksum returns the stored decklist checksum, or empty string if the deck
// does not exist.
func (db *DB) Checksum(ctx context.Context, id string) (string, error) {
	var cs string
	err := db.conn.QueryRowContext(ctx, `SELECT checksum FROM decks WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("deckstore: checksum: %w", err)
	}
	return cs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeck(s scanner) (*models.DeckRecord, error) {
	var (
		d                    models.DeckRecord
		ciJSON, stats, notes string
	)
	if err := s.Scan(&d.ID, &d.Commander, &ciJSON, &d.RCMode, &d.Language, &d.Validation, &stats, &notes, &d.CreatedAt); err != nil {
		return nil, err
	}
	var ci []string
	if err := json.Unmarshal([]byte(ciJSON), &ci); err != nil {
		return nil, fmt.Errorf("deckstore: decode deck %s: %w", d.ID, err)
	}
	d.ColorIdentity = models.NewColorIdentity(ci...)
	if err := json.Unmarshal([]byte(stats), &d.Stats); err != nil {
		return nil, fmt.Errorf("deckstore: decode deck %s: %w", d.ID, err)
	}
	if err := json.Unmarshal([]byte(notes), &d.Notes); err != nil {
		return nil, fmt.Errorf("deckstore: decode deck %s: %w", d.ID, err)
	}
	return &d, nil
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}
