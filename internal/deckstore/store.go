package deckstore

import (
	"context"

	"github.com/starford/deckwright/internal/models"
)

// Store defines deck persistence. Consumers depend on this interface rather
// than the concrete *DB type.
type Store interface {
	SaveDeck(ctx context.Context, d models.DeckRecord, checksum string) error
	GetDeck(ctx context.Context, id string) (*models.DeckRecord, error)
	ListDecks(ctx context.Context, limit, offset int, commander string) ([]models.DeckRecord, int, error)
	DeleteDeck(ctx context.Context, id string) error
	DecksWithCard(ctx context.Context, name string) ([]string, error)
	Checksum(ctx context.Context, id string) (string, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
