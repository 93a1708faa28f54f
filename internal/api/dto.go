package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/deckwright/internal/deckservice"
	"github.com/starford/deckwright/internal/models"
	"github.com/starford/deckwright/internal/rules"
	"github.com/starford/deckwright/internal/scryfall"
)

var colorSymbols = []any{"W", "U", "B", "R", "G", "w", "u", "b", "r", "g"}

// BuildDeckRequest is the request body for building a deck.
type BuildDeckRequest struct {
	CommanderName string   `json:"commanderName" example:"Atraxa, Praetors' Voice" validate:"required"`
	RCMode        string   `json:"rc_mode" example:"hybrid"`
	Language      string   `json:"language" example:"DE"`
	AllowLoops    bool     `json:"allowLoops"`
	Colors        []string `json:"colors,omitempty" example:"W,U,B,G"`
	Playstyle     string   `json:"playstyle,omitempty"`
	Seed          *uint64  `json:"seed,omitempty"`
}

// Validate validates the build request.
func (r *BuildDeckRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CommanderName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.RCMode, validation.In(rules.RCModeStrict, rules.RCModeHybrid, rules.RCModeOffline)),
		validation.Field(&r.Language, validation.Length(0, 8)),
		validation.Field(&r.Colors, validation.Length(0, 5), validation.Each(validation.In(colorSymbols...))),
	)
}

// Domain returns the engine request.
func (r *BuildDeckRequest) Domain() models.DeckBuildRequest {
	return models.DeckBuildRequest{
		CommanderName: r.CommanderName,
		RCMode:        r.RCMode,
		Language:      r.Language,
		AllowLoops:    r.AllowLoops,
		Colors:        r.Colors,
		Playstyle:     r.Playstyle,
		Seed:          r.Seed,
	}
}

// ValidateDecklistRequest is the request body for validating a decklist.
type ValidateDecklistRequest struct {
	Decklist  string   `json:"decklist" example:"Commander\n1 Krenko, Mob Boss\nDeck\n1 Sol Ring" validate:"required"`
	Commander string   `json:"commander,omitempty" example:"Krenko, Mob Boss"`
	Colors    []string `json:"colors,omitempty" example:"R"`
	RCMode    string   `json:"rc_mode,omitempty" example:"strict"`
}

// Validate validates the request.
func (r *ValidateDecklistRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Decklist, validation.Required),
		validation.Field(&r.Colors, validation.Length(0, 5), validation.Each(validation.In(colorSymbols...))),
		validation.Field(&r.RCMode, validation.In(rules.RCModeStrict, rules.RCModeHybrid, rules.RCModeOffline)),
	)
}

// AnalysisRequest selects a stored deck or carries an explicit card list.
type AnalysisRequest struct {
	DeckID string   `json:"deck_id,omitempty" example:"3f0c..."`
	Deck   []string `json:"deck,omitempty"`
}

// Validate requires exactly one of deck_id and deck.
func (r *AnalysisRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DeckID, validation.When(len(r.Deck) == 0, validation.Required.Error("deck_id or deck is required"))),
		validation.Field(&r.Deck, validation.When(r.DeckID != "", validation.Empty.Error("give either deck_id or deck"))),
	)
}

// BuiltDeck is the build response (aliased from the domain layer).
type BuiltDeck = deckservice.BuiltDeck

// DeckListResponse wraps paginated deck listings.
type DeckListResponse struct {
	Decks []models.DeckRecord `json:"decks" validate:"required"`
	Total int                 `json:"total" example:"42" validate:"required"`
}

// AutocompleteResponse wraps name suggestions.
type AutocompleteResponse struct {
	Suggestions []string `json:"suggestions" validate:"required"`
}

// CardSearchResponse wraps one page of card search results.
type CardSearchResponse struct {
	Cards []scryfall.CardSummary `json:"cards" validate:"required"`
}

// DecksWithCardResponse lists decks containing a card.
type DecksWithCardResponse struct {
	Card  string   `json:"card" example:"Sol Ring"`
	Decks []string `json:"decks" validate:"required"`
}

// ExportListResponse lists export files.
type ExportListResponse struct {
	Exports []models.ExportMetadata `json:"exports" validate:"required"`
}
