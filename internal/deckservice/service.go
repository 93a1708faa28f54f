// Package deckservice coordinates the rule engine, the deck store, exports and
// card lookups.
package deckservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/starford/deckwright/internal/apperr"
	"github.com/starford/deckwright/internal/catalog"
	"github.com/starford/deckwright/internal/checksum"
	"github.com/starford/deckwright/internal/deckstore"
	"github.com/starford/deckwright/internal/models"
	"github.com/starford/deckwright/internal/parser"
	"github.com/starford/deckwright/internal/rules"
	"github.com/starford/deckwright/internal/scryfall"
	"github.com/starford/deckwright/internal/storage"
)

// ErrNoCommander is returned when a decklist to validate names no commander.
var ErrNoCommander = errors.New("decklist names no commander")

// Publisher receives deck and catalog change notifications.
type Publisher interface {
	PublishDeckEvent(kind, id, commander string)
	PublishCatalogReloaded(fingerprint string, cards int)
}

// CardLookup is the remote card database. *scryfall.Client satisfies it.
type CardLookup interface {
	Autocomplete(ctx context.Context, q string) ([]string, error)
	Named(ctx context.Context, name string, fuzzy bool) (*scryfall.Card, error)
	Search(ctx context.Context, q string, page int) ([]scryfall.Card, error)
}

// BuiltDeck is a build result together with the id it was stored under.
type BuiltDeck struct {
	ID string `json:"id"`
	*models.DeckBuildResult
	CreatedAt time.Time `json:"created_at"`
}

// CardResolution describes how the snapshot and catalog see one card name.
type CardResolution struct {
	Input         string        `json:"input"`
	Canonical     string        `json:"canonical"`
	Known         bool          `json:"known"`
	Banned        bool          `json:"banned"`
	Overridden    bool          `json:"overridden"`
	ColorIdentity []string      `json:"color_identity"`
	ManaValue     float64       `json:"mana_value"`
	Types         []string      `json:"types"`
	Roles         []models.Role `json:"roles"`
}

// ValidationReport is the outcome of validating a submitted decklist.
type ValidationReport struct {
	Commander string            `json:"commander"`
	RCMode    string            `json:"rc_mode"`
	Status    models.DeckStatus `json:"status"`
	Unparsed  []string          `json:"unparsed"`
}

// ExportResult describes a written export file.
type ExportResult struct {
	DeckID   string `json:"deck_id"`
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	Content  string `json:"content"`
}

// Service coordinates the engine, deck persistence and exports.
type Service struct {
	current atomic.Pointer[catalog.Loaded]
	reload  sync.Mutex

	src        catalog.Source
	engineOpts []rules.Option

	db      deckstore.Store
	exports storage.Provider
	cards   CardLookup
	events  Publisher
	logger  *slog.Logger

	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithSource records where the engine data came from so Reload can re-read it.
func WithSource(src catalog.Source, opts ...rules.Option) Option {
	return func(s *Service) {
		s.src = src
		s.engineOpts = opts
	}
}

// WithCardLookup enables remote card lookups.
func WithCardLookup(c CardLookup) Option {
	return func(s *Service) { s.cards = c }
}

// WithPublisher sets the change notification sink.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a deck service around an already loaded engine.
func NewService(loaded *catalog.Loaded, db deckstore.Store, exports storage.Provider, opts ...Option) *Service {
	s := &Service{
		db:      db,
		exports: exports,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(loaded)
	return s
}

// Engine returns the engine currently serving requests.
func (s *Service) Engine() *rules.Engine {
	return s.current.Load().Engine
}

// Loaded returns the current engine with its data fingerprint.
func (s *Service) Loaded() *catalog.Loaded {
	return s.current.Load()
}

// Build runs the engine for req and stores the result.
func (s *Service) Build(ctx context.Context, req models.DeckBuildRequest) (*BuiltDeck, error) {
	res, err := s.Engine().BuildDeck(req)
	if err != nil {
		return nil, err
	}

	rec := models.DeckRecord{
		ID:            s.newID(),
		Commander:     res.Commander,
		ColorIdentity: res.ColorIdentity,
		RCMode:        orDefault(req.RCMode, models.DefaultRCMode),
		Language:      orDefault(req.Language, models.DefaultLanguage),
		Validation:    res.Validation,
		Stats:         res.Stats,
		Notes:         res.Notes,
		Cards:         res.Decklist,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.db.SaveDeck(ctx, rec, checksum.Lines(res.Decklist)); err != nil {
		return nil, err
	}

	s.logger.Info("deck built",
		slog.String("id", rec.ID),
		slog.String("commander", rec.Commander),
		slog.Int("cards", len(rec.Cards)),
		slog.Int("notes", len(rec.Notes)))
	s.publish(models.DeckEventBuilt, rec.ID, rec.Commander)

	return &BuiltDeck{ID: rec.ID, DeckBuildResult: res, CreatedAt: rec.CreatedAt}, nil
}

// Get returns a stored deck with its cards.
func (s *Service) Get(ctx context.Context, id string) (*models.DeckRecord, error) {
	return s.db.GetDeck(ctx, id)
}

// Checksum returns the decklist checksum of a stored deck.
func (s *Service) Checksum(ctx context.Context, id string) (string, error) {
	cs, err := s.db.Checksum(ctx, id)
	if err != nil {
		return "", err
	}
	if cs == "" {
		return "", fmt.Errorf("deck %s: %w", id, apperr.ErrNotFound)
	}
	return cs, nil
}

// List returns stored decks, newest first.
func (s *Service) List(ctx context.Context, limit, offset int, commander string) ([]models.DeckRecord, int, error) {
	items, total, err := s.db.ListDecks(ctx, limit, offset, commander)
	if err != nil {
		return nil, 0, err
	}
	return nonNilSlice(items), total, nil
}

// Delete removes a stored deck. Its export, if any, is kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.db.DeleteDeck(ctx, id); err != nil {
		return err
	}
	s.publish(models.DeckEventDeleted, id, "")
	return nil
}

// DecksWithCard returns the ids of stored decks containing the card. Aliases
// are resolved first.
func (s *Service) DecksWithCard(ctx context.Context, name string) ([]string, error) {
	canonical := s.Engine().Snapshot().ResolveAlias(name)
	return s.db.DecksWithCard(ctx, canonical)
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// ExportName returns the export file name for a deck.
func ExportName(rec *models.DeckRecord) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(rec.Commander), "-"), "-")
	if slug == "" {
		slug = "deck"
	}
	short := rec.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return slug + "-" + short + storage.ExportExt
}

// Export writes the deck as Moxfield text into the exports directory. When
// ifMatch is set and an export already exists, its checksum must match.
func (s *Service) Export(ctx context.Context, id, ifMatch string) (*ExportResult, error) {
	rec, err := s.db.GetDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	name := ExportName(rec)
	content := []byte(parser.Format(rec.Cards))

	if ifMatch != "" {
		existing, err := s.exports.Read(name)
		switch {
		case err == nil && checksum.Sum(existing) != ifMatch:
			return nil, apperr.ErrConflict
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}
	if err := s.exports.Write(name, content); err != nil {
		return nil, fmt.Errorf("deckservice: export %s: %w", id, err)
	}

	s.logger.Info("deck exported", slog.String("id", id), slog.String("path", name))
	s.publish(models.DeckEventExported, id, rec.Commander)
	return &ExportResult{DeckID: id, Path: name, Checksum: checksum.Sum(content), Content: string(content)}, nil
}

// Exports lists written export files.
func (s *Service) Exports(_ context.Context) ([]models.ExportMetadata, error) {
	items, err := s.exports.List("")
	if err != nil {
		return nil, err
	}
	return nonNilSlice(items), nil
}

// ReadExport returns the contents of an export file.
func (s *Service) ReadExport(_ context.Context, name string) ([]byte, error) {
	if name != path.Base(name) || !strings.HasSuffix(name, storage.ExportExt) {
		return nil, apperr.ErrNotFound
	}
	data, err := s.exports.Read(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.ErrNotFound
	}
	return data, err
}

// Validate parses a decklist and checks it. commander, colors and rcMode
// override the values found in the list.
func (s *Service) Validate(_ context.Context, text, commander string, colors []string, rcMode string) (*ValidationReport, error) {
	list, err := parser.Parse([]byte(text))
	if err != nil {
		return nil, err
	}
	if commander == "" {
		commander = list.Commander
	}
	if commander == "" {
		return nil, ErrNoCommander
	}
	if len(colors) == 0 {
		colors = list.Header.Colors
	}
	if rcMode == "" {
		rcMode = orDefault(list.Header.RCMode, models.DefaultRCMode)
	}
	status := s.Engine().ValidateDecklist(commander, colors, rcMode, list.Entries)
	canonical, _ := s.Engine().ResolveCommander(commander, colors)
	return &ValidationReport{
		Commander: canonical,
		RCMode:    rcMode,
		Status:    status,
		Unparsed:  nonNilSlice(list.Unparsed),
	}, nil
}

// ParseNames parses decklist text into one name per card copy.
func (s *Service) ParseNames(text string) ([]string, error) {
	list, err := parser.Parse([]byte(text))
	if err != nil {
		return nil, err
	}
	return list.Names(), nil
}

// Analyze describes a decklist given as card names.
func (s *Service) Analyze(_ context.Context, decklist []string) models.DeckAnalysis {
	return s.Engine().Analyze(decklist)
}

// Resolve reports how a card name is seen by the snapshot and the catalog.
func (s *Service) Resolve(_ context.Context, name string) CardResolution {
	e := s.Engine()
	canonical, card, known := e.Lookup(name)
	o, overridden := e.Snapshot().Override(canonical)
	res := CardResolution{
		Input:         name,
		Canonical:     canonical,
		Known:         known,
		Banned:        e.Snapshot().IsBanned(canonical),
		Overridden:    overridden && !o.IsZero(),
		ColorIdentity: []string{},
		Types:         []string{},
		Roles:         []models.Role{},
	}
	if known {
		res.ColorIdentity = nonNilSlice(card.ColorIdentity.Strings())
		res.ManaValue = card.ManaValue
		res.Types = nonNilSlice(card.Types)
		res.Roles = nonNilSlice(card.Roles.Roles())
	}
	return res
}

// Autocomplete suggests card names. Without a remote lookup, or when it
// fails, the local catalog is searched.
func (s *Service) Autocomplete(ctx context.Context, q string) ([]string, error) {
	if s.cards != nil {
		names, err := s.cards.Autocomplete(ctx, q)
		if err == nil {
			return names, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("autocomplete: remote lookup failed, using catalog", slog.String("error", err.Error()))
	}
	return s.Engine().SearchNames(q, 20), nil
}

// CardByName returns a card summary from the remote lookup, falling back to
// the local catalog.
func (s *Service) CardByName(ctx context.Context, name string, fuzzy bool) (*scryfall.CardSummary, error) {
	if s.cards != nil {
		card, err := s.cards.Named(ctx, name, fuzzy)
		if err == nil {
			sum := card.Summary()
			return &sum, nil
		}
		if scryfall.IsNotFound(err) {
			return nil, fmt.Errorf("card %q: %w", name, apperr.ErrNotFound)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("card lookup: remote lookup failed, using catalog", slog.String("error", err.Error()))
	}

	canonical, card, ok := s.Engine().Lookup(name)
	if !ok && fuzzy {
		if hits := s.Engine().SearchNames(name, 1); len(hits) == 1 {
			canonical, card, ok = s.Engine().Lookup(hits[0])
		}
	}
	if !ok {
		return nil, fmt.Errorf("card %q: %w", name, apperr.ErrNotFound)
	}
	sum := localSummary(canonical, card)
	return &sum, nil
}

// SearchCards runs a full-text search against the remote lookup. Without
// one, or when it fails, the first page is answered from catalog names.
func (s *Service) SearchCards(ctx context.Context, q string, page int) ([]scryfall.CardSummary, error) {
	if s.cards != nil {
		cards, err := s.cards.Search(ctx, q, page)
		if err == nil {
			out := make([]scryfall.CardSummary, 0, len(cards))
			for i := range cards {
				out = append(out, cards[i].Summary())
			}
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("card search: remote lookup failed, using catalog", slog.String("error", err.Error()))
	}

	out := []scryfall.CardSummary{}
	if page > 1 {
		return out, nil
	}
	for _, name := range s.Engine().SearchNames(q, 20) {
		if canonical, card, ok := s.Engine().Lookup(name); ok {
			out = append(out, localSummary(canonical, card))
		}
	}
	return out, nil
}

func localSummary(name string, card models.OracleCard) scryfall.CardSummary {
	return scryfall.CardSummary{
		Name:          name,
		TypeLine:      strings.Join(card.Types, " "),
		ColorIdentity: nonNilSlice(card.ColorIdentity.Strings()),
	}
}

// Reload re-reads the data files and swaps in a new engine. It reports false
// when the files are unchanged.
func (s *Service) Reload() (bool, error) {
	s.reload.Lock()
	defer s.reload.Unlock()

	loaded, err := catalog.Load(s.src, s.logger, s.engineOpts...)
	if err != nil {
		return false, err
	}
	if loaded.Fingerprint() == s.current.Load().Fingerprint() {
		s.logger.Debug("catalog: unchanged, keeping engine")
		return false, nil
	}
	s.current.Store(loaded)
	s.logger.Info("catalog: engine swapped", slog.String("fingerprint", loaded.Fingerprint()))
	if s.events != nil {
		s.events.PublishCatalogReloaded(loaded.Fingerprint(), len(loaded.Engine.Cards()))
	}
	return true, nil
}

func (s *Service) publish(kind, id, commander string) {
	if s.events != nil {
		s.events.PublishDeckEvent(kind, id, commander)
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
