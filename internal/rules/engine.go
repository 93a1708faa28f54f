package rules

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/deckwright/internal/apperr"
	"github.com/starford/deckwright/internal/models"
)

// defaultCommanderTypes are used whenever a commander record is synthesized.
var defaultCommanderTypes = []string{"Legendary", "Creature"}

// genericCommanderManaValue is the mana value of a commander missing from
// both the snapshot and the catalog.
const genericCommanderManaValue = 4

// InvalidCommanderError is returned when the resolved commander is banned.
type InvalidCommanderError struct {
	Name string
}

func (e *InvalidCommanderError) Error() string {
	return fmt.Sprintf("commander %q is banned in the snapshot", e.Name)
}

// Unwrap lets callers match apperr.ErrInvalidCommander.
func (e *InvalidCommanderError) Unwrap() error {
	return apperr.ErrInvalidCommander
}

// Engine builds Commander decks from a rule table, a snapshot and a catalog.
// It never mutates its inputs after construction and is safe for concurrent use.
type Engine struct {
	rules           CoreRules
	snapshot        *Snapshot
	cards           []models.OracleCard
	byName          map[string]models.OracleCard
	shuffler        Shuffler
	allowDuplicates bool
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithShuffler replaces the default random source. s is serialized internally,
// so a plain *rand.Rand may be passed.
func WithShuffler(s Shuffler) Option {
	return func(e *Engine) {
		e.shuffler = &lockedShuffler{s: s}
	}
}

// WithDuplicates allows the same non-basic card to be picked for more than one
// role. By default every non-basic name appears at most once.
func WithDuplicates(allow bool) Option {
	return func(e *Engine) {
		e.allowDuplicates = allow
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New constructs an engine. The card slice is copied.
func New(rules CoreRules, snapshot *Snapshot, cards []models.OracleCard, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if snapshot == nil {
		snapshot = EmptySnapshot()
	}
	e := &Engine{
		rules:    rules,
		snapshot: snapshot,
		cards:    append([]models.OracleCard(nil), cards...),
		byName:   make(map[string]models.OracleCard, len(cards)),
		shuffler: globalShuffler{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for i, c := range e.cards {
		if o, ok := snapshot.Override(c.Name); ok {
			c = applyOverride(c, o)
			e.cards[i] = c
		}
		e.byName[models.NameKey(c.Name)] = c
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Rules returns the rule table.
func (e *Engine) Rules() CoreRules { return e.rules }

// Snapshot returns the snapshot.
func (e *Engine) Snapshot() *Snapshot { return e.snapshot }

// Cards returns the catalog. Callers must not modify it.
func (e *Engine) Cards() []models.OracleCard { return e.cards }

// Card looks a name up in the catalog, ignoring case.
func (e *Engine) Card(name string) (models.OracleCard, bool) {
	c, ok := e.byName[models.NameKey(name)]
	return c, ok
}

// Lookup resolves an alias and returns the effective record of the card,
// snapshot override included.
func (e *Engine) Lookup(name string) (string, models.OracleCard, bool) {
	canonical := e.snapshot.ResolveAlias(name)
	c, ok := e.cardInfo(canonical)
	return canonical, c, ok
}

// SearchNames returns up to limit catalog names containing q, ignoring case.
// Prefix matches come first.
func (e *Engine) SearchNames(q string, limit int) []string {
	key := models.NameKey(q)
	out := []string{}
	if key == "" {
		return out
	}
	var rest []string
	for _, c := range e.cards {
		n := models.NameKey(c.Name)
		switch {
		case strings.HasPrefix(n, key):
			out = append(out, c.Name)
		case strings.Contains(n, key):
			rest = append(rest, c.Name)
		}
	}
	out = append(out, rest...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ResolveCommander maps a raw commander name to its canonical name and card
// record. It never fails: missing data yields a synthetic record. colors is
// used whenever the resolved record has an empty color identity.
func (e *Engine) ResolveCommander(name string, colors []string) (string, models.OracleCard) {
	resolved := e.snapshot.ResolveAlias(name)

	var card models.OracleCard
	if o, ok := e.snapshot.Override(resolved); ok && !o.IsZero() {
		card = overrideCard(resolved, o)
	} else if c, ok := e.Card(resolved); ok {
		card = c
	} else {
		card = models.OracleCard{
			Name:      resolved,
			ManaValue: genericCommanderManaValue,
			Types:     defaultCommanderTypes,
			Roles:     models.NewRoleSet(models.RoleCommander),
		}
	}
	if len(card.ColorIdentity) == 0 {
		card.ColorIdentity = models.NewColorIdentity(colors...)
	}
	return resolved, card
}

func overrideCard(name string, o Override) models.OracleCard {
	c := models.OracleCard{
		Name:          name,
		ColorIdentity: models.NewColorIdentity(o.ColorIdentity...),
		Types:         defaultCommanderTypes,
		Roles:         models.NewRoleSet(models.RoleCommander),
	}
	if o.ManaValue != nil {
		c.ManaValue = *o.ManaValue
	}
	if o.Types != nil {
		c.Types = o.Types
	}
	return c
}

// cardInfo returns the effective record for a canonical card name. Catalog
// entries already carry their overrides; override-only cards are synthesized.
func (e *Engine) cardInfo(name string) (models.OracleCard, bool) {
	if c, ok := e.Card(name); ok {
		return c, true
	}
	o, ok := e.snapshot.Override(name)
	if !ok || o.IsZero() {
		return models.OracleCard{}, false
	}
	return applyOverride(models.OracleCard{Name: name}, o), true
}

// applyOverride merges the set fields of o over c.
func applyOverride(c models.OracleCard, o Override) models.OracleCard {
	if o.ColorIdentity != nil {
		c.ColorIdentity = models.NewColorIdentity(o.ColorIdentity...)
	}
	if o.ManaValue != nil {
		c.ManaValue = *o.ManaValue
	}
	if o.Types != nil {
		c.Types = o.Types
	}
	return c
}

// BuildDeck assembles a 100-card decklist for req. The only error is an
// *InvalidCommanderError for a banned commander; shortfalls become notes.
func (e *Engine) BuildDeck(req models.DeckBuildRequest) (*models.DeckBuildResult, error) {
	name, commander := e.ResolveCommander(req.CommanderName, req.Colors)
	if e.snapshot.IsBanned(name) {
		return nil, &InvalidCommanderError{Name: name}
	}

	rcMode := req.RCMode
	if rcMode == "" {
		rcMode = models.DefaultRCMode
	}

	ci := commander.ColorIdentity
	if ci == nil {
		ci = models.ColorIdentity{}
	}
	pool := e.filterPool(ci)

	deck := make([]string, 0, models.DeckSize)
	deck = append(deck, name)
	var notes []string

	alloc := e.newAllocator(pool, ci, name, req.Seed)
	for _, slot := range e.rules.TargetSlots {
		picked := alloc.pick(slot.Role, slot.Count)
		if len(picked) < slot.Count {
			e.logger.Debug("role shortfall",
				slog.String("commander", name),
				slog.String("slot", slot.Name),
				slog.Int("picked", len(picked)),
				slog.Int("target", slot.Count))
			notes = append(notes, fmt.Sprintf("%s: %d of %d slots filled from the card pool", slot.Name, len(picked), slot.Count))
		}
		deck = append(deck, picked...)
	}

	if remaining := models.DeckSize - len(deck); remaining > 0 {
		deck = append(deck, BasicLands(ci, remaining)...)
	}
	if len(deck) > models.DeckSize {
		deck = deck[:models.DeckSize]
	}

	validationLine := e.rules.ValidationLine(rcMode)
	stats := e.Stats(deck)
	if len(deck) != models.DeckSize {
		notes = append(notes, fmt.Sprintf("deck size %d instead of %d: not enough cards were found", len(deck), models.DeckSize))
	}
	if notes == nil {
		notes = []string{}
	}

	return &models.DeckBuildResult{
		Commander:     name,
		ColorIdentity: ci,
		Decklist:      deck,
		Validation:    validationLine,
		Stats:         stats,
		Notes:         notes,
	}, nil
}
