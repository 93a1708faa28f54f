package deckservice

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/deckwright/internal/apperr"
	"github.com/starford/deckwright/internal/catalog"
	"github.com/starford/deckwright/internal/checksum"
	"github.com/starford/deckwright/internal/models"
	"github.com/starford/deckwright/internal/parser"
	"github.com/starford/deckwright/internal/scryfall"
	"github.com/starford/deckwright/internal/testutil"
)

type recorder struct {
	mu       sync.Mutex
	decks    []string
	reloaded []string
}

func (r *recorder) PublishDeckEvent(kind, id, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decks = append(r.decks, kind+":"+id)
}

func (r *recorder) PublishCatalogReloaded(fp string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloaded = append(r.reloaded, fp)
}

type fakeLookup struct {
	names []string
	card  *scryfall.Card
	cards []scryfall.Card
	err   error
}

func (f *fakeLookup) Autocomplete(context.Context, string) ([]string, error) {
	return f.names, f.err
}

func (f *fakeLookup) Named(context.Context, string, bool) (*scryfall.Card, error) {
	return f.card, f.err
}

func (f *fakeLookup) Search(context.Context, string, int) ([]scryfall.Card, error) {
	return f.cards, f.err
}

func newTestService(t *testing.T, opts ...Option) (*Service, *recorder, catalog.Source) {
	t.Helper()
	src := testutil.WriteData(t)
	_, exports := testutil.TestExports(t)
	rec := &recorder{}
	opts = append([]Option{
		WithSource(src, testutil.EngineOptions()...),
		WithPublisher(rec),
		WithLogger(testutil.Logger()),
	}, opts...)
	svc := NewService(testutil.TestLoaded(t, src), testutil.TestDB(t), exports, opts...)
	return svc, rec, src
}

func TestBuild_PersistsDeck(t *testing.T) {
	svc, rec, _ := newTestService(t)
	ctx := context.Background()

	built, err := svc.Build(ctx, models.DeckBuildRequest{CommanderName: "atraxa", RCMode: "strict"})
	require.NoError(t, err)
	require.NotEmpty(t, built.ID)
	assert.Equal(t, "Atraxa, Praetors' Voice", built.Commander)
	assert.Len(t, built.Decklist, models.DeckSize)

	stored, err := svc.Get(ctx, built.ID)
	require.NoError(t, err)
	assert.Equal(t, built.Decklist, stored.Cards)
	assert.Equal(t, "strict", stored.RCMode)
	assert.Equal(t, models.DefaultLanguage, stored.Language)
	assert.Equal(t, built.Stats, stored.Stats)

	cs, err := svc.db.Checksum(ctx, built.ID)
	require.NoError(t, err)
	assert.Equal(t, checksum.Lines(built.Decklist), cs)

	assert.Equal(t, []string{models.DeckEventBuilt + ":" + built.ID}, rec.decks)
}

func TestBuild_BannedCommanderNotStored(t *testing.T) {
	svc, rec, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Build(ctx, models.DeckBuildRequest{CommanderName: "Golos, Tireless Pilgrim"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidCommander))

	_, total, err := svc.List(ctx, 10, 0, "")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rec.decks)
}

func TestListDeleteAndDecksWithCard(t *testing.T) {
	svc, rec, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Build(ctx, models.DeckBuildRequest{CommanderName: "atraxa"})
	require.NoError(t, err)
	b, err := svc.Build(ctx, models.DeckBuildRequest{CommanderName: "Sonic"})
	require.NoError(t, err)

	items, total, err := svc.List(ctx, 10, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	ids, err := svc.DecksWithCard(ctx, "sol ring")
	require.NoError(t, err)
	assert.Contains(t, ids, a.ID)

	require.NoError(t, svc.Delete(ctx, b.ID))
	_, err = svc.Get(ctx, b.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, b.ID), apperr.ErrNotFound)
	assert.Contains(t, rec.decks, models.DeckEventDeleted+":"+b.ID)
}

func TestExport(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	built, err := svc.Build(ctx, models.DeckBuildRequest{CommanderName: "atraxa"})
	require.NoError(t, err)

	res, err := svc.Export(ctx, built.ID, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Path, "atraxa-praetors-voice-"), res.Path)
	assert.True(t, strings.HasPrefix(res.Content, "Commander\n1 Atraxa, Praetors' Voice\n"))

	data, err := svc.ReadExport(ctx, res.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Content, string(data))

	list, err := parser.Parse(data)
	require.NoError(t, err)
	assert.Len(t, list.Names(), models.DeckSize)

	_, err = svc.Export(ctx, built.ID, "stale")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = svc.Export(ctx, built.ID, res.Checksum)
	assert.NoError(t, err)

	exports, err := svc.Exports(ctx)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, res.Path, exports[0].Path)

	_, err = svc.Export(ctx, "missing", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReadExport_RejectsPaths(t *testing.T) {
	svc, _, _ := newTestService(t)
	for _, name := range []string{"../decks.db", "sub/x.txt", "notes.md", "missing.txt"} {
		_, err := svc.ReadExport(context.Background(), name)
		assert.ErrorIs(t, err, apperr.ErrNotFound, name)
	}
}

func TestValidate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	built, err := svc.Build(ctx, models.DeckBuildRequest{CommanderName: "atraxa"})
	require.NoError(t, err)

	report, err := svc.Validate(ctx, parser.Format(built.Decklist), "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Atraxa, Praetors' Voice", report.Commander)
	assert.Equal(t, models.DefaultRCMode, report.RCMode)
	assert.True(t, report.Status.IsValid100)
	assert.Equal(t, svc.Engine().Rules().ValidationLine(models.DefaultRCMode), report.Status.LastValidationMessage)

	report, err = svc.Validate(ctx, "---\nrc_mode: offline\n---\n1 Lightning Bolt\n1 Cyclonic Rift\n", "sonic", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "offline", report.RCMode)
	assert.True(t, report.Status.HasBannedCards)
	assert.False(t, report.Status.IsValid100)

	_, err = svc.Validate(ctx, "1 Sol Ring\n", "", nil, "")
	assert.ErrorIs(t, err, ErrNoCommander)
	_, err = svc.Validate(ctx, "", "sonic", nil, "")
	assert.ErrorIs(t, err, parser.ErrEmptyDecklist)
}

func TestValidate_SyntheticCommanderColors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	built, err := svc.Build(ctx, models.DeckBuildRequest{CommanderName: "Mono Blue", Colors: []string{"U"}})
	require.NoError(t, err)
	text := parser.Format(built.Decklist)

	report, err := svc.Validate(ctx, text, "", []string{"U"}, "")
	require.NoError(t, err)
	assert.False(t, report.Status.HasCIViolations, "violations: %v", report.Status.CIViolations)

	report, err = svc.Validate(ctx, "---\ncolors: [U]\n---\n"+text, "", nil, "")
	require.NoError(t, err)
	assert.False(t, report.Status.HasCIViolations, "violations: %v", report.Status.CIViolations)

	report, err = svc.Validate(ctx, text, "", nil, "")
	require.NoError(t, err)
	assert.True(t, report.Status.HasCIViolations)
}

func TestResolve(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	r := svc.Resolve(ctx, "sonic")
	assert.Equal(t, "Sonic the Hedgehog", r.Canonical)
	assert.True(t, r.Known)
	assert.True(t, r.Overridden)
	assert.Equal(t, []string{"U", "R"}, r.ColorIdentity)

	r = svc.Resolve(ctx, "cyclonic rift")
	assert.True(t, r.Banned)
	assert.True(t, r.Known)
	assert.Equal(t, []models.Role{models.RoleInteraction}, r.Roles)

	r = svc.Resolve(ctx, "Nothing")
	assert.False(t, r.Known)
	assert.Equal(t, []string{}, r.ColorIdentity)
}

func TestAutocomplete_FallsBackToCatalog(t *testing.T) {
	svc, _, _ := newTestService(t, WithCardLookup(&fakeLookup{err: errors.New("offline")}))
	names, err := svc.Autocomplete(context.Background(), "sol")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sol Ring"}, names)

	svc, _, _ = newTestService(t, WithCardLookup(&fakeLookup{names: []string{"Sol Ring", "Solemn Simulacrum"}}))
	names, err = svc.Autocomplete(context.Background(), "sol")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestCardByName(t *testing.T) {
	svc, _, _ := newTestService(t, WithCardLookup(&fakeLookup{err: &scryfall.NotFoundError{URL: "x"}}))
	_, err := svc.CardByName(context.Background(), "Nope", true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	svc, _, _ = newTestService(t)
	card, err := svc.CardByName(context.Background(), "bolt", false)
	require.NoError(t, err)
	assert.Equal(t, "Lightning Bolt", card.Name)
	assert.Equal(t, []string{"R"}, card.ColorIdentity)

	card, err = svc.CardByName(context.Background(), "craterho", true)
	require.NoError(t, err)
	assert.Equal(t, "Craterhoof Behemoth", card.Name)
}

func TestSearchCards(t *testing.T) {
	ctx := context.Background()
	remote := &fakeLookup{cards: []scryfall.Card{{Name: "Sol Ring", TypeLine: "Artifact"}}}
	svc, _, _ := newTestService(t, WithCardLookup(remote))
	cards, err := svc.SearchCards(ctx, "t:artifact", 1)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Sol Ring", cards[0].Name)
	assert.Equal(t, []string{}, cards[0].ColorIdentity)

	svc, _, _ = newTestService(t, WithCardLookup(&fakeLookup{err: errors.New("offline")}))
	cards, err = svc.SearchCards(ctx, "crater", 1)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Craterhoof Behemoth", cards[0].Name)
	assert.Equal(t, []string{"G"}, cards[0].ColorIdentity)

	cards, err = svc.SearchCards(ctx, "crater", 2)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestChecksum(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	built, err := svc.Build(ctx, models.DeckBuildRequest{CommanderName: "atraxa"})
	require.NoError(t, err)

	cs, err := svc.Checksum(ctx, built.ID)
	require.NoError(t, err)
	assert.Equal(t, checksum.Lines(built.Decklist), cs)

	_, err = svc.Checksum(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReload(t *testing.T) {
	svc, rec, src := newTestService(t)
	before := svc.Engine()

	changed, err := svc.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, before, svc.Engine())

	doc := strings.Replace(testutil.SnapshotJSON, `"bolt": "Lightning Bolt"`, `"bolt": "Lightning Bolt", "rhystic": "Rhystic Study"`, 1)
	require.NoError(t, os.WriteFile(src.SnapshotPath, []byte(doc), 0o644))

	changed, err = svc.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotSame(t, before, svc.Engine())
	assert.Equal(t, "Rhystic Study", svc.Engine().Snapshot().ResolveAlias("rhystic"))
	assert.Len(t, rec.reloaded, 1)

	require.NoError(t, os.WriteFile(src.SnapshotPath, []byte("{not json"), 0o644))
	_, err = svc.Reload()
	assert.Error(t, err)
	assert.Equal(t, "Rhystic Study", svc.Engine().Snapshot().ResolveAlias("rhystic"), "failed reload keeps the old engine")
}
