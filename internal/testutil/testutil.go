// Package testutil provides shared test helpers for setting up data files,
// engines, deck databases and export directories.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/deckwright/internal/catalog"
	"github.com/starford/deckwright/internal/deckstore"
	"github.com/starford/deckwright/internal/rules"
	"github.com/starford/deckwright/internal/storage"
)

// SnapshotJSON is a small snapshot document used across packages.
const SnapshotJSON = `{
  "alias_map": {
    "atraxa": "Atraxa, Praetors' Voice",
    "sonic": "Sonic the Hedgehog",
    "bolt": "Lightning Bolt"
  },
  "oracle_overrides": {
    "Atraxa, Praetors' Voice": {"color_identity": ["W", "U", "B", "G"], "mana_value": 4},
    "Sonic the Hedgehog": {"color_identity": ["U", "R"], "mana_value": 3}
  },
  "banned_snapshot": {
    "cards": {"Golos, Tireless Pilgrim": true, "Cyclonic Rift": true}
  }
}`

// TestDB creates a temporary deck database that is automatically cleaned up.
func TestDB(t *testing.T) *deckstore.DB {
	t.Helper()
	db, err := deckstore.Open(filepath.Join(t.TempDir(), "decks.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestExports creates a temporary exports directory with a storage.Provider.
func TestExports(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteData writes SnapshotJSON to a temp dir and returns a source pointing at
// it. The oracle path does not exist, so the built-in catalog is used.
func WriteData(t *testing.T) catalog.Source {
	t.Helper()
	dir := t.TempDir()
	snap := filepath.Join(dir, "mtg_master.json")
	if err := os.WriteFile(snap, []byte(SnapshotJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return catalog.Source{SnapshotPath: snap, OraclePath: filepath.Join(dir, "oracle.json")}
}

// TestLoaded loads an engine from src with a seeded shuffler.
func TestLoaded(t *testing.T, src catalog.Source) *catalog.Loaded {
	t.Helper()
	loaded, err := catalog.Load(src, Logger(), EngineOptions()...)
	if err != nil {
		t.Fatal(err)
	}
	return loaded
}

// EngineOptions are the engine options used by TestLoaded.
func EngineOptions() []rules.Option {
	return []rules.Option{rules.WithShuffler(rules.SeededShuffler(42))}
}

// Logger returns a logger that only reports errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
