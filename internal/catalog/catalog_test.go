package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/starford/deckwright/internal/models"
)

const snapshotJSON = `{
  "alias_map": {"Atraxa": "Atraxa, Praetors' Voice"},
  "oracle_overrides": {"Atraxa, Praetors' Voice": {"color_identity": ["W","U","B","G"], "mana_value": 4}},
  "banned_snapshot": {"cards": {"Golos, Tireless Pilgrim": true}}
}`

const snapshotYAML = `alias_map:
  atraxa: "Atraxa, Praetors' Voice"
oracle_overrides:
  "Atraxa, Praetors' Voice":
    color_identity: [W, U, B, G]
banned_snapshot:
  cards:
    "Golos, Tireless Pilgrim": true
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadSnapshot_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{
		writeFile(t, dir, "master.json", snapshotJSON),
		writeFile(t, dir, "master.yaml", snapshotYAML),
	} {
		snap, sum, err := LoadSnapshot(p)
		if err != nil {
			t.Fatalf("LoadSnapshot(%s): %v", p, err)
		}
		if sum == "" {
			t.Errorf("%s: empty checksum", p)
		}
		if got := snap.ResolveAlias("ATRAXA"); got != "Atraxa, Praetors' Voice" {
			t.Errorf("%s: alias = %q", p, got)
		}
		if !snap.IsBanned("golos, tireless pilgrim") {
			t.Errorf("%s: golos should be banned", p)
		}
		o, ok := snap.Override("Atraxa, Praetors' Voice")
		if !ok || len(o.ColorIdentity) != 4 {
			t.Errorf("%s: override = %+v, %v", p, o, ok)
		}
	}
}

func TestLoadSnapshot_Missing(t *testing.T) {
	if _, _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing snapshot")
	}
}

func TestLoadSnapshot_Malformed(t *testing.T) {
	p := writeFile(t, t.TempDir(), "bad.json", `{"alias_map": [1,2]}`)
	if _, _, err := LoadSnapshot(p); err == nil {
		t.Fatal("expected error for malformed snapshot")
	}
}

func TestParseCards_Shapes(t *testing.T) {
	array := `[
	  {"name": "Sol Ring", "color_identity": [], "cmc": 1, "type_line": "Artifact", "roles": ["ramp"]},
	  {"name": "Forest", "color_identity": ["G"], "mana_value": 0, "type_line": "Basic Land — Forest", "roles": ["land"]},
	  {"name": "Beast Within", "color_identity": ["G"], "types": ["Instant"], "roles": ["interaction"]}
	]`
	cards, err := ParseCards([]byte(array))
	if err != nil {
		t.Fatalf("ParseCards: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("len = %d, want 3", len(cards))
	}
	if cards[0].ManaValue != 1 || !cards[0].Roles.Has(models.RoleRamp) {
		t.Errorf("sol ring = %+v", cards[0])
	}
	if !cards[1].IsBasicLand || !cards[1].IsLand() {
		t.Errorf("forest should be a basic land: %+v", cards[1])
	}
	if !cards[2].HasType("instant") {
		t.Errorf("beast within types = %v", cards[2].Types)
	}

	wrapped := `{"object": "list", "data": [{"name": "Island", "color_identity": ["U"], "cmc": 0.0, "type_line": "Basic Land — Island"}]}`
	cards, err = ParseCards([]byte(wrapped))
	if err != nil {
		t.Fatalf("ParseCards wrapped: %v", err)
	}
	if len(cards) != 1 || cards[0].Name != "Island" || !cards[0].IsBasicLand {
		t.Errorf("wrapped cards = %+v", cards)
	}
}

func TestParseCards_UnknownRole(t *testing.T) {
	_, err := ParseCards([]byte(`[{"name": "Typo", "roles": ["rmap"]}]`))
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestLoadCards_Fallback(t *testing.T) {
	cards, sum, fallback, err := LoadCards(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadCards: %v", err)
	}
	if !fallback || sum != "builtin" {
		t.Errorf("fallback = %v, sum = %q", fallback, sum)
	}
	if len(cards) < 20 {
		t.Errorf("fallback catalog has %d cards", len(cards))
	}
}

func TestLoad_BuildsEngine(t *testing.T) {
	dir := t.TempDir()
	src := Source{
		SnapshotPath: writeFile(t, dir, "master.json", snapshotJSON),
		OraclePath:   filepath.Join(dir, "oracle.json"),
	}
	loaded, err := Load(src, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Fallback {
		t.Error("expected fallback catalog")
	}
	res, err := loaded.Engine.BuildDeck(models.DeckBuildRequest{CommanderName: "Atraxa"})
	if err != nil {
		t.Fatalf("BuildDeck: %v", err)
	}
	if len(res.Decklist) != models.DeckSize {
		t.Errorf("deck size = %d", len(res.Decklist))
	}

	again, err := Load(src, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if again.Fingerprint() != loaded.Fingerprint() {
		t.Error("fingerprint should be stable for unchanged files")
	}
}

func TestWatch_CallsBackOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	p := writeFile(t, dir, "master.json", snapshotJSON)
	writeFile(t, dir, "unrelated.txt", "x")

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, []string{p}, 50*time.Millisecond, quietLogger(), func() { calls.Add(1) })
	}()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "unrelated.txt", "y")
	time.Sleep(150 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("unrelated file triggered %d callbacks", calls.Load())
	}

	writeFile(t, dir, "master.json", snapshotJSON+"\n")
	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if calls.Load() == 0 {
		t.Error("watcher did not report change")
	}

	cancel()
	<-done
}
