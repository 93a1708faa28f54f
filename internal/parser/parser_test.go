package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/deckwright/internal/models"
)

func TestParse_FrontmatterAndEntries(t *testing.T) {
	input := []byte("---\ncommander: Atraxa, Praetors' Voice\nrc_mode: strict\n---\n1 Sol Ring\n35x Island\nCultivate\n")
	d, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Commander != "Atraxa, Praetors' Voice" {
		t.Errorf("commander = %q, want %q", d.Commander, "Atraxa, Praetors' Voice")
	}
	if d.Header.RCMode != "strict" {
		t.Errorf("rc_mode = %q, want %q", d.Header.RCMode, "strict")
	}
	want := []models.DeckEntry{{Quantity: 1, Name: "Sol Ring"}, {Quantity: 35, Name: "Island"}, {Quantity: 1, Name: "Cultivate"}}
	if len(d.Entries) != len(want) {
		t.Fatalf("entries = %v, want %v", d.Entries, want)
	}
	for i := range want {
		if d.Entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, d.Entries[i], want[i])
		}
	}
	if n := len(d.Names()); n != 37 {
		t.Errorf("len(Names()) = %d, want 37", n)
	}
}

func TestParse_FrontmatterColors(t *testing.T) {
	d, err := Parse([]byte("---\ncommander: Mono Blue\ncolors: [U]\n---\n1 Cyclonic Rift\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Header.Colors) != 1 || d.Header.Colors[0] != "U" {
		t.Errorf("colors = %v, want [U]", d.Header.Colors)
	}
}

func TestParse_Sections(t *testing.T) {
	input := `// Commander
1 Krenko, Mob Boss

// Deck
1 Lightning Bolt (M11) 149
1 Sol Ring *F*
# a comment
10 Mountain

Sideboard
1 Chaos Warp
`
	d, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Commander != "Krenko, Mob Boss" {
		t.Errorf("commander = %q", d.Commander)
	}
	if len(d.Entries) != 4 {
		t.Fatalf("entries = %+v, want 4", d.Entries)
	}
	if d.Entries[1].Name != "Lightning Bolt" || d.Entries[2].Name != "Sol Ring" {
		t.Errorf("set codes and foil markers not stripped: %+v", d.Entries)
	}
	if len(d.Sideboard) != 1 || d.Sideboard[0].Name != "Chaos Warp" {
		t.Errorf("sideboard = %+v", d.Sideboard)
	}
}

func TestParse_PlainHeaders(t *testing.T) {
	d, err := Parse([]byte("COMMANDER:\nSonic the Hedgehog\nDeck (2)\n1 Opt\n1 Ponder\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Commander != "Sonic the Hedgehog" {
		t.Errorf("commander = %q", d.Commander)
	}
	if len(d.Entries) != 3 {
		t.Errorf("entries = %+v, want 3", d.Entries)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\n1 Sol Ring\n")
	d, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Commander != "" {
		t.Errorf("expected no commander on invalid YAML, got %q", d.Commander)
	}
	if len(d.Unparsed) == 0 {
		t.Error("delimiter lines should be reported as unparsed")
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte("// nothing here\n\n"))
	if !errors.Is(err, ErrEmptyDecklist) {
		t.Fatalf("err = %v, want ErrEmptyDecklist", err)
	}
}

func TestParse_ZeroQuantityUnparsed(t *testing.T) {
	d, err := Parse([]byte("0 Sol Ring\n1 Opt\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Unparsed) != 1 || d.Unparsed[0] != "0 Sol Ring" {
		t.Errorf("unparsed = %v", d.Unparsed)
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	deck := []string{"Krenko, Mob Boss", "Sol Ring", "Mountain", "Lightning Bolt", "Mountain"}
	out := Format(deck)

	if !strings.HasPrefix(out, "Commander\n1 Krenko, Mob Boss\n\nDeck\n") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "2 Mountain\n") {
		t.Errorf("basics not aggregated:\n%s", out)
	}

	d, err := Parse([]byte(out))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Commander != "Krenko, Mob Boss" {
		t.Errorf("commander = %q", d.Commander)
	}
	if got := len(d.Names()); got != len(deck) {
		t.Errorf("round trip has %d cards, want %d", got, len(deck))
	}
}

func TestFormat_Empty(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q", got)
	}
}
