package parser

import (
	"fmt"
	"strings"

	"github.com/starford/deckwright/internal/models"
)

// Aggregate collapses repeated names into quantities, keeping first-seen order.
func Aggregate(names []string) []models.DeckEntry {
	idx := make(map[string]int, len(names))
	var out []models.DeckEntry
	for _, n := range names {
		if i, ok := idx[n]; ok {
			out[i].Quantity++
			continue
		}
		idx[n] = len(out)
		out = append(out, models.DeckEntry{Quantity: 1, Name: n})
	}
	return out
}

// Format renders a built deck as Moxfield import text. The first card is the
// commander and goes into its own section.
func Format(decklist []string) string {
	if len(decklist) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Commander\n")
	fmt.Fprintf(&b, "1 %s\n\nDeck\n", decklist[0])
	for _, e := range Aggregate(decklist[1:]) {
		fmt.Fprintf(&b, "%d %s\n", e.Quantity, e.Name)
	}
	return b.String()
}
