package rules

import (
	"fmt"
	"strings"

	"github.com/starford/deckwright/internal/models"
)

// ValidateDecklist checks an arbitrary decklist against the snapshot and the
// commander's color identity. colors stands in for the identity of a commander
// the snapshot and catalog do not know, as in BuildDeck. The commander counts
// toward the 100 cards even when entries do not list it.
func (e *Engine) ValidateDecklist(commander string, colors []string, rcMode string, entries []models.DeckEntry) models.DeckStatus {
	name, cmd := e.ResolveCommander(commander, colors)
	if rcMode == "" {
		rcMode = models.DefaultRCMode
	}

	status := models.DeckStatus{
		BannedCards:    []string{},
		CIViolations:   []string{},
		DuplicateCards: []string{},
		UnknownCards:   []string{},
	}
	if e.snapshot.IsBanned(name) {
		status.BannedCards = append(status.BannedCards, name)
	}

	quantities := make(map[string]int)
	var order []string
	commanderListed := false
	for _, entry := range entries {
		canonical := e.snapshot.ResolveAlias(entry.Name)
		if models.NameKey(canonical) == models.NameKey(name) {
			commanderListed = true
			status.CardCount += entry.Quantity
			continue
		}
		if _, ok := quantities[canonical]; !ok {
			order = append(order, canonical)
		}
		quantities[canonical] += entry.Quantity
		status.CardCount += entry.Quantity
	}
	if !commanderListed {
		status.CardCount++
	}

	for _, card := range order {
		if e.snapshot.IsBanned(card) {
			status.BannedCards = append(status.BannedCards, card)
		}
		info, ok := e.cardInfo(card)
		basic := IsBasicLandName(card) || (ok && info.IsBasicLand)
		if quantities[card] > 1 && !basic {
			status.DuplicateCards = append(status.DuplicateCards, card)
		}
		if !ok {
			if !basic {
				status.UnknownCards = append(status.UnknownCards, card)
			}
			continue
		}
		if !info.MatchesColorIdentity(cmd.ColorIdentity) {
			status.CIViolations = append(status.CIViolations, card)
		}
	}

	status.HasBannedCards = len(status.BannedCards) > 0
	status.HasCIViolations = len(status.CIViolations) > 0
	status.IsValid100 = status.CardCount == models.DeckSize

	if status.IsValid100 && !status.HasBannedCards && !status.HasCIViolations && len(status.DuplicateCards) == 0 {
		status.LastValidationMessage = e.rules.ValidationLine(rcMode)
		return status
	}

	problems := []string{fmt.Sprintf("%d/%d", status.CardCount, models.DeckSize)}
	if n := len(status.BannedCards); n > 0 {
		problems = append(problems, fmt.Sprintf("%d banned", n))
	}
	if n := len(status.CIViolations); n > 0 {
		problems = append(problems, fmt.Sprintf("%d outside color identity", n))
	}
	if n := len(status.DuplicateCards); n > 0 {
		problems = append(problems, fmt.Sprintf("%d duplicated", n))
	}
	status.LastValidationMessage = "Validation failed: " + strings.Join(problems, ", ")
	return status
}
