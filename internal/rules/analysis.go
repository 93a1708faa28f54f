package rules

import (
	"fmt"
	"math"
	"strconv"

	"github.com/starford/deckwright/internal/models"
)

// curveBuckets are the mana-curve bucket labels; the last one is open-ended.
var curveBuckets = []string{"0", "1", "2", "3", "4", "5", "6", "7+"}

// topHeavyShare is the share of nonland cards at mana value 5+ above which a
// curve is reported as top-heavy.
const topHeavyShare = 0.3

// Analyze describes a decklist: mana curve over nonland cards, per-color card
// counts, role counts and warnings. The first entry is treated as the
// commander and left out of the curve.
func (e *Engine) Analyze(decklist []string) models.DeckAnalysis {
	a := models.DeckAnalysis{
		ManaCurve:    make(map[string]int, len(curveBuckets)),
		ColorSymbols: make(map[string]int, 5),
		Warnings:     []string{},
	}
	for _, b := range curveBuckets {
		a.ManaCurve[b] = 0
	}
	for _, c := range []models.Color{models.White, models.Blue, models.Black, models.Red, models.Green} {
		a.ColorSymbols[string(c)] = 0
	}

	stats := e.Stats(decklist)
	a.LandCount = stats.Lands
	a.RampCount = stats.Ramp
	a.DrawCount = stats.Draw
	a.InteractionCount = stats.Interaction
	a.ProtectionCount = stats.Protection
	a.WinconCount = stats.Wincons

	var nonland, heavy, unknown int
	var totalMV float64
	for i, name := range decklist {
		c, ok := e.cardInfo(e.snapshot.ResolveAlias(name))
		if !ok {
			if IsBasicLandName(name) {
				a.LandCount++
			} else {
				unknown++
			}
			continue
		}
		for _, color := range c.ColorIdentity {
			if _, tracked := a.ColorSymbols[string(color)]; tracked {
				a.ColorSymbols[string(color)]++
			}
		}
		if i == 0 || c.IsLand() {
			continue
		}
		nonland++
		totalMV += c.ManaValue
		if c.ManaValue >= 5 {
			heavy++
		}
		a.ManaCurve[bucketFor(c.ManaValue)]++
	}
	if nonland > 0 {
		a.AverageManaValue = math.Round(totalMV/float64(nonland)*100) / 100
	}

	if target, ok := e.rules.Target("lands"); ok && a.LandCount < target {
		a.Warnings = append(a.Warnings, fmt.Sprintf("land count %d is below the target of %d", a.LandCount, target))
	}
	if a.WinconCount == 0 {
		a.Warnings = append(a.Warnings, "no win conditions identified")
	}
	if nonland > 0 && float64(heavy)/float64(nonland) > topHeavyShare {
		a.Warnings = append(a.Warnings, "curve is top-heavy")
	}
	if unknown > 0 {
		a.Warnings = append(a.Warnings, fmt.Sprintf("%d cards not found in the catalog", unknown))
	}
	return a
}

func bucketFor(mv float64) string {
	n := int(math.Floor(mv))
	if n >= len(curveBuckets)-1 {
		return curveBuckets[len(curveBuckets)-1]
	}
	if n < 0 {
		n = 0
	}
	return strconv.Itoa(n)
}
