package rules

import (
	"strings"

	"github.com/starford/deckwright/internal/models"
)

type fallbackCard struct {
	name     string
	ci       []string
	cmc      float64
	typeLine string
	roles    []string
}

var fallbackCards = []fallbackCard{
	{"Sol Ring", nil, 1, "Artifact", []string{"ramp"}},
	{"Arcane Signet", nil, 2, "Artifact", []string{"ramp"}},
	{"Cultivate", []string{"G"}, 3, "Sorcery", []string{"ramp"}},
	{"Farseek", []string{"G"}, 2, "Sorcery", []string{"ramp"}},
	{"Rhystic Study", []string{"U"}, 3, "Enchantment", []string{"draw"}},
	{"Fact or Fiction", []string{"U"}, 4, "Instant", []string{"draw"}},
	{"Beast Within", []string{"G"}, 3, "Instant", []string{"interaction"}},
	{"Swords to Plowshares", []string{"W"}, 1, "Instant", []string{"interaction"}},
	{"Cyclonic Rift", []string{"U"}, 2, "Instant", []string{"interaction"}},
	{"Heroic Intervention", []string{"G"}, 2, "Instant", []string{"protection"}},
	{"Teferi's Protection", []string{"W"}, 3, "Instant", []string{"protection"}},
	{"Craterhoof Behemoth", []string{"G"}, 8, "Creature", []string{"wincon"}},
	{"Exsanguinate", []string{"B"}, 2, "Sorcery", []string{"wincon"}},
	{"Blue Sun's Zenith", []string{"U"}, 3, "Instant", []string{"wincon"}},
	{"Lightning Bolt", []string{"R"}, 1, "Instant", []string{"interaction"}},
	{"Island", []string{"U"}, 0, "Basic Land — Island", []string{"land"}},
	{"Forest", []string{"G"}, 0, "Basic Land — Forest", []string{"land"}},
	{"Plains", []string{"W"}, 0, "Basic Land — Plains", []string{"land"}},
	{"Swamp", []string{"B"}, 0, "Basic Land — Swamp", []string{"land"}},
	{"Mountain", []string{"R"}, 0, "Basic Land — Mountain", []string{"land"}},
	{"Avenger of Zendikar", []string{"G"}, 7, "Creature", []string{"wincon"}},
}

// DefaultCatalog returns the small built-in catalog used when no card file is
// available.
func DefaultCatalog() []models.OracleCard {
	out := make([]models.OracleCard, 0, len(fallbackCards))
	for _, fc := range fallbackCards {
		c, err := models.NewOracleCard(models.CardSpec{
			Name:          fc.name,
			ColorIdentity: fc.ci,
			ManaValue:     fc.cmc,
			Types:         strings.Fields(fc.typeLine),
			IsBasicLand:   strings.Contains(fc.typeLine, "Basic"),
			Roles:         fc.roles,
		})
		if err != nil {
			panic("rules: invalid fallback card: " + err.Error())
		}
		out = append(out, c)
	}
	return out
}
