package rules

import "github.com/starford/deckwright/internal/models"

// Wastes is the basic land used for colorless identities.
const Wastes = "Wastes"

var basicByColor = map[models.Color]string{
	models.White: "Plains",
	models.Blue:  "Island",
	models.Black: "Swamp",
	models.Red:   "Mountain",
	models.Green: "Forest",
}

// BasicLandName returns the basic land producing c, or Wastes.
func BasicLandName(c models.Color) string {
	if name, ok := basicByColor[c]; ok {
		return name
	}
	return Wastes
}

// IsBasicLandName reports whether name is one of the six basic lands.
func IsBasicLandName(name string) bool {
	key := models.NameKey(name)
	if key == models.NameKey(Wastes) {
		return true
	}
	for _, b := range basicByColor {
		if key == models.NameKey(b) {
			return true
		}
	}
	return false
}

// BasicLands returns count basics cycling through ci in order.
func BasicLands(ci models.ColorIdentity, count int) []string {
	if count <= 0 {
		return nil
	}
	basics := make([]string, 0, len(ci))
	for _, c := range ci {
		basics = append(basics, BasicLandName(c))
	}
	if len(basics) == 0 {
		basics = append(basics, Wastes)
	}
	out := make([]string, count)
	for i := range out {
		out[i] = basics[i%len(basics)]
	}
	return out
}
