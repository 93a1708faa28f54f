package rules

import "github.com/starford/deckwright/internal/models"

// Stats recomputes role counts from a final decklist. Names missing from the
// catalog only count toward the total.
func (e *Engine) Stats(decklist []string) models.Stats {
	var s models.Stats
	for _, name := range decklist {
		c, ok := e.Card(name)
		if !ok {
			continue
		}
		if c.IsLand() {
			s.Lands++
		}
		if c.Roles.Has(models.RoleRamp) {
			s.Ramp++
		}
		if c.Roles.Has(models.RoleDraw) {
			s.Draw++
		}
		if c.Roles.Has(models.RoleInteraction) {
			s.Interaction++
		}
		if c.Roles.Has(models.RoleProtection) {
			s.Protection++
		}
		if c.Roles.Has(models.RoleWincon) {
			s.Wincons++
		}
	}
	s.Total = len(decklist)
	return s
}
