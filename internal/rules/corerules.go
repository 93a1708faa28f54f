package rules

import (
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/deckwright/internal/models"
)

// Reconciliation modes.
const (
	RCModeStrict  = "strict"
	RCModeHybrid  = "hybrid"
	RCModeOffline = "offline"
)

// Output modes.
const (
	OutputDeckOnly     = "deck only"
	OutputDeckAnalysis = "deck+analysis"
	OutputAnalysisOnly = "analysis only"
)

const rcModePlaceholder = "{rc_mode}"

// DefaultValidationTemplate is the validation line with an {rc_mode} slot.
const DefaultValidationTemplate = "Validation: 100/100✔️ RC-Snapshot✔️ RC-Sync AB (Modus: " + rcModePlaceholder + ")✔️ " +
	"Commander-legal✔️ CI✔️ Moxfield-ready✔️"

// Slot is a role quota.
type Slot struct {
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
	Count int         `json:"count"`
}

// CoreRules is the static rule table.
type CoreRules struct {
	RCModes            []string `json:"rc_modes"`
	OutputModes        []string `json:"output_modes"`
	ValidationTemplate string   `json:"validation_template"`
	// TargetSlots are allocated in slice order.
	TargetSlots []Slot `json:"target_slots"`
}

// DefaultCoreRules returns the standard Commander rule table.
func DefaultCoreRules() CoreRules {
	return CoreRules{
		RCModes:            []string{RCModeStrict, RCModeHybrid, RCModeOffline},
		OutputModes:        []string{OutputDeckOnly, OutputDeckAnalysis, OutputAnalysisOnly},
		ValidationTemplate: DefaultValidationTemplate,
		TargetSlots: []Slot{
			{Name: "lands", Role: models.RoleLand, Count: 38},
			{Name: "ramp", Role: models.RoleRamp, Count: 10},
			{Name: "draw", Role: models.RoleDraw, Count: 9},
			{Name: "interaction", Role: models.RoleInteraction, Count: 12},
			{Name: "protection", Role: models.RoleProtection, Count: 3},
			{Name: "wincons", Role: models.RoleWincon, Count: 4},
		},
	}
}

// Validate checks that quotas are non-negative and leave room for the commander.
func (c *CoreRules) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.RCModes, validation.Required),
		validation.Field(&c.ValidationTemplate, validation.Required),
	); err != nil {
		return err
	}
	total := 0
	for _, s := range c.TargetSlots {
		if s.Count < 0 {
			return fmt.Errorf("rules: slot %q has negative count %d", s.Name, s.Count)
		}
		total += s.Count
	}
	if total > models.DeckSize-1 {
		return fmt.Errorf("rules: target slots sum to %d, more than %d", total, models.DeckSize-1)
	}
	return nil
}

// Target returns the quota for a slot name.
func (c CoreRules) Target(name string) (int, bool) {
	for _, s := range c.TargetSlots {
		if s.Name == name {
			return s.Count, true
		}
	}
	return 0, false
}

// ValidationLine formats the validation template for rcMode.
func (c CoreRules) ValidationLine(rcMode string) string {
	return strings.ReplaceAll(c.ValidationTemplate, rcModePlaceholder, rcMode)
}

// IsRCMode reports whether mode is a recognized reconciliation mode.
func (c CoreRules) IsRCMode(mode string) bool {
	return slices.Contains(c.RCModes, mode)
}
