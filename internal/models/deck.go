package models

import "time"

// DeckSize is the exact size of a Commander deck, commander included.
const DeckSize = 100

// Request defaults.
const (
	DefaultRCMode   = "hybrid"
	DefaultLanguage = "DE"
)

// Deck event kinds published when a stored deck changes.
const (
	DeckEventBuilt    = "built"
	DeckEventDeleted  = "deleted"
	DeckEventExported = "exported"
)

// DeckBuildRequest describes one deck build.
type DeckBuildRequest struct {
	CommanderName string
	RCMode        string
	Language      string
	// AllowLoops is accepted but not consulted by allocation.
	AllowLoops bool
	// Colors is used only when the commander cannot be resolved.
	Colors []string
	// Playstyle is reserved for future weighting.
	Playstyle string
	// Seed, when set, makes role selection reproducible.
	Seed *uint64
}

// Stats are role counts recomputed from a final decklist.
type Stats struct {
	Lands       int `json:"lands"`
	Ramp        int `json:"ramp"`
	Draw        int `json:"draw"`
	Interaction int `json:"interaction"`
	Protection  int `json:"protection"`
	Wincons     int `json:"wincons"`
	Total       int `json:"total"`
}

// DeckBuildResult is the outcome of a successful build.
type DeckBuildResult struct {
	Commander     string        `json:"commander"`
	ColorIdentity ColorIdentity `json:"color_identity"`
	Decklist      []string      `json:"deck"`
	Validation    string        `json:"validation"`
	Stats         Stats         `json:"stats"`
	Notes         []string      `json:"notes"`
}

// DeckStatus summarizes the legality of an arbitrary decklist.
type DeckStatus struct {
	HasBannedCards        bool     `json:"has_banned_cards"`
	HasCIViolations       bool     `json:"has_ci_violations"`
	IsValid100            bool     `json:"is_valid_100"`
	LastValidationMessage string   `json:"last_validation_message"`
	BannedCards           []string `json:"banned_cards"`
	CIViolations          []string `json:"ci_violations"`
	DuplicateCards        []string `json:"duplicate_cards"`
	UnknownCards          []string `json:"unknown_cards"`
	CardCount             int      `json:"card_count"`
}

// DeckAnalysis is a descriptive breakdown of a decklist.
type DeckAnalysis struct {
	ManaCurve        map[string]int `json:"mana_curve_buckets"`
	ColorSymbols     map[string]int `json:"color_pips_by_color"`
	RampCount        int            `json:"ramp_count"`
	DrawCount        int            `json:"draw_count"`
	InteractionCount int            `json:"interaction_count"`
	ProtectionCount  int            `json:"protection_count"`
	WinconCount      int            `json:"wincon_count"`
	LandCount        int            `json:"land_count"`
	AverageManaValue float64        `json:"average_mana_value"`
	Warnings         []string       `json:"warnings"`
}

// DeckEntry is one line of a parsed decklist.
type DeckEntry struct {
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// DeckRecord is a persisted build.
type DeckRecord struct {
	ID            string        `json:"id"`
	Commander     string        `json:"commander"`
	ColorIdentity ColorIdentity `json:"color_identity"`
	RCMode        string        `json:"rc_mode"`
	Language      string        `json:"language"`
	Validation    string        `json:"validation"`
	Stats         Stats         `json:"stats"`
	Notes         []string      `json:"notes"`
	Cards         []string      `json:"deck,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ExportMetadata describes an export file on disk.
type ExportMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
