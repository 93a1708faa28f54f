// Package rules implements the Commander deck-construction rule engine.
package rules

import "github.com/starford/deckwright/internal/models"

// Override is a manual per-card record that takes precedence over the catalog.
// Nil fields mean "not overridden".
type Override struct {
	ColorIdentity []string `json:"color_identity,omitempty" yaml:"color_identity,omitempty"`
	ManaValue     *float64 `json:"mana_value,omitempty" yaml:"mana_value,omitempty"`
	Types         []string `json:"types,omitempty" yaml:"types,omitempty"`
}

// IsZero reports whether the override carries no data.
func (o Override) IsZero() bool {
	return o.ColorIdentity == nil && o.ManaValue == nil && o.Types == nil
}

// SnapshotDocument is the on-disk shape of the snapshot.
type SnapshotDocument struct {
	AliasMap        map[string]string   `json:"alias_map" yaml:"alias_map"`
	OracleOverrides map[string]Override `json:"oracle_overrides" yaml:"oracle_overrides"`
	BannedSnapshot  struct {
		Cards map[string]bool `json:"cards" yaml:"cards"`
	} `json:"banned_snapshot" yaml:"banned_snapshot"`
}

// Snapshot is the locally authoritative alias/override/ban dataset.
// It is immutable once built.
type Snapshot struct {
	aliases   map[string]string
	overrides map[string]Override
	banned    map[string]bool
}

// NewSnapshot builds a snapshot from a decoded document, normalizing alias and
// ban keys.
func NewSnapshot(doc SnapshotDocument) *Snapshot {
	s := &Snapshot{
		aliases:   make(map[string]string, len(doc.AliasMap)),
		overrides: make(map[string]Override, len(doc.OracleOverrides)),
		banned:    make(map[string]bool, len(doc.BannedSnapshot.Cards)),
	}
	for k, v := range doc.AliasMap {
		s.aliases[normalize(k)] = v
	}
	for k, v := range doc.OracleOverrides {
		s.overrides[k] = v
	}
	for k, v := range doc.BannedSnapshot.Cards {
		s.banned[normalize(k)] = v
	}
	return s
}

// EmptySnapshot returns a snapshot with no aliases, overrides or bans.
func EmptySnapshot() *Snapshot {
	return NewSnapshot(SnapshotDocument{})
}

// ResolveAlias returns the canonical name for name, or name unchanged.
func (s *Snapshot) ResolveAlias(name string) string {
	if canonical, ok := s.aliases[normalize(name)]; ok {
		return canonical
	}
	return name
}

// IsBanned reports whether name is flagged in the banned snapshot.
func (s *Snapshot) IsBanned(name string) bool {
	return s.banned[normalize(name)]
}

// Override looks up the override for an exact canonical name.
func (s *Snapshot) Override(name string) (Override, bool) {
	o, ok := s.overrides[name]
	return o, ok
}

// Len returns the number of aliases, overrides and ban entries.
func (s *Snapshot) Len() (aliases, overrides, banned int) {
	return len(s.aliases), len(s.overrides), len(s.banned)
}

func normalize(name string) string {
	return models.NameKey(name)
}
