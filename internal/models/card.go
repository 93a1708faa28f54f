// Package models defines the reference data types for deckwright.
package models

import (
	"fmt"
	"slices"
	"strings"
)

// Color is a single mana-color symbol.
type Color string

// Mana colors in WUBRG order.
const (
	White Color = "W"
	Blue  Color = "U"
	Black Color = "B"
	Red   Color = "R"
	Green Color = "G"
)

// ColorIdentity is an ordered set of colors. Order is insertion order and is
// preserved because basic-land filling cycles through it.
type ColorIdentity []Color

// NewColorIdentity normalizes raw symbols (trim, upper-case) and drops blanks
// and duplicates while keeping first-seen order.
func NewColorIdentity(symbols ...string) ColorIdentity {
	out := make(ColorIdentity, 0, len(symbols))
	for _, s := range symbols {
		c := Color(strings.ToUpper(strings.TrimSpace(s)))
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Contains reports whether c is part of the identity.
func (ci ColorIdentity) Contains(c Color) bool {
	return slices.Contains(ci, c)
}

// SubsetOf reports whether every color of ci is also in other.
// The empty (colorless) identity is a subset of everything.
func (ci ColorIdentity) SubsetOf(other ColorIdentity) bool {
	for _, c := range ci {
		if !other.Contains(c) {
			return false
		}
	}
	return true
}

// Strings returns the identity as plain strings, never nil.
func (ci ColorIdentity) Strings() []string {
	out := make([]string, len(ci))
	for i, c := range ci {
		out[i] = string(c)
	}
	return out
}

// Role is a functional deck-construction category.
type Role string

// Known roles.
const (
	RoleLand        Role = "land"
	RoleRamp        Role = "ramp"
	RoleDraw        Role = "draw"
	RoleInteraction Role = "interaction"
	RoleProtection  Role = "protection"
	RoleWincon      Role = "wincon"
	RoleCommander   Role = "commander"
)

var roleBits = map[Role]RoleSet{
	RoleLand:        1 << 0,
	RoleRamp:        1 << 1,
	RoleDraw:        1 << 2,
	RoleInteraction: 1 << 3,
	RoleProtection:  1 << 4,
	RoleWincon:      1 << 5,
	RoleCommander:   1 << 6,
}

// AllRoles lists every known role in a stable order.
var AllRoles = []Role{RoleLand, RoleRamp, RoleDraw, RoleInteraction, RoleProtection, RoleWincon, RoleCommander}

// ParseRole maps a free-form tag to a Role. Unknown tags are an error.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleBits[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleSet is a bit set of roles.
type RoleSet uint8

// NewRoleSet builds a set from known roles.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s |= roleBits[r]
	}
	return s
}

// ParseRoleSet parses raw tags, failing on the first unknown one.
func ParseRoleSet(tags []string) (RoleSet, error) {
	var s RoleSet
	for _, t := range tags {
		r, err := ParseRole(t)
		if err != nil {
			return 0, err
		}
		s |= roleBits[r]
	}
	return s, nil
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	bit, ok := roleBits[r]
	return ok && s&bit != 0
}

// Roles returns the members in AllRoles order.
func (s RoleSet) Roles() []Role {
	var out []Role
	for _, r := range AllRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// OracleCard is a single card of the catalog.
type OracleCard struct {
	Name          string
	ColorIdentity ColorIdentity
	ManaValue     float64
	Types         []string
	IsBasicLand   bool
	Roles         RoleSet
}

// CardSpec is the loosely typed form a card arrives in from a catalog file.
type CardSpec struct {
	Name          string
	ColorIdentity []string
	ManaValue     float64
	Types         []string
	IsBasicLand   bool
	Roles         []string
}

// NewOracleCard validates spec and builds a card.
func NewOracleCard(spec CardSpec) (OracleCard, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return OracleCard{}, fmt.Errorf("card name is required")
	}
	if spec.ManaValue < 0 {
		return OracleCard{}, fmt.Errorf("card %q: negative mana value %v", name, spec.ManaValue)
	}
	roles, err := ParseRoleSet(spec.Roles)
	if err != nil {
		return OracleCard{}, fmt.Errorf("card %q: %w", name, err)
	}
	return OracleCard{
		Name:          name,
		ColorIdentity: NewColorIdentity(spec.ColorIdentity...),
		ManaValue:     spec.ManaValue,
		Types:         spec.Types,
		IsBasicLand:   spec.IsBasicLand,
		Roles:         roles,
	}, nil
}

// MatchesColorIdentity reports whether the card is legal under a commander
// with the given identity.
func (c OracleCard) MatchesColorIdentity(commander ColorIdentity) bool {
	return c.ColorIdentity.SubsetOf(commander)
}

// HasType reports whether one of the type tags equals t, ignoring case.
func (c OracleCard) HasType(t string) bool {
	for _, tt := range c.Types {
		if strings.EqualFold(tt, t) {
			return true
		}
	}
	return false
}

// IsLand reports whether the card counts as a land.
func (c OracleCard) IsLand() bool {
	return c.IsBasicLand || c.HasType("land")
}

// NameKey is the case-insensitive lookup key for a card name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
