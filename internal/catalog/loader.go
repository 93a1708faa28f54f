// Package catalog loads the snapshot document and card catalog from disk and
// builds rule engines from them.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/deckwright/internal/checksum"
	"github.com/starford/deckwright/internal/models"
	"github.com/starford/deckwright/internal/rules"
)

// Source names the files an engine is built from.
type Source struct {
	SnapshotPath string
	OraclePath   string
}

// Paths returns the non-empty file paths of the source.
func (s Source) Paths() []string {
	var out []string
	for _, p := range []string{s.SnapshotPath, s.OraclePath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Loaded is an engine together with a fingerprint of the data behind it.
type Loaded struct {
	Engine           *rules.Engine
	SnapshotChecksum string
	CatalogChecksum  string
	// Fallback is true when the built-in catalog was used.
	Fallback bool
}

// Fingerprint identifies the loaded data; equal fingerprints mean equal input.
func (l *Loaded) Fingerprint() string {
	return l.SnapshotChecksum + ":" + l.CatalogChecksum
}

// Load reads both files and constructs a new engine.
func Load(src Source, logger *slog.Logger, opts ...rules.Option) (*Loaded, error) {
	snap, snapSum, err := LoadSnapshot(src.SnapshotPath)
	if err != nil {
		return nil, err
	}
	cards, cardSum, fallback, err := LoadCards(src.OraclePath)
	if err != nil {
		return nil, err
	}
	if fallback {
		logger.Warn("catalog: oracle file unavailable, using built-in cards",
			slog.String("oracle_path", src.OraclePath),
			slog.Int("cards", len(cards)))
	}

	engine, err := rules.New(rules.DefaultCoreRules(), snap, cards, opts...)
	if err != nil {
		return nil, fmt.Errorf("catalog: build engine: %w", err)
	}

	aliases, overrides, banned := snap.Len()
	logger.Info("catalog: loaded",
		slog.String("snapshot_path", src.SnapshotPath),
		slog.Int("aliases", aliases),
		slog.Int("overrides", overrides),
		slog.Int("banned", banned),
		slog.Int("cards", len(cards)))

	return &Loaded{
		Engine:           engine,
		SnapshotChecksum: snapSum,
		CatalogChecksum:  cardSum,
		Fallback:         fallback,
	}, nil
}

// LoadSnapshot parses a snapshot document. Files ending in .yaml or .yml are
// YAML, anything else JSON.
func LoadSnapshot(path string) (*rules.Snapshot, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("catalog: read snapshot %s: %w", path, err)
	}
	var doc rules.SnapshotDocument
	if isYAML(path) {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, "", fmt.Errorf("catalog: parse snapshot %s: %w", path, err)
	}
	return rules.NewSnapshot(doc), checksum.Sum(data), nil
}

// rawCard accepts both the simplified catalog shape and Scryfall card objects.
type rawCard struct {
	Name          string   `json:"name"`
	ColorIdentity []string `json:"color_identity"`
	CMC           *float64 `json:"cmc"`
	ManaValue     *float64 `json:"mana_value"`
	TypeLine      *string  `json:"type_line"`
	Types         []string `json:"types"`
	IsBasicLand   *bool    `json:"is_basic_land"`
	Roles         []string `json:"roles"`
}

func (r rawCard) spec() models.CardSpec {
	spec := models.CardSpec{
		Name:          r.Name,
		ColorIdentity: r.ColorIdentity,
		Types:         r.Types,
		Roles:         r.Roles,
	}
	switch {
	case r.CMC != nil:
		spec.ManaValue = *r.CMC
	case r.ManaValue != nil:
		spec.ManaValue = *r.ManaValue
	}
	if r.TypeLine != nil {
		spec.Types = strings.Fields(*r.TypeLine)
	}
	if r.IsBasicLand != nil {
		spec.IsBasicLand = *r.IsBasicLand
	} else if r.TypeLine != nil {
		spec.IsBasicLand = strings.Contains(*r.TypeLine, "Basic")
	}
	return spec
}

// LoadCards reads a card catalog: a JSON array or an object with a "data"
// array. An empty path or a missing file yields the built-in catalog.
func LoadCards(path string) (cards []models.OracleCard, sum string, fallback bool, err error) {
	if path == "" {
		return rules.DefaultCatalog(), "builtin", true, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return rules.DefaultCatalog(), "builtin", true, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("catalog: read cards %s: %w", path, err)
	}

	cards, err = ParseCards(data)
	if err != nil {
		return nil, "", false, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return cards, checksum.Sum(data), false, nil
}

// ParseCards decodes catalog JSON.
func ParseCards(data []byte) ([]models.OracleCard, error) {
	var raws []rawCard
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("parse cards: %w", err)
		}
	} else {
		var wrapped struct {
			Data []rawCard `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("parse cards: %w", err)
		}
		raws = wrapped.Data
	}

	out := make([]models.OracleCard, 0, len(raws))
	for i, r := range raws {
		c, err := models.NewOracleCard(r.spec())
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
