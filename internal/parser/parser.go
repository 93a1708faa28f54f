// Package parser reads and writes Moxfield-style decklists.
package parser

import (
	"bufio"
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/starford/deckwright/internal/models"
)

// ErrEmptyDecklist is returned when no card lines were found.
var ErrEmptyDecklist = errors.New("decklist contains no cards")

var (
	// "1 Sol Ring", "35x Island", "Sol Ring (CMR) 472 *F*"
	entryRe = regexp.MustCompile(`^(?:(\d+)\s*[xX]?\s+)?(.+?)(?:\s+\([A-Za-z0-9]{2,6}\)(?:\s+[\w-]+)?)?(?:\s+\*[A-Za-z]+\*)?$`)
	// "Commander", "COMMANDER:", "Deck (99)"
	headerRe = regexp.MustCompile(`^(?i)(commander|commanders|deck|mainboard|main|sideboard|maybeboard|considering)\s*(?:\(\d+\))?:?$`)
)

// Section of a decklist a line belongs to.
type Section string

const (
	SectionCommander Section = "commander"
	SectionDeck      Section = "deck"
	SectionSide      Section = "sideboard"
)

// Header is the optional YAML frontmatter of a decklist.
type Header struct {
	Commander string `yaml:"commander"`
	// Colors is the color identity of a commander missing from the catalog.
	Colors   []string `yaml:"colors"`
	RCMode   string   `yaml:"rc_mode"`
	Language string   `yaml:"language"`
}

// Decklist is the parsed form of a decklist document.
type Decklist struct {
	Header    Header
	Commander string
	Entries   []models.DeckEntry
	Sideboard []models.DeckEntry
	Unparsed  []string
}

// Names expands entries into one name per copy.
func (d *Decklist) Names() []string {
	var out []string
	for _, e := range d.Entries {
		for range e.Quantity {
			out = append(out, e.Name)
		}
	}
	return out
}

// Parse reads a decklist. The commander comes from the frontmatter if set,
// otherwise from the first entry of a Commander section. Commander-section
// entries are also kept in Entries so they count toward the deck size.
func Parse(data []byte) (*Decklist, error) {
	header, body := splitFrontmatter(data)
	d := &Decklist{Header: header, Commander: strings.TrimSpace(header.Commander)}

	section := SectionDeck
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "//"); ok {
			// "// Commander" is how Moxfield exports label sections.
			if s, ok := parseHeader(strings.TrimSpace(rest)); ok {
				section = s
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if s, ok := parseHeader(line); ok {
			section = s
			continue
		}

		entry, ok := parseEntry(line)
		if !ok {
			d.Unparsed = append(d.Unparsed, line)
			continue
		}
		switch section {
		case SectionSide:
			d.Sideboard = append(d.Sideboard, entry)
			continue
		case SectionCommander:
			if d.Commander == "" {
				d.Commander = entry.Name
			}
		}
		d.Entries = append(d.Entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(d.Entries) == 0 {
		return nil, ErrEmptyDecklist
	}
	return d, nil
}

func parseHeader(line string) (Section, bool) {
	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	switch strings.ToLower(m[1]) {
	case "commander", "commanders":
		return SectionCommander, true
	case "sideboard", "maybeboard", "considering":
		return SectionSide, true
	}
	return SectionDeck, true
}

func parseEntry(line string) (models.DeckEntry, bool) {
	m := entryRe.FindStringSubmatch(line)
	if m == nil {
		return models.DeckEntry{}, false
	}
	qty := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return models.DeckEntry{}, false
		}
		qty = n
	}
	name := strings.TrimSpace(m[2])
	first, _ := utf8.DecodeRuneInString(name)
	if name == "" || !(unicode.IsLetter(first) || unicode.IsDigit(first) || first == '+') {
		return models.DeckEntry{}, false
	}
	return models.DeckEntry{Quantity: qty, Name: name}, true
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the list. Without valid frontmatter the entire content is the list.
func splitFrontmatter(data []byte) (Header, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return Header{}, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return Header{}, string(data)
	}

	yamlBlock := rest[:idx]
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")

	var h Header
	if err := yaml.Unmarshal(yamlBlock, &h); err != nil {
		return Header{}, string(data)
	}
	return h, body
}
