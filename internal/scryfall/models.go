package scryfall

import (
	"errors"
	"fmt"
)

// Card is the subset of a Scryfall card object the service exposes.
type Card struct {
	Name          string     `json:"name"`
	ManaCost      string     `json:"mana_cost,omitempty"`
	CMC           float64    `json:"cmc"`
	TypeLine      string     `json:"type_line"`
	OracleText    string     `json:"oracle_text,omitempty"`
	ColorIdentity []string   `json:"color_identity"`
	ImageURIs     *ImageURIs `json:"image_uris,omitempty"`
	CardFaces     []CardFace `json:"card_faces,omitempty"`
}

// ImageURIs holds the image variants of a card.
type ImageURIs struct {
	Small  string `json:"small,omitempty"`
	Normal string `json:"normal,omitempty"`
	Large  string `json:"large,omitempty"`
}

// CardFace is one face of a multi-faced card.
type CardFace struct {
	Name      string     `json:"name"`
	ImageURIs *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURL returns the normal (or large) image of the card or its first face.
func (c *Card) ImageURL() string {
	pick := func(u *ImageURIs) string {
		if u == nil {
			return ""
		}
		if u.Normal != "" {
			return u.Normal
		}
		return u.Large
	}
	if u := pick(c.ImageURIs); u != "" {
		return u
	}
	if len(c.CardFaces) > 0 {
		return pick(c.CardFaces[0].ImageURIs)
	}
	return ""
}

// CardSummary is the flattened card shape returned to API clients.
type CardSummary struct {
	Name          string   `json:"name"`
	ManaCost      string   `json:"mana_cost"`
	TypeLine      string   `json:"type_line"`
	OracleText    string   `json:"oracle_text"`
	ColorIdentity []string `json:"color_identity"`
	ImageURL      string   `json:"image_url,omitempty"`
}

// Summary flattens c.
func (c *Card) Summary() CardSummary {
	ci := c.ColorIdentity
	if ci == nil {
		ci = []string{}
	}
	return CardSummary{
		Name:          c.Name,
		ManaCost:      c.ManaCost,
		TypeLine:      c.TypeLine,
		OracleText:    c.OracleText,
		ColorIdentity: ci,
		ImageURL:      c.ImageURL(),
	}
}

// Catalog is a Scryfall catalog object, as returned by autocomplete.
type Catalog struct {
	Object      string   `json:"object"`
	TotalValues int      `json:"total_values"`
	Data        []string `json:"data"`
}

// List is a paginated Scryfall list of cards.
type List struct {
	Object     string `json:"object"`
	TotalCards int    `json:"total_cards"`
	HasMore    bool   `json:"has_more"`
	Data       []Card `json:"data"`
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Warnings []string `json:"warnings,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("scryfall: HTTP %d: %s", e.Status, e.Details)
	}
	return fmt.Sprintf("scryfall: HTTP %d: %s", e.Status, e.Code)
}

// NotFoundError represents a 404 from the API.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("scryfall: not found: %s", e.URL)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
