package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/deckwright/internal/apperr"
	"github.com/starford/deckwright/internal/deckservice"
	"github.com/starford/deckwright/internal/parser"
)

// Handler holds API route handlers.
type Handler struct {
	svc *deckservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *deckservice.Service) *Handler {
	return &Handler{svc: svc}
}

// BuildDeck handles POST /api/decks/build.
//
//	@Summary		Build a 100-card Commander deck
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BuildDeckRequest	true	"Build request"
//	@Success		201		{object}	BuiltDeck
//	@Failure		400		{object}	buildError
//	@Failure		500		{object}	buildError
//	@Security		BearerAuth
//	@Router			/decks/build [post]
func (h *Handler) BuildDeck(w http.ResponseWriter, r *http.Request) {
	var req BuildDeckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, buildErrorBody("InvalidRequest", "invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, buildErrorBody("InvalidRequest", err.Error()))
		return
	}

	built, err := h.svc.Build(r.Context(), req.Domain())
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCommander) {
			writeJSON(w, http.StatusBadRequest, buildErrorBody("InvalidCommander", err.Error()))
			return
		}
		slog.Error("build deck failed", slog.String("commander", req.CommanderName), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, buildErrorBody("DeckBuildFailed", err.Error()))
		return
	}
	writeJSON(w, http.StatusCreated, built)
}

// ListDecks handles GET /api/decks.
//
//	@Summary		List stored decks, newest first
//	@Tags			decks
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			commander	query		string	false	"Filter by commander"
//	@Success		200			{object}	DeckListResponse
//	@Security		BearerAuth
//	@Router			/decks [get]
func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.List(r.Context(), limit, offset, q.Get("commander"))
	if err != nil {
		slog.Error("list decks failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, DeckListResponse{Decks: items, Total: total})
}

// GetDeck handles GET /api/decks/{id}.
//
//	@Summary		Get a stored deck with its cards
//	@Tags			decks
//	@Produce		json
//	@Param			id				path		string	true	"Deck id"
//	@Param			If-None-Match	header		string	false	"Decklist checksum from a previous ETag"
//	@Success		200				{object}	models.DeckRecord
//	@Success		304				"Decklist unchanged"
//	@Failure		404				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{id} [get]
func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cs, err := h.svc.Checksum(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, "get deck", id, err)
		return
	}
	etag := `"` + cs + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match == etag || strings.Trim(match, `"`) == cs {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	deck, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, "get deck", id, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// DeleteDeck handles DELETE /api/decks/{id}.
//
//	@Summary		Delete a stored deck
//	@Tags			decks
//	@Param			id	path	string	true	"Deck id"
//	@Success		204	"Deck deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{id} [delete]
func (h *Handler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeLookupError(w, "delete deck", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportDeck handles POST /api/decks/{id}/export.
//
//	@Summary		Write a Moxfield text export of a deck
//	@Tags			exports
//	@Produce		json
//	@Param			id			path		string	true	"Deck id"
//	@Param			If-Match	header		string	false	"Checksum of the export being replaced"
//	@Success		201			{object}	deckservice.ExportResult
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{id}/export [post]
func (h *Handler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	res, err := h.svc.Export(r.Context(), id, ifMatch)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
			return
		}
		h.writeLookupError(w, "export deck", id, err)
		return
	}
	w.Header().Set("ETag", `"`+res.Checksum+`"`)
	writeJSON(w, http.StatusCreated, res)
}

// ValidateDecklist handles POST /api/decks/validate.
//
//	@Summary		Validate a Moxfield-style decklist
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ValidateDecklistRequest	true	"Decklist"
//	@Success		200		{object}	deckservice.ValidationReport
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/validate [post]
func (h *Handler) ValidateDecklist(w http.ResponseWriter, r *http.Request) {
	var req ValidateDecklistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	report, err := h.svc.Validate(r.Context(), req.Decklist, req.Commander, req.Colors, req.RCMode)
	if err != nil {
		if errors.Is(err, parser.ErrEmptyDecklist) || errors.Is(err, deckservice.ErrNoCommander) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		slog.Error("validate decklist failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Analyze handles POST /api/analysis.
//
//	@Summary		Analyze a stored deck or an explicit card list
//	@Tags			analysis
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AnalysisRequest	true	"Deck selection"
//	@Success		200		{object}	models.DeckAnalysis
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/analysis [post]
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	cards := req.Deck
	if req.DeckID != "" {
		deck, err := h.svc.Get(r.Context(), req.DeckID)
		if err != nil {
			h.writeLookupError(w, "analyze", req.DeckID, err)
			return
		}
		cards = deck.Cards
	}
	writeJSON(w, http.StatusOK, h.svc.Analyze(r.Context(), cards))
}

// Autocomplete handles GET /api/cards/autocomplete.
//
//	@Summary		Suggest card names
//	@Tags			cards
//	@Produce		json
//	@Param			q	query		string	true	"Text to autocomplete"
//	@Success		200	{object}	AutocompleteResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/autocomplete [get]
func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	names, err := h.svc.Autocomplete(r.Context(), q)
	if err != nil {
		slog.Error("autocomplete failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("card lookup failed"))
		return
	}
	writeJSON(w, http.StatusOK, AutocompleteResponse{Suggestions: names})
}

// SearchCards handles GET /api/cards/search.
//
//	@Summary		Full-text card search
//	@Tags			cards
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			page	query		int		false	"Result page (default 1)"
//	@Success		200		{object}	CardSearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/search [get]
func (h *Handler) SearchCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody("page must be a positive integer"))
			return
		}
		page = n
	}

	cards, err := h.svc.SearchCards(r.Context(), query, page)
	if err != nil {
		slog.Error("card search failed", slog.String("query", query), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("card lookup failed"))
		return
	}
	writeJSON(w, http.StatusOK, CardSearchResponse{Cards: cards})
}

// CardByName handles GET /api/cards/by-name.
//
//	@Summary		Look up a card by name
//	@Tags			cards
//	@Produce		json
//	@Param			name	query		string	true	"Card name"
//	@Param			fuzzy	query		bool	false	"Fuzzy match (default true)"
//	@Success		200		{object}	scryfall.CardSummary
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/by-name [get]
func (h *Handler) CardByName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	fuzzy := true
	if v := q.Get("fuzzy"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("fuzzy must be a boolean"))
			return
		}
		fuzzy = b
	}

	card, err := h.svc.CardByName(r.Context(), name, fuzzy)
	if err != nil {
		h.writeLookupError(w, "card by name", name, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// DecksWithCard handles GET /api/cards/decks.
//
//	@Summary		List stored decks containing a card
//	@Tags			cards
//	@Produce		json
//	@Param			name	query		string	true	"Card name or alias"
//	@Success		200		{object}	DecksWithCardResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/decks [get]
func (h *Handler) DecksWithCard(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	ids, err := h.svc.DecksWithCard(r.Context(), name)
	if err != nil {
		slog.Error("decks with card failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, DecksWithCardResponse{Card: name, Decks: ids})
}

// ResolveCard handles GET /api/snapshot/resolve.
//
//	@Summary		Show how the snapshot resolves a card name
//	@Tags			snapshot
//	@Produce		json
//	@Param			name	query		string	true	"Card name or alias"
//	@Success		200		{object}	deckservice.CardResolution
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/snapshot/resolve [get]
func (h *Handler) ResolveCard(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Resolve(r.Context(), name))
}

// Rules handles GET /api/rules.
//
//	@Summary		Get the deck construction rule table
//	@Tags			snapshot
//	@Produce		json
//	@Success		200	{object}	rules.CoreRules
//	@Security		BearerAuth
//	@Router			/rules [get]
func (h *Handler) Rules(w http.ResponseWriter, _ *http.Request) {
	loaded := h.svc.Loaded()
	aliases, overrides, banned := loaded.Engine.Snapshot().Len()
	writeJSON(w, http.StatusOK, map[string]any{
		"rules": loaded.Engine.Rules(),
		"snapshot": map[string]any{
			"fingerprint": loaded.Fingerprint(),
			"aliases":     aliases,
			"overrides":   overrides,
			"banned":      banned,
			"cards":       len(loaded.Engine.Cards()),
			"fallback":    loaded.Fallback,
		},
	})
}

func (h *Handler) writeLookupError(w http.ResponseWriter, op, key string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	slog.Error(op+" failed", slog.String("key", key), slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
