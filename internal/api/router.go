package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/deckwright/internal/deckservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *deckservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	eh := NewExportHandler(svc)

	r := chi.NewRouter()
	r.Use(CORSMiddleware)
	r.Use(AuthMiddleware(authEnabled, token))

	// Decks.
	r.Post("/decks/build", h.BuildDeck)
	r.Post("/decks/validate", h.ValidateDecklist)
	r.Get("/decks", h.ListDecks)
	r.Get("/decks/{id}", h.GetDeck)
	r.Delete("/decks/{id}", h.DeleteDeck)
	r.Post("/decks/{id}/export", h.ExportDeck)

	// Analysis.
	r.Post("/analysis", h.Analyze)

	// Cards.
	r.Get("/cards/autocomplete", h.Autocomplete)
	r.Get("/cards/search", h.SearchCards)
	r.Get("/cards/by-name", h.CardByName)
	r.Get("/cards/decks", h.DecksWithCard)

	// Snapshot and rules.
	r.Get("/snapshot/resolve", h.ResolveCard)
	r.Get("/rules", h.Rules)

	// Exports.
	r.Get("/exports", eh.List)
	r.Get("/exports/{filename}", eh.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
