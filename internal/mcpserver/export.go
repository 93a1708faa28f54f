package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/deckwright/internal/apperr"
)

type exportResult struct {
	DeckID   string `json:"deckId"`
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	URL      string `json:"url"`
	Content  string `json:"content"`
}

func (s *Server) exportDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("deck_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.Export(ctx, id, "")
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("deck not found: %s", id)), nil
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(exportResult{
		DeckID:   res.DeckID,
		Path:     res.Path,
		Checksum: res.Checksum,
		URL:      "/api/exports/" + res.Path,
		Content:  res.Content,
	})
}
