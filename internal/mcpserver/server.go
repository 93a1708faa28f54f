// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes deckwright tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/deckwright/internal/apperr"
	"github.com/starford/deckwright/internal/deckservice"
	"github.com/starford/deckwright/internal/models"
)

const formatURI = "deckwright://decklist-format"

// Server wraps the MCP server with deckwright tools.
type Server struct {
	mcp *server.MCPServer
	svc *deckservice.Service
}

// New creates a new MCP server with all deckwright tools registered.
func New(svc *deckservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Deckwright",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("build_deck",
		mcp.WithDescription("Build a 100-card Commander deck around a commander and store it. "+
			"Returns the deck id, the decklist, stats and the validation line."),
		mcp.WithString("commander", mcp.Required(), mcp.Description("Commander name or alias")),
		mcp.WithString("rc_mode", mcp.Description("Reconciliation mode: strict, hybrid or offline")),
		mcp.WithString("language", mcp.Description("Output language tag, e.g. EN or DE")),
		mcp.WithString("colors", mcp.Description("Comma-separated color identity for commanders missing from the catalog, e.g. W,U")),
		mcp.WithBoolean("allow_loops", mcp.Description("Allow infinite-combo pieces")),
	), s.buildDeck)

	s.mcp.AddTool(mcp.NewTool("validate_decklist",
		mcp.WithDescription("Check a decklist for size, bans, color identity and duplicates. "+
			"Read the format via get_decklist_format or the "+formatURI+" resource first."),
		mcp.WithString("decklist", mcp.Required(), mcp.Description("Decklist text")),
		mcp.WithString("commander", mcp.Description("Commander name; overrides the list")),
		mcp.WithString("colors", mcp.Description("Comma-separated color identity for a commander missing from the catalog, e.g. U,B")),
		mcp.WithString("rc_mode", mcp.Description("Reconciliation mode for the validation line")),
	), s.validateDecklist)

	s.mcp.AddTool(mcp.NewTool("resolve_card",
		mcp.WithDescription("Resolve a card name or alias against the snapshot and catalog."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Card name or alias")),
	), s.resolveCard)

	s.mcp.AddTool(mcp.NewTool("find_decks_with_card",
		mcp.WithDescription("List ids of stored decks that contain a card, newest first."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Card name or alias")),
	), s.findDecksWithCard)

	s.mcp.AddTool(mcp.NewTool("analyze_deck",
		mcp.WithDescription("Mana curve, color symbols, role counts and warnings for a stored deck or a list of names."),
		mcp.WithString("deck_id", mcp.Description("Stored deck id")),
		mcp.WithString("decklist", mcp.Description("Decklist text, used when deck_id is empty")),
	), s.analyzeDeck)

	s.mcp.AddTool(mcp.NewTool("export_deck",
		mcp.WithDescription("Write a stored deck as Moxfield import text to the exports directory."),
		mcp.WithString("deck_id", mcp.Required(), mcp.Description("Stored deck id")),
	), s.exportDeck)

	s.mcp.AddTool(mcp.NewTool("get_deck_rules",
		mcp.WithDescription("Returns the rule table: reconciliation modes, role quotas and the validation template."),
	), s.getDeckRules)

	s.mcp.AddTool(mcp.NewTool("get_decklist_format",
		mcp.WithDescription("Returns the decklist format contract."),
	), s.getDecklistFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Decklist Format",
			mcp.WithResourceDescription("Text format accepted by validate_decklist and produced by export_deck."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func optString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}

// optColors splits the comma-separated colors argument.
func optColors(req mcp.CallToolRequest) []string {
	var colors []string
	for _, c := range strings.Split(optString(req, "colors"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			colors = append(colors, c)
		}
	}
	return colors
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) buildDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commander, err := req.RequireString("commander")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	br := models.DeckBuildRequest{
		CommanderName: commander,
		RCMode:        optString(req, "rc_mode"),
		Language:      optString(req, "language"),
		AllowLoops:    req.GetBool("allow_loops", false),
	}
	br.Colors = optColors(req)
	if br.RCMode != "" && !s.svc.Engine().Rules().IsRCMode(br.RCMode) {
		return mcp.NewToolResultError("unknown rc_mode: " + br.RCMode), nil
	}

	built, err := s.svc.Build(ctx, br)
	if errors.Is(err, apperr.ErrInvalidCommander) {
		return mcp.NewToolResultError("invalid commander: " + err.Error()), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(built)
}

func (s *Server) validateDecklist(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("decklist")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.svc.Validate(ctx, text, optString(req, "commander"), optColors(req), optString(req, "rc_mode"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) resolveCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Resolve(ctx, name))
}

func (s *Server) findDecksWithCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := s.svc.DecksWithCard(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText("no decks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(ids, "\n")), nil
}

func (s *Server) analyzeDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if id := optString(req, "deck_id"); id != "" {
		rec, err := s.svc.Get(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError("deck not found: " + id), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(s.svc.Analyze(ctx, rec.Cards))
	}

	text := optString(req, "decklist")
	if text == "" {
		return mcp.NewToolResultError("deck_id or decklist is required"), nil
	}
	names, err := s.svc.ParseNames(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Analyze(ctx, names))
}

func (s *Server) getDeckRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Engine().Rules())
}

func (s *Server) getDecklistFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DecklistFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DecklistFormatContract,
		},
	}, nil
}
