package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/deckwright/internal/deckservice"
	"github.com/starford/deckwright/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	src := testutil.WriteData(t)
	_, exports := testutil.TestExports(t)
	svc := deckservice.NewService(testutil.TestLoaded(t, src), testutil.TestDB(t), exports,
		deckservice.WithLogger(testutil.Logger()))
	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"build_deck":           srv.buildDeck,
		"validate_decklist":    srv.validateDecklist,
		"resolve_card":         srv.resolveCard,
		"find_decks_with_card": srv.findDecksWithCard,
		"analyze_deck":         srv.analyzeDeck,
		"export_deck":          srv.exportDeck,
		"get_deck_rules":       srv.getDeckRules,
		"get_decklist_format":  srv.getDecklistFormat,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func buildID(t *testing.T, srv *Server, commander string) string {
	t.Helper()
	r := callTool(t, srv, "build_deck", map[string]interface{}{"commander": commander})
	if r.IsError {
		t.Fatalf("build_deck: %s", resultText(r))
	}
	var built struct {
		ID   string   `json:"id"`
		Deck []string `json:"deck"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &built); err != nil {
		t.Fatalf("decode build: %v", err)
	}
	if len(built.Deck) != 100 {
		t.Fatalf("deck size = %d", len(built.Deck))
	}
	return built.ID
}

func TestBuildDeckTool(t *testing.T) {
	srv := testServer(t)
	if buildID(t, srv, "atraxa") == "" {
		t.Error("empty deck id")
	}

	r := callTool(t, srv, "build_deck", map[string]interface{}{"commander": "Golos, Tireless Pilgrim"})
	if !r.IsError || !strings.Contains(resultText(r), "invalid commander") {
		t.Errorf("banned commander result = %q", resultText(r))
	}

	r = callTool(t, srv, "build_deck", map[string]interface{}{"commander": "atraxa", "rc_mode": "turbo"})
	if !r.IsError {
		t.Error("expected error for unknown rc_mode")
	}

	r = callTool(t, srv, "build_deck", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing commander")
	}
}

func TestBuildDeckTool_Colors(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "build_deck", map[string]interface{}{"commander": "Homebrew Legend", "colors": "u, r"})
	if r.IsError {
		t.Fatalf("build_deck: %s", resultText(r))
	}
	var built struct {
		ColorIdentity []string `json:"color_identity"`
	}
	_ = json.Unmarshal([]byte(resultText(r)), &built)
	if strings.Join(built.ColorIdentity, "") != "UR" {
		t.Errorf("color identity = %v, want [U R]", built.ColorIdentity)
	}
}

func TestValidateDecklistTool(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "validate_decklist", map[string]interface{}{
		"decklist": "Commander\n1 Sonic the Hedgehog\n\nDeck\n1 Cyclonic Rift\n2 Sol Ring\n",
	})
	if r.IsError {
		t.Fatalf("validate: %s", resultText(r))
	}
	var report deckservice.ValidationReport
	_ = json.Unmarshal([]byte(resultText(r)), &report)
	if report.Commander != "Sonic the Hedgehog" {
		t.Errorf("commander = %q", report.Commander)
	}
	if !report.Status.HasBannedCards || report.Status.IsValid100 {
		t.Errorf("status = %+v", report.Status)
	}

	r = callTool(t, srv, "validate_decklist", map[string]interface{}{"decklist": "1 Sol Ring"})
	if !r.IsError {
		t.Error("expected error without commander")
	}
}

func TestValidateDecklistTool_Colors(t *testing.T) {
	srv := testServer(t)
	args := map[string]interface{}{
		"decklist":  "1 Island\n1 Fact or Fiction\n",
		"commander": "Mono Blue",
		"colors":    "U",
	}
	r := callTool(t, srv, "validate_decklist", args)
	if r.IsError {
		t.Fatalf("validate: %s", resultText(r))
	}
	var report deckservice.ValidationReport
	_ = json.Unmarshal([]byte(resultText(r)), &report)
	if report.Status.HasCIViolations {
		t.Errorf("violations = %v, want none", report.Status.CIViolations)
	}

	delete(args, "colors")
	r = callTool(t, srv, "validate_decklist", args)
	_ = json.Unmarshal([]byte(resultText(r)), &report)
	if !report.Status.HasCIViolations {
		t.Error("colorless commander should reject blue cards")
	}
}

func TestResolveCardTool(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "resolve_card", map[string]interface{}{"name": "bolt"})
	var res deckservice.CardResolution
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if res.Canonical != "Lightning Bolt" || !res.Known {
		t.Errorf("resolve = %+v", res)
	}
}

func TestFindDecksWithCardTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "find_decks_with_card", map[string]interface{}{"name": "Sol Ring"})
	if resultText(r) != "no decks found" {
		t.Errorf("empty store = %q", resultText(r))
	}

	id := buildID(t, srv, "atraxa")
	r = callTool(t, srv, "find_decks_with_card", map[string]interface{}{"name": "Sol Ring"})
	if resultText(r) != id {
		t.Errorf("decks = %q, want %s", resultText(r), id)
	}
}

func TestAnalyzeDeckTool(t *testing.T) {
	srv := testServer(t)
	id := buildID(t, srv, "atraxa")

	r := callTool(t, srv, "analyze_deck", map[string]interface{}{"deck_id": id})
	if r.IsError || !strings.Contains(resultText(r), "mana_curve_buckets") {
		t.Errorf("analyze by id = %q", resultText(r))
	}
	r = callTool(t, srv, "analyze_deck", map[string]interface{}{"decklist": "1 Sol Ring\n3 Forest"})
	if r.IsError {
		t.Errorf("analyze by list = %q", resultText(r))
	}
	r = callTool(t, srv, "analyze_deck", map[string]interface{}{"deck_id": "missing"})
	if !r.IsError {
		t.Error("expected error for missing deck")
	}
	r = callTool(t, srv, "analyze_deck", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without input")
	}
}

func TestExportDeckTool(t *testing.T) {
	srv := testServer(t)
	id := buildID(t, srv, "sonic")

	r := callTool(t, srv, "export_deck", map[string]interface{}{"deck_id": id})
	if r.IsError {
		t.Fatalf("export: %s", resultText(r))
	}
	var res exportResult
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if !strings.HasPrefix(res.Path, "sonic-the-hedgehog-") || res.URL != "/api/exports/"+res.Path {
		t.Errorf("export = %+v", res)
	}
	if !strings.HasPrefix(res.Content, "Commander\n1 Sonic the Hedgehog\n") {
		t.Errorf("content = %q", res.Content)
	}

	r = callTool(t, srv, "export_deck", map[string]interface{}{"deck_id": "missing"})
	if !r.IsError {
		t.Error("expected error for missing deck")
	}
}

func TestRulesAndFormat(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_deck_rules", nil)
	if !strings.Contains(resultText(r), `"target_slots"`) {
		t.Errorf("rules = %q", resultText(r))
	}
	r = callTool(t, srv, "get_decklist_format", nil)
	if resultText(r) != DecklistFormatContract {
		t.Error("format tool should return the contract")
	}

	contents, err := srv.readFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != formatURI {
		t.Errorf("resource contents = %+v", contents[0])
	}
}
