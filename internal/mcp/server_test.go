package mcp

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/casekit/letter-forge/internal/config"
	"github.com/casekit/letter-forge/internal/learning"
	"github.com/casekit/letter-forge/internal/search"
	"github.com/casekit/letter-forge/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := storage.NewStorageAt(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("storage init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	indexer, err := search.NewIndexer(store, nil)
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	t.Cleanup(func() { indexer.Close() })

	return NewServer(config.NewConfig(), store, learning.NewEngine(store), nil, indexer)
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}

	req := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":%s}`, params)
	resp, err := s.handleRequest([]byte(req))
	if err != nil {
		t.Fatalf("handleRequest failed: %v", err)
	}
	return resp
}

func toolText(t *testing.T, resp *MCPResponse) string {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("tool returned error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result shape: %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) == 0 {
		t.Fatalf("unexpected content shape: %#v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	return text
}

// TestHandleInitialize verifies the initialize handshake.
func TestHandleInitialize(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleRequest([]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	if err != nil {
		t.Fatalf("handleRequest failed: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("initialize returned error: %+v", resp.Error)
	}

	result := resp.Result.(map[string]interface{})
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != "letter-forge" {
		t.Errorf("serverInfo.name = %v", info["name"])
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
}

// TestHandleToolsList verifies all seven tools are advertised.
func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleRequest([]byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	if err != nil {
		t.Fatalf("handleRequest failed: %v", err)
	}

	result := resp.Result.(map[string]interface{})
	tools := result["tools"].([]map[string]interface{})
	if len(tools) != 7 {
		t.Fatalf("expected 7 tools, got %d", len(tools))
	}

	want := map[string]bool{
		"letter_extract":     false,
		"letter_match":       false,
		"letter_map_set":     false,
		"letter_generate":    false,
		"letter_feedback":    false,
		"letter_search":      false,
		"letter_suggestions": false,
	}
	for _, tool := range tools {
		name := tool["name"].(string)
		if _, ok := want[name]; !ok {
			t.Errorf("unexpected tool %q", name)
		}
		want[name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q missing", name)
		}
	}
}

// TestUnknownMethod verifies the JSON-RPC method-not-found code.
func TestUnknownMethod(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleRequest([]byte(`{"jsonrpc":"2.0","id":3,"method":"nope"}`))
	if err != nil {
		t.Fatalf("handleRequest failed: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Errorf("error = %+v, want code -32601", resp.Error)
	}
}

// TestUnknownTool verifies the invalid-params code for unknown tool names.
func TestUnknownTool(t *testing.T) {
	s := newTestServer(t)

	resp := callTool(t, s, "letter_destroy", nil)
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("error = %+v, want code -32602", resp.Error)
	}
}

// TestMalformedRequest verifies invalid JSON is surfaced as an error.
func TestMalformedRequest(t *testing.T) {
	s := newTestServer(t)

	if _, err := s.handleRequest([]byte(`{not json`)); err == nil {
		t.Error("malformed request accepted")
	}
}

// TestLetterExtract verifies placeholder extraction through the tool surface.
func TestLetterExtract(t *testing.T) {
	s := newTestServer(t)

	text := toolText(t, callTool(t, s, "letter_extract", map[string]interface{}{
		"template": "Dear [CLIENT NAME], re [CASE NUMBER].",
	}))
	if !strings.Contains(text, "Found 2 placeholder(s)") {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(text, "[CLIENT NAME]") || !strings.Contains(text, "[CASE NUMBER]") {
		t.Errorf("placeholders missing from %q", text)
	}

	resp := callTool(t, s, "letter_extract", map[string]interface{}{"template": "  "})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("empty template error = %+v", resp.Error)
	}
}

// TestSessionWorkflow drives match, map_set, generate, and feedback in
// sequence the way an MCP client would.
func TestSessionWorkflow(t *testing.T) {
	s := newTestServer(t)

	matchText := toolText(t, callTool(t, s, "letter_match", map[string]interface{}{
		"template": "Dear [CLIENT NAME], you owe [AMOUNT OWED].",
		"fields": map[string]interface{}{
			"Client_Name__c": "Jane Doe",
		},
	}))
	if !strings.Contains(matchText, `[CLIENT NAME] → "Jane Doe"`) {
		t.Errorf("match output = %q", matchText)
	}
	if !strings.Contains(matchText, "1 placeholder(s) unmatched") {
		t.Errorf("unmatched hint missing from %q", matchText)
	}

	setText := toolText(t, callTool(t, s, "letter_map_set", map[string]interface{}{
		"placeholder": "[AMOUNT OWED]",
		"value":       "$4,500.00",
	}))
	if !strings.Contains(setText, "$4,500.00") {
		t.Errorf("map_set output = %q", setText)
	}

	genText := toolText(t, callTool(t, s, "letter_generate", map[string]interface{}{}))
	if !strings.Contains(genText, "Letter saved (id:") {
		t.Errorf("generate output missing letter id: %q", genText)
	}
	if !strings.Contains(genText, "Dear Jane Doe, you owe $4,500.00.") {
		t.Errorf("generate output = %q", genText)
	}

	fbText := toolText(t, callTool(t, s, "letter_feedback", map[string]interface{}{
		"feedback": storage.FeedbackPositive,
		"notes":    "looks right",
	}))
	if !strings.Contains(fbText, "positive") {
		t.Errorf("feedback output = %q", fbText)
	}

	count, _ := s.store.CountEvents()
	if count != 2 {
		t.Errorf("CountEvents = %d, want 2 (generation + feedback)", count)
	}
}

// TestMapSetWithoutSession verifies session preconditions.
func TestMapSetWithoutSession(t *testing.T) {
	s := newTestServer(t)

	resp := callTool(t, s, "letter_map_set", map[string]interface{}{
		"placeholder": "[X]",
		"value":       "y",
	})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("error = %+v", resp.Error)
	}
	if !strings.Contains(resp.Error.Message, "letter_match") {
		t.Errorf("error message should point at letter_match: %q", resp.Error.Message)
	}
}

// TestGenerateWithoutSession verifies generation needs a mapping session.
func TestGenerateWithoutSession(t *testing.T) {
	s := newTestServer(t)

	resp := callTool(t, s, "letter_generate", map[string]interface{}{})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("error = %+v", resp.Error)
	}
}

// TestFeedbackWithoutLetter verifies feedback needs a generated letter.
func TestFeedbackWithoutLetter(t *testing.T) {
	s := newTestServer(t)

	resp := callTool(t, s, "letter_feedback", map[string]interface{}{
		"feedback": storage.FeedbackPositive,
	})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("error = %+v", resp.Error)
	}
}

// TestLetterSearchEmpty verifies search over an empty index.
func TestLetterSearchEmpty(t *testing.T) {
	s := newTestServer(t)

	text := toolText(t, callTool(t, s, "letter_search", map[string]interface{}{
		"query": "overtime",
	}))
	if !strings.Contains(text, "No letters match") {
		t.Errorf("text = %q", text)
	}
}

// TestLetterSearchFindsGenerated verifies generated letters are indexed and
// searchable within the same session.
func TestLetterSearchFindsGenerated(t *testing.T) {
	s := newTestServer(t)

	callTool(t, s, "letter_match", map[string]interface{}{
		"template": "Demand for unpaid overtime owed to [CLIENT NAME].",
		"fields":   map[string]interface{}{"Client_Name__c": "Jane Doe"},
	})
	toolText(t, callTool(t, s, "letter_generate", map[string]interface{}{}))

	text := toolText(t, callTool(t, s, "letter_search", map[string]interface{}{
		"query": "overtime",
	}))
	if !strings.Contains(text, "Jane Doe") {
		t.Errorf("search output = %q", text)
	}
}

// TestLetterSuggestionsHealthy verifies the empty-history message.
func TestLetterSuggestionsHealthy(t *testing.T) {
	s := newTestServer(t)

	text := toolText(t, callTool(t, s, "letter_suggestions", nil))
	if !strings.Contains(text, "No suggestions") {
		t.Errorf("text = %q", text)
	}
}

// TestRecordFromArguments verifies JSON argument coercion into a record.
func TestRecordFromArguments(t *testing.T) {
	rec, err := recordFromArguments(map[string]interface{}{
		"name":   "Jane",
		"hours":  float64(12.5),
		"active": true,
		"gap":    nil,
	})
	if err != nil {
		t.Fatalf("recordFromArguments failed: %v", err)
	}

	// Keys are sorted for deterministic matching.
	want := []string{"active", "gap", "hours", "name"}
	for i, key := range want {
		if rec.Keys[i] != key {
			t.Errorf("Keys[%d] = %q, want %q", i, rec.Keys[i], key)
		}
	}
	if rec.Get("hours") != "12.5" {
		t.Errorf("hours = %q", rec.Get("hours"))
	}
	if rec.Get("active") != "true" {
		t.Errorf("active = %q", rec.Get("active"))
	}
	if rec.Get("gap") != "" {
		t.Errorf("gap = %q", rec.Get("gap"))
	}

	if _, err := recordFromArguments(map[string]interface{}{"bad": []interface{}{1}}); err == nil {
		t.Error("unsupported value type accepted")
	}

	empty, err := recordFromArguments(nil)
	if err != nil {
		t.Fatalf("nil fields: %v", err)
	}
	if !empty.IsZero() {
		t.Error("nil fields should yield a zero record")
	}
}
