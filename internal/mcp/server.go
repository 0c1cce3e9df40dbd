/*
Package mcp implements the MCP server that exposes letter tools.

The server uses stdio transport and exposes 7 tools:
  - letter_extract: Extract placeholders from a template
  - letter_match: Match template placeholders against a case record
  - letter_map_set: Override a single placeholder value in the session
  - letter_generate: Generate a demand letter from the session mapping
  - letter_feedback: Record user feedback on the last generated letter
  - letter_search: Search previously generated letters
  - letter_suggestions: Get improvement suggestions from learning history
*/
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/casekit/letter-forge/internal/config"
	"github.com/casekit/letter-forge/internal/generate"
	"github.com/casekit/letter-forge/internal/learning"
	"github.com/casekit/letter-forge/internal/mapping"
	"github.com/casekit/letter-forge/internal/record"
	"github.com/casekit/letter-forge/internal/search"
	"github.com/casekit/letter-forge/internal/storage"
	"github.com/casekit/letter-forge/internal/template"
)

// Server represents the letter-forge MCP server.
type Server struct {
	config  *config.Config
	store   storage.Storage
	engine  *learning.Engine
	gen     generate.Generator
	indexer *search.Indexer

	// Session state carried across tool calls on one stdio connection.
	session       *mapping.Store
	sessionRecord record.Record
	lastContent   string
	lastTemplate  string
}

// NewServer creates a new MCP server with the given configuration.
// gen may be nil; letter_generate then falls back to offline rendering.
func NewServer(cfg *config.Config, store storage.Storage, engine *learning.Engine, gen generate.Generator, indexer *search.Indexer) *Server {
	return &Server{
		config:  cfg,
		store:   store,
		engine:  engine,
		gen:     gen,
		indexer: indexer,
	}
}

// Run starts the MCP server using stdio transport.
// This blocks until stdin is closed.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()

		response, err := s.handleRequest(line)
		if err != nil {
			s.sendError(err)
			continue
		}

		if response != nil {
			s.sendResponse(response)
		}
	}

	return scanner.Err()
}

// MCPRequest represents an incoming MCP JSON-RPC request.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing MCP JSON-RPC response.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents an MCP error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handleRequest processes an incoming MCP request.
func (s *Server) handleRequest(data []byte) (*MCPResponse, error) {
	var req MCPRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(&req)
	case "tools/list":
		return s.handleToolsList(&req)
	case "tools/call":
		return s.handleToolsCall(&req)
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &MCPError{Code: -32601, Message: "Method not found"},
		}, nil
	}
}

// handleInitialize handles the MCP initialize request.
func (s *Server) handleInitialize(req *MCPRequest) (*MCPResponse, error) {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "letter-forge",
				"version": "0.1.0",
			},
		},
	}, nil
}

// handleToolsList returns the list of available tools.
func (s *Server) handleToolsList(req *MCPRequest) (*MCPResponse, error) {
	tools := []map[string]interface{}{
		{
			"name": "letter_extract",
			"description": `Extract placeholders from a demand letter template.

WHEN TO USE: Call this first to see which fields a template needs.

Returns: List of placeholders with their inferred categories
(personal, employment, financial, dates, other).`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template": map[string]interface{}{
						"type":        "string",
						"description": "Template text containing [BRACKETED] placeholders",
					},
				},
				"required": []string{"template"},
			},
		},
		{
			"name": "letter_match",
			"description": `Match template placeholders against a case record.

WHEN TO USE: After letter_extract, to fill placeholder values from
client data. Starts a mapping session used by letter_map_set and
letter_generate.

WORKFLOW:
1. letter_match(template, fields) → see what matched
2. letter_map_set(placeholder, value) → fix anything that didn't
3. letter_generate() → produce the letter`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"template": map[string]interface{}{
						"type":        "string",
						"description": "Template text containing [BRACKETED] placeholders",
					},
					"fields": map[string]interface{}{
						"type":        "object",
						"description": "Case record as flat field-name to value pairs",
					},
				},
				"required": []string{"template"},
			},
		},
		{
			"name": "letter_map_set",
			"description": `Override a single placeholder value in the current session.

WHEN TO USE: After letter_match, when a placeholder matched the wrong
field or matched nothing.`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"placeholder": map[string]interface{}{
						"type":        "string",
						"description": "Placeholder raw text, e.g. [CLIENT NAME]",
					},
					"value": map[string]interface{}{
						"type":        "string",
						"description": "Replacement value",
					},
				},
				"required": []string{"placeholder", "value"},
			},
		},
		{
			"name": "letter_generate",
			"description": `Generate a demand letter from the current mapping session.

WHEN TO USE: After letter_match (and any letter_map_set fixes).

Saves the letter, records a learning event, and returns the letter text.`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"autoLearn": map[string]interface{}{
						"type":        "boolean",
						"description": "Fill remaining empty values from saved mapping snapshots",
					},
					"savePattern": map[string]interface{}{
						"type":        "string",
						"description": "Optional name to save the session mappings under for reuse",
					},
				},
			},
		},
		{
			"name": "letter_feedback",
			"description": `Record user feedback on the last generated letter.

WHEN TO USE: After the user reviews a generated letter. Feedback drives
pattern success rates and future prompt enrichment.`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"feedback": map[string]interface{}{
						"type":        "string",
						"description": "User verdict on the letter",
						"enum":        []string{storage.FeedbackPositive, storage.FeedbackNegative},
					},
					"notes": map[string]interface{}{
						"type":        "string",
						"description": "Optional improvement notes",
					},
				},
				"required": []string{"feedback"},
			},
		},
		{
			"name": "letter_search",
			"description": `Search previously generated letters by plaintiff name or content.

Returns: Ranked matches with snippets.`,
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Natural language search query",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "Maximum results (default 5)",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			"name": "letter_suggestions",
			"description": `Get improvement suggestions derived from learning history.

WHEN TO USE: When generated letters have received negative feedback, or
to review which template patterns perform poorly.`,
			"inputSchema": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": tools,
		},
	}, nil
}

// handleToolsCall handles tool execution requests.
func (s *Server) handleToolsCall(req *MCPRequest) (*MCPResponse, error) {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	var result interface{}
	var err error

	switch params.Name {
	case "letter_extract":
		templateText, _ := params.Arguments["template"].(string)
		result, err = s.execExtract(templateText)
	case "letter_match":
		templateText, _ := params.Arguments["template"].(string)
		fields, _ := params.Arguments["fields"].(map[string]interface{})
		result, err = s.execMatch(templateText, fields)
	case "letter_map_set":
		placeholder, _ := params.Arguments["placeholder"].(string)
		value, _ := params.Arguments["value"].(string)
		result, err = s.execMapSet(placeholder, value)
	case "letter_generate":
		autoLearn, _ := params.Arguments["autoLearn"].(bool)
		savePattern, _ := params.Arguments["savePattern"].(string)
		result, err = s.execGenerate(autoLearn, savePattern)
	case "letter_feedback":
		feedback, _ := params.Arguments["feedback"].(string)
		notes, _ := params.Arguments["notes"].(string)
		result, err = s.execFeedback(feedback, notes)
	case "letter_search":
		query, _ := params.Arguments["query"].(string)
		limit, _ := params.Arguments["limit"].(float64)
		result, err = s.execSearch(query, int(limit))
	case "letter_suggestions":
		result, err = s.execSuggestions()
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &MCPError{Code: -32602, Message: fmt.Sprintf("Unknown tool: %s", params.Name)},
		}, nil
	}

	if err != nil {
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &MCPError{Code: -32000, Message: err.Error()},
		}, nil
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": result,
				},
			},
		},
	}, nil
}

// execExtract lists the placeholders found in a template.
func (s *Server) execExtract(templateText string) (string, error) {
	if strings.TrimSpace(templateText) == "" {
		return "", fmt.Errorf("template text is empty")
	}

	placeholders := template.Extract(templateText)
	if len(placeholders) == 0 {
		return "No placeholders found. Placeholders use [BRACKETED] syntax.", nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d placeholder(s):\n", len(placeholders)))
	for _, p := range placeholders {
		result.WriteString(fmt.Sprintf("  • %s (%s)\n", p.Raw, p.Category))
	}
	return result.String(), nil
}

// execMatch builds a new mapping session from a template and record fields.
func (s *Server) execMatch(templateText string, fields map[string]interface{}) (string, error) {
	rec, err := recordFromArguments(fields)
	if err != nil {
		return "", err
	}

	store, err := mapping.Build(templateText, rec, s.store)
	if err != nil {
		return "", fmt.Errorf("failed to build mappings: %w", err)
	}

	s.session = store
	s.sessionRecord = rec

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Mapped %d placeholder(s):\n", store.Len()))
	unmatched := 0
	for _, m := range store.Mappings() {
		if m.Value == "" {
			unmatched++
			result.WriteString(fmt.Sprintf("  • %s → (no match)\n", m.Placeholder))
			continue
		}
		result.WriteString(fmt.Sprintf("  • %s → %q\n", m.Placeholder, m.Value))
	}
	if unmatched > 0 {
		result.WriteString(fmt.Sprintf("\n%d placeholder(s) unmatched. Use letter_map_set to fill them.", unmatched))
	}
	return result.String(), nil
}

// execMapSet overrides one placeholder value in the active session.
func (s *Server) execMapSet(placeholder, value string) (string, error) {
	if s.session == nil {
		return "", fmt.Errorf("no active mapping session. Call letter_match first")
	}

	if !s.session.SetByPlaceholder(placeholder, value) {
		return "", fmt.Errorf("placeholder %q not found in current template", placeholder)
	}

	return fmt.Sprintf("Set %s → %q", placeholder, value), nil
}

// execGenerate produces a letter from the active session.
func (s *Server) execGenerate(autoLearn bool, savePattern string) (string, error) {
	if s.session == nil {
		return "", fmt.Errorf("no active mapping session. Call letter_match first")
	}

	templateText := s.session.TemplateText()
	overrides := s.session.Export()

	opts := generate.Options{
		TemplateText:  templateText,
		Record:        s.sessionRecord,
		Overrides:     overrides,
		AutoLearn:     autoLearn,
		SavePatternAs: savePattern,
		SaveLetter:    true,
		SkipLearning:  !s.config.LearningActive(),
	}

	res, err := generate.Run(context.Background(), opts, s.store, s.engine, s.gen)
	if err != nil {
		return "", err
	}

	s.lastContent = res.Content
	s.lastTemplate = templateText

	if s.indexer != nil && res.LetterID != "" {
		if letter, lookupErr := s.store.GetLetter(res.LetterID); lookupErr == nil && letter != nil {
			if indexErr := s.indexer.IndexLetter(*letter); indexErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to index letter: %v\n", indexErr)
			}
		}
	}

	var result strings.Builder
	if res.LetterID != "" {
		result.WriteString(fmt.Sprintf("Letter saved (id: %s)\n", res.LetterID))
	}
	if len(res.Unfilled) > 0 {
		result.WriteString(fmt.Sprintf("Unfilled placeholders: %s\n", strings.Join(res.Unfilled, ", ")))
	}
	result.WriteString("\n")
	result.WriteString(res.Content)
	return result.String(), nil
}

// execFeedback records user feedback on the last generated letter.
func (s *Server) execFeedback(feedback, notes string) (string, error) {
	if s.lastContent == "" {
		return "", fmt.Errorf("no letter generated in this session yet")
	}

	if err := s.engine.RecordFeedback(s.lastTemplate, s.lastContent, feedback, notes); err != nil {
		return "", fmt.Errorf("failed to record feedback: %w", err)
	}

	return fmt.Sprintf("Recorded %s feedback.", feedback), nil
}

// execSearch runs a hybrid search over saved letters.
func (s *Server) execSearch(query string, limit int) (string, error) {
	if s.indexer == nil {
		return "", fmt.Errorf("letter search is not available (index disabled)")
	}
	if limit <= 0 {
		limit = 5
	}

	results, err := s.indexer.SearchHybrid(context.Background(), query, limit, search.DefaultFusionConfig)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		return fmt.Sprintf("No letters match %q.", query), nil
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("Found %d letter(s) for %q:\n", len(results), query))
	for _, r := range results {
		out.WriteString(fmt.Sprintf("  • %s [%s] — %s\n", r.PlaintiffName, r.LetterID, r.Snippet))
	}
	return out.String(), nil
}

// execSuggestions returns improvement suggestions from learning history.
func (s *Server) execSuggestions() (string, error) {
	suggestions, err := s.engine.ImprovementSuggestions()
	if err != nil {
		return "", fmt.Errorf("failed to compute suggestions: %w", err)
	}

	if len(suggestions) == 0 {
		return "No suggestions. Generation history looks healthy.", nil
	}

	var out strings.Builder
	out.WriteString("Improvement suggestions:\n")
	for _, sug := range suggestions {
		out.WriteString(fmt.Sprintf("  • %s\n", sug))
	}
	return out.String(), nil
}

// recordFromArguments converts a JSON fields object into a Record.
// Key order from JSON maps is not stable, so keys are sorted to keep
// fuzzy matching deterministic across calls.
func recordFromArguments(fields map[string]interface{}) (record.Record, error) {
	if len(fields) == 0 {
		return record.Record{}, nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, len(keys))
	for i, k := range keys {
		switch v := fields[k].(type) {
		case string:
			values[i] = v
		case float64:
			values[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			values[i] = fmt.Sprintf("%t", v)
		case nil:
			values[i] = ""
		default:
			return record.Record{}, fmt.Errorf("field %q: unsupported value type", k)
		}
	}

	return record.New(keys, values)
}

// sendResponse writes a JSON-RPC response to stdout.
func (s *Server) sendResponse(resp *MCPResponse) {
	data, _ := json.Marshal(resp)
	fmt.Println(string(data))
}

// sendError writes an error response to stdout.
func (s *Server) sendError(err error) {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      nil,
		Error:   &MCPError{Code: -32700, Message: err.Error()},
	}
	s.sendResponse(resp)
}
