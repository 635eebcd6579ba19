package mcp

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/memodesk/memodesk/internal/errors"
	"github.com/memodesk/memodesk/internal/memo"
)

// ToolDef describes an MCP tool for tools/list.
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

var (
	idProp      = map[string]any{"type": "integer", "description": "Memo ID"}
	titleProp   = map[string]any{"type": "string", "description": "Memo title"}
	contentProp = map[string]any{"type": "string", "description": "Memo body"}
	noArgs      = map[string]any{"type": "object", "properties": map[string]any{}}
)

// AllTools returns the full set of memo tool definitions.
func AllTools() []ToolDef {
	return []ToolDef{
		{
			Name:        "create_memo",
			Description: "Create a memo and return it with its assigned id and timestamps",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":   titleProp,
					"content": contentProp,
				},
				"required": []string{"title", "content"},
			},
		},
		{
			Name:        "get_all_memos",
			Description: "List every memo, most recently updated first",
			InputSchema: noArgs,
		},
		{
			Name:        "get_memo_by_id",
			Description: "Fetch one memo; returns null when the id does not exist",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"id": idProp},
				"required":   []string{"id"},
			},
		},
		{
			Name:        "update_memo",
			Description: "Replace the title and content of an existing memo",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":      idProp,
					"title":   titleProp,
					"content": contentProp,
				},
				"required": []string{"id", "title", "content"},
			},
		},
		{
			Name:        "delete_memo",
			Description: "Delete a memo; reports whether a memo was removed",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"id": idProp},
				"required":   []string{"id"},
			},
		},
		{
			Name:        "search_memos",
			Description: "Find memos whose title or content contains the query (SQL LIKE, case-insensitive for ASCII)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "Substring to look for"},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "get_database_stats",
			Description: "Report memo count, database path and database file size",
			InputSchema: noArgs,
		},
	}
}

// ToolHandler dispatches tool calls to the memo service.
type ToolHandler struct {
	svc *memo.Service
}

// NewToolHandler creates a handler bound to a memo service.
func NewToolHandler(svc *memo.Service) *ToolHandler {
	return &ToolHandler{svc: svc}
}

// Call dispatches a tool call by name with the given arguments.
func (h *ToolHandler) Call(name string, args json.RawMessage) (any, error) {
	switch name {
	case "create_memo":
		return h.createMemo(args)
	case "get_all_memos":
		return h.svc.List()
	case "get_memo_by_id":
		return h.getMemo(args)
	case "update_memo":
		return h.updateMemo(args)
	case "delete_memo":
		return h.deleteMemo(args)
	case "search_memos":
		return h.searchMemos(args)
	case "get_database_stats":
		return h.svc.Stats()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// parseArgs decodes args into v. Arguments may also arrive wrapped as
// {"request": {...}}, the shape desktop clients send for create and update.
func parseArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	var wrapped struct {
		Request json.RawMessage `json:"request"`
	}
	if err := json.Unmarshal(args, &wrapped); err == nil && len(wrapped.Request) > 0 {
		args = wrapped.Request
	}
	if err := json.Unmarshal(args, v); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "parse args", err)
	}
	return nil
}

type idArgs struct {
	ID *int64 `json:"id"`
}

func (a idArgs) require() (int64, error) {
	if a.ID == nil {
		return 0, apperrors.New(apperrors.CodeInvalidInput, "id is required")
	}
	return *a.ID, nil
}

func (h *ToolHandler) createMemo(args json.RawMessage) (any, error) {
	var req memo.CreateRequest
	if err := parseArgs(args, &req); err != nil {
		return nil, err
	}
	return h.svc.Create(req)
}

func (h *ToolHandler) getMemo(args json.RawMessage) (any, error) {
	var params idArgs
	if err := parseArgs(args, &params); err != nil {
		return nil, err
	}
	id, err := params.require()
	if err != nil {
		return nil, err
	}
	return h.svc.Get(id)
}

func (h *ToolHandler) updateMemo(args json.RawMessage) (any, error) {
	var params struct {
		idArgs
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := parseArgs(args, &params); err != nil {
		return nil, err
	}
	id, err := params.require()
	if err != nil {
		return nil, err
	}
	return h.svc.Update(memo.UpdateRequest{ID: id, Title: params.Title, Content: params.Content})
}

func (h *ToolHandler) deleteMemo(args json.RawMessage) (any, error) {
	var params idArgs
	if err := parseArgs(args, &params); err != nil {
		return nil, err
	}
	id, err := params.require()
	if err != nil {
		return nil, err
	}
	return h.svc.Delete(id)
}

func (h *ToolHandler) searchMemos(args json.RawMessage) (any, error) {
	var params struct {
		Query string `json:"query"`
	}
	if err := parseArgs(args, &params); err != nil {
		return nil, err
	}
	return h.svc.Search(params.Query)
}
