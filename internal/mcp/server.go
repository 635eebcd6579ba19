// Package mcp exposes the memo store as MCP tools over JSON-RPC 2.0 on stdio.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/memodesk/memodesk/internal/memo"
	"github.com/memodesk/memodesk/internal/telemetry"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "memodesk"
)

// Server is a minimal MCP server that speaks JSON-RPC 2.0 over stdin/stdout.
// It only implements initialize, tools/list, tools/call and ping.
type Server struct {
	version string
	handler *ToolHandler
	logger  *telemetry.Logger
	in      io.Reader
	out     io.Writer
}

// NewServer creates a new MCP server backed by the memo service.
func NewServer(svc *memo.Service, logger *telemetry.Logger, version string) *Server {
	return &Server{
		version: version,
		handler: NewToolHandler(svc),
		logger:  logger,
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// SetIO replaces stdin/stdout.
func (s *Server) SetIO(in io.Reader, out io.Writer) {
	s.in = in
	s.out = out
}

// jsonrpcRequest is a JSON-RPC 2.0 request.
type jsonrpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// jsonrpcResponse is a JSON-RPC 2.0 response.
type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Run reads JSON-RPC requests from stdin and writes responses to stdout.
// It blocks until the context is cancelled or stdin is closed.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// Memo content can be large
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonrpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeError(nil, -32700, "parse error")
			continue
		}

		// Notifications (no ID) don't get responses
		if req.ID == nil {
			s.logger.Debug("MCP notification", "method", req.Method)
			continue
		}

		result, err := s.dispatch(ctx, req)
		if err != nil {
			s.writeError(req.ID, -32603, err.Error())
			continue
		}

		s.writeResult(req.ID, result)
	}

	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req jsonrpcRequest) (any, error) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.Params)
	case "tools/list":
		return s.handleToolsList(req.Params)
	case "tools/call":
		return s.handleToolsCall(ctx, req.Params)
	case "ping":
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("method not found: %s", req.Method)
	}
}

func (s *Server) handleInitialize(_ json.RawMessage) (any, error) {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": s.version,
		},
	}, nil
}

func (s *Server) handleToolsList(_ json.RawMessage) (any, error) {
	return map[string]any{
		"tools": AllTools(),
	}, nil
}

func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, error) {
	var call struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, fmt.Errorf("parse tool call params: %w", err)
	}

	tc := telemetry.NewTraceContext("mcp").WithOperation(call.Name)
	log := s.logger.WithTrace(telemetry.ContextWithTrace(ctx, tc))

	result, err := s.handler.Call(call.Name, call.Arguments)
	if err != nil {
		log.Warn("Tool call failed", "error", err)
		return map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": fmt.Sprintf("Error: %s", err.Error())},
			},
			"isError": true,
		}, nil
	}
	log.Debug("Tool call completed")

	text, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(text)},
		},
	}, nil
}

func (s *Server) writeResult(id json.RawMessage, result any) {
	resp := jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	s.writeJSON(resp)
}

func (s *Server) writeError(id json.RawMessage, code int, message string) {
	resp := jsonrpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &jsonrpcError{Code: code, Message: message},
	}
	s.writeJSON(resp)
}

func (s *Server) writeJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = s.out.Write(data)
}
