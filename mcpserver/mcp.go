// Package mcpserver exposes doctest runs as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/doctest/doctest"
	"github.com/jonwraymond/doctest/report"
	"github.com/jonwraymond/doctest/snippet"
)

// Tool names.
const (
	RunToolName   = "doctest_run"
	ParseToolName = "doctest_parse"
)

// Server runs doctests on behalf of MCP clients.
type Server struct {
	cfg doctest.Config
}

// New returns a Server that runs every request with cfg.
func New(cfg doctest.Config) *Server {
	return &Server{cfg: cfg}
}

// NewMCPServer builds an MCP server with the doctest tools registered.
func NewMCPServer(cfg doctest.Config, version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "doctest", Version: version}, nil)
	New(cfg).RegisterMCP(srv)
	return srv
}

// RegisterMCP registers the doctest tools on an MCP server.
func (s *Server) RegisterMCP(srv *mcp.Server) {
	s.registerRunTool(srv)
	s.registerParseTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// --- run ---

type runReq struct {
	Paths []string `json:"paths"`
}

// RunResponse is the JSON payload of doctest_run.
type RunResponse struct {
	OK       bool             `json:"ok"`
	Passed   int              `json:"passed"`
	Failed   int              `json:"failed"`
	Skipped  int              `json:"skipped"`
	Failures []report.Failure `json:"failures,omitempty"`
	Errors   []string         `json:"errors,omitempty"`
}

func (s *Server) registerRunTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        RunToolName,
		Description: "Run the JavaScript and TypeScript snippets in Markdown documents and report pass, fail and skip counts.",
		InputSchema: inputSchema(map[string]any{
			"paths": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Markdown files to test",
			},
		}, []string{"paths"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r runReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		if len(r.Paths) == 0 {
			return errorResult(errors.New("invalid arguments: paths is required")), nil
		}
		resp, err := s.Run(ctx, r.Paths)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(resp)
	})
}

// Run runs the documents at paths and summarizes the outcome. Documents
// that fail to parse are listed in Errors.
func (s *Server) Run(ctx context.Context, paths []string) (RunResponse, error) {
	results, err := doctest.RunTests(ctx, paths, s.cfg)
	if errors.Is(err, doctest.ErrConfiguration) {
		return RunResponse{}, err
	}

	summary := report.Aggregate(results)
	resp := RunResponse{
		OK:       summary.OK() && err == nil,
		Passed:   summary.Passed,
		Failed:   summary.Failed,
		Skipped:  summary.Skipped,
		Failures: summary.Failures,
	}
	if err != nil {
		resp.Errors = unwrapJoined(err)
	}
	return resp, nil
}

func unwrapJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

// --- parse ---

type parseReq struct {
	Path string `json:"path"`
}

func (s *Server) registerParseTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        ParseToolName,
		Description: "Extract the executable snippets of a Markdown document, with assertions rewritten, without running them.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "Markdown file to parse"},
		}, []string{"path"}),
	}

	srv.AddTool(tool, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r parseReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		file, err := snippet.ParseFile(r.Path)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(file)
	})
}

func errorResult(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Errorf("marshal: %w", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}
