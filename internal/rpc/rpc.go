// Package rpc is the JSON-RPC 2.0 stdio dispatcher: it translates six
// tool calls (hermes_search, hermes_fetch, hermes_index, hermes_stats,
// hermes_fact, hermes_facts) onto the engine's own verbs and carries no
// core logic of its own. Framing, notification handling, and the
// line-delimited transport are the SDK's job; we only register tools and
// let it run.
package rpc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hermes-project/hermes/internal/engine"
	"github.com/hermes-project/hermes/pkg/version"
)

// Server bridges a stdio JSON-RPC transport to one Engine.
type Server struct {
	mcp *mcp.Server
	eng *engine.Engine
	log *slog.Logger
}

// New returns a Server exposing eng's verbs as MCP tools.
func New(eng *engine.Engine, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{eng: eng, log: log}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: "hermes", Version: version.Version}, nil)
	s.registerTools()
	return s
}

// Serve runs the server over stdio until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "hermes_search",
		Description: "Search the indexed project, returning ranked pointers (file, line span, summary) instead of full file content.",
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "hermes_fetch",
		Description: "Dereference a pointer id returned by hermes_search to its underlying source text.",
	}, s.handleFetch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "hermes_index",
		Description: "Crawl and (re)index a project directory, skipping files and chunks unchanged since the last run.",
	}, s.handleIndex)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "hermes_stats",
		Description: "Report pointer-vs-traditional-RAG token accounting for the current session and cumulatively.",
	}, s.handleStats)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "hermes_fact",
		Description: "Record a dated, typed fact about the project (decision, constraint, learning, ...).",
	}, s.handleFact)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "hermes_facts",
		Description: "List active facts, optionally filtered by fact type.",
	}, s.handleFacts)

	s.log.Info("registered hermes MCP tools", "count", 6)
}

func toolError(op string, err error) error {
	return fmt.Errorf("hermes: %s: %w", op, err)
}
