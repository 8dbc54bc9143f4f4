package rpc

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hermes-project/hermes/internal/search"
	"github.com/hermes-project/hermes/internal/store"
	"github.com/hermes-project/hermes/internal/telemetry"
)

// SearchInput is hermes_search's argument schema.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum pointers to return, default 10"`
	Mode  string `json:"mode,omitempty" jsonschema:"pointer, smart, or full; does not change pointer contents"`
}

// SearchOutput is hermes_search's result schema: search.Response as-is.
type SearchOutput = search.Response

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	topK := in.TopK
	if topK <= 0 {
		topK = 10
	}
	mode := search.Mode(in.Mode)
	if mode == "" {
		mode = search.ModeSmart
	}
	resp, err := s.eng.Search(in.Query, topK, mode)
	if err != nil {
		return nil, SearchOutput{}, toolError("search", err)
	}
	return nil, resp, nil
}

// FetchInput is hermes_fetch's argument schema.
type FetchInput struct {
	ID string `json:"id" jsonschema:"a pointer id returned by hermes_search"`
}

// FetchOutput is hermes_fetch's result schema.
type FetchOutput struct {
	Found  bool                `json:"found"`
	Result *search.FetchResult `json:"result,omitempty"`
}

func (s *Server) handleFetch(ctx context.Context, _ *mcp.CallToolRequest, in FetchInput) (*mcp.CallToolResult, FetchOutput, error) {
	result, err := s.eng.Fetch(in.ID)
	if err != nil {
		return nil, FetchOutput{}, toolError("fetch", err)
	}
	if result == nil {
		return nil, FetchOutput{Found: false}, nil
	}
	return nil, FetchOutput{Found: true, Result: result}, nil
}

// IndexInput is hermes_index's argument schema.
type IndexInput struct {
	Root string `json:"root" jsonschema:"absolute path to the project directory to crawl and index"`
}

// IndexOutput is hermes_index's result schema.
type IndexOutput struct {
	TotalFiles   int `json:"total_files"`
	Indexed      int `json:"indexed"`
	Skipped      int `json:"skipped"`
	Errors       int `json:"errors"`
	NodesCreated int `json:"nodes_created"`
}

func (s *Server) handleIndex(ctx context.Context, _ *mcp.CallToolRequest, in IndexInput) (*mcp.CallToolResult, IndexOutput, error) {
	report, err := s.eng.Index(ctx, in.Root)
	if err != nil {
		return nil, IndexOutput{}, toolError("index", err)
	}
	return nil, IndexOutput{
		TotalFiles:   report.TotalFiles,
		Indexed:      report.Indexed,
		Skipped:      report.Skipped,
		Errors:       report.Errors,
		NodesCreated: report.NodesCreated,
	}, nil
}

// StatsInput is hermes_stats's argument schema.
type StatsInput struct {
	Since string `json:"since,omitempty" jsonschema:"24h, 7d, or all (default); applies to the cumulative figures only"`
}

// StatsOutput is hermes_stats's result schema.
type StatsOutput struct {
	Session    statsBlock `json:"session"`
	Cumulative statsBlock `json:"cumulative"`
}

type statsBlock struct {
	TotalQueries      int64   `json:"total_queries"`
	PointerTokens     int64   `json:"pointer_tokens"`
	FetchedTokens     int64   `json:"fetched_tokens"`
	TraditionalTokens int64   `json:"traditional_tokens"`
	SavedTokens       int64   `json:"saved_tokens"`
	SavingsPct        float64 `json:"savings_pct"`
}

func toStatsBlock(s telemetry.Stats) statsBlock {
	return statsBlock{
		TotalQueries:      s.TotalQueries,
		PointerTokens:     s.TotalPointerTokens,
		FetchedTokens:     s.TotalFetchedTokens,
		TraditionalTokens: s.TotalTraditionalEstimate,
		SavedTokens:       s.SavingsTokens,
		SavingsPct:        s.SavingsPct,
	}
}

func (s *Server) handleStats(ctx context.Context, _ *mcp.CallToolRequest, in StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	acc := s.eng.Accountant()

	session, err := acc.Session()
	if err != nil {
		return nil, StatsOutput{}, toolError("stats", err)
	}

	var cumulative telemetry.Stats
	if d, ok := telemetry.ParseSince(in.Since); ok {
		cumulative, err = acc.Since(d)
	} else {
		cumulative, err = acc.Cumulative()
	}
	if err != nil {
		return nil, StatsOutput{}, toolError("stats", err)
	}

	return nil, StatsOutput{Session: toStatsBlock(session), Cumulative: toStatsBlock(cumulative)}, nil
}

// FactInput is hermes_fact's argument schema.
type FactInput struct {
	NodeID    string `json:"node_id,omitempty" jsonschema:"optional node id this fact is attached to"`
	Type      string `json:"type" jsonschema:"architecture, api_contract, decision, error_pattern, constraint, or learning"`
	Content   string `json:"content" jsonschema:"the fact's free text"`
	SourceRef string `json:"source_ref,omitempty"`
}

// FactOutput is hermes_fact's result schema.
type FactOutput struct {
	ID string `json:"id"`
}

func (s *Server) handleFact(ctx context.Context, _ *mcp.CallToolRequest, in FactInput) (*mcp.CallToolResult, FactOutput, error) {
	factType := store.FactType(in.Type)
	if !store.ValidFactType(factType) {
		factType = store.FactTypeDecision
	}
	id, err := s.eng.Temporal().Add(in.NodeID, factType, in.Content, in.SourceRef)
	if err != nil {
		return nil, FactOutput{}, toolError("fact", err)
	}
	return nil, FactOutput{ID: id}, nil
}

// FactsInput is hermes_facts's argument schema.
type FactsInput struct {
	Type string `json:"type,omitempty" jsonschema:"optional fact type filter"`
}

// FactsOutput is hermes_facts's result schema.
type FactsOutput struct {
	Facts []FactView `json:"facts"`
}

// FactView is a JSON-friendly projection of store.Fact.
type FactView struct {
	ID           string `json:"id"`
	NodeID       string `json:"node_id,omitempty"`
	Type         string `json:"type"`
	Content      string `json:"content"`
	ValidFrom    string `json:"valid_from"`
	ValidTo      string `json:"valid_to,omitempty"`
	SupersededBy string `json:"superseded_by,omitempty"`
}

func toFactView(f store.Fact) FactView {
	v := FactView{
		ID:           f.ID,
		NodeID:       f.NodeID,
		Type:         string(f.FactType),
		Content:      f.Content,
		ValidFrom:    f.ValidFrom.Format(rfc3339),
		SupersededBy: f.SupersededBy,
	}
	if f.ValidTo != nil {
		v.ValidTo = f.ValidTo.Format(rfc3339)
	}
	return v
}

const rfc3339 = "2006-01-02T15:04:05.999999999Z07:00"

func (s *Server) handleFacts(ctx context.Context, _ *mcp.CallToolRequest, in FactsInput) (*mcp.CallToolResult, FactsOutput, error) {
	var factType *store.FactType
	if in.Type != "" {
		ft := store.FactType(in.Type)
		factType = &ft
	}
	facts, err := s.eng.Temporal().Active(factType)
	if err != nil {
		return nil, FactsOutput{}, toolError("facts", err)
	}
	out := make([]FactView, len(facts))
	for i, f := range facts {
		out[i] = toFactView(f)
	}
	return nil, FactsOutput{Facts: out}, nil
}
