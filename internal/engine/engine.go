// Package engine composes the core components (store, graph, ingestion
// pipeline, search cascade, temporal store, accountant) into the single
// entry point an external collaborator (CLI, RPC dispatcher) drives. It
// owns nothing those components don't already own: one Store, one Graph,
// one search engine's worth of caches, shared by every caller.
package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/hermes-project/hermes/internal/config"
	"github.com/hermes-project/hermes/internal/graph"
	"github.com/hermes-project/hermes/internal/ingest"
	"github.com/hermes-project/hermes/internal/search"
	"github.com/hermes-project/hermes/internal/store"
	"github.com/hermes-project/hermes/internal/telemetry"
	"github.com/hermes-project/hermes/internal/temporal"
)

// Engine is the composed Hermes core for one project.
type Engine struct {
	cfg       *config.Config
	store     *store.Store
	graph     *graph.Graph
	pipeline  *ingest.Pipeline
	search    *search.Engine
	temporal  *temporal.Store
	sessionID string
	log       *slog.Logger
}

// Open opens (or creates) the on-disk store at cfg.DBPath and wires every
// core component over it, bound to cfg.ProjectID.
func Open(cfg *config.Config, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	s, err := store.Open(cfg.DBPath, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	return wire(cfg, s, log), nil
}

// OpenInMemory wires the core over an in-memory store, used by tests and
// by short-lived callers that don't need persistence.
func OpenInMemory(cfg *config.Config, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}
	s, err := store.OpenInMemory(cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	return wire(cfg, s, log), nil
}

func wire(cfg *config.Config, s *store.Store, log *slog.Logger) *Engine {
	g := graph.New(s, cfg.ProjectID)
	ht := store.NewHashTracker(s)
	return &Engine{
		cfg:      cfg,
		store:    s,
		graph:    g,
		pipeline: ingest.New(g, ht, log),
		search: search.New(g, search.Config{
			ResultCacheTTL:      cfg.Search.ResultCacheTTL,
			ResultCacheCapacity: cfg.Search.ResultCacheCapacity,
			FetchCacheCapacity:  cfg.Search.FetchCacheCapacity,
		}),
		temporal:  temporal.New(s, cfg.ProjectID),
		sessionID: newSessionID(),
		log:       log,
	}
}

func newSessionID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Close releases the underlying store connection.
func (e *Engine) Close() error { return e.store.Close() }

// ProjectID returns the project label this engine is bound to.
func (e *Engine) ProjectID() string { return e.cfg.ProjectID }

// SessionID returns the random session label this engine stamps its own
// accounting rows with.
func (e *Engine) SessionID() string { return e.sessionID }

// Accountant returns a telemetry.Accountant scoped to this engine's
// project and session.
func (e *Engine) Accountant() *telemetry.Accountant {
	return telemetry.New(e.store, e.cfg.ProjectID, e.sessionID)
}

// Temporal returns the engine's temporal fact store.
func (e *Engine) Temporal() *temporal.Store { return e.temporal }

// Graph returns the engine's graph, for collaborators that need direct
// node/edge access (e.g. a fact's optional node_id lookup).
func (e *Engine) Graph() *graph.Graph { return e.graph }

// Index crawls and ingests root, then invalidates the shared search
// result cache so later searches observe the new state.
func (e *Engine) Index(ctx context.Context, root string) (ingest.Report, error) {
	report, err := e.pipeline.Directory(ctx, root)
	if err != nil {
		return ingest.Report{}, err
	}
	e.search.InvalidateCache()
	return report, nil
}

// Search runs the tiered cascade and records the resulting accounting row
// under this engine's session. mode is accepted for protocol
// compatibility only; it does not alter pointer contents.
func (e *Engine) Search(query string, topK int, _ search.Mode) (search.Response, error) {
	resp, err := e.search.Search(query, topK)
	if err != nil {
		return search.Response{}, err
	}
	if recErr := e.Accountant().Record(query, resp.Accounting.PointerTokens, resp.Accounting.FetchedTokens, resp.Accounting.TraditionalRAGEstimate); recErr != nil {
		e.log.Warn("failed to record search accounting", "error", recErr)
	}
	return resp, nil
}

// Fetch dereferences a pointer id to its source text.
func (e *Engine) Fetch(pointerID string) (*search.FetchResult, error) {
	return e.search.Fetch(pointerID)
}
