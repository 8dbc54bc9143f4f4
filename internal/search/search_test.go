package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-project/hermes/internal/graph"
	"github.com/hermes-project/hermes/internal/ingest"
	"github.com/hermes-project/hermes/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *graph.Graph, string) {
	t.Helper()
	s, err := store.OpenInMemory("search-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	g := graph.New(s, "search-test")
	ht := store.NewHashTracker(s)
	p := ingest.New(g, ht, nil)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.rs"), []byte(`pub fn widget_factory() {}

pub fn unrelated_helper() {}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# Widgets\nBuilding widgets is fun.\n"), 0o644))

	_, err = p.Directory(context.Background(), dir)
	require.NoError(t, err)

	e := New(g, Config{
		ResultCacheTTL:      time.Minute,
		ResultCacheCapacity: 16,
		FetchCacheCapacity:  16,
	})
	return e, g, dir
}

// An exact name match must short-circuit the cascade: the FTS table is
// dropped below, so any attempt to run the L1 tier would error and the
// search can only succeed if the later tiers are skipped entirely.
func TestLiteralShortCircuitSkipsLaterTiers(t *testing.T) {
	s, err := store.OpenInMemory("short-circuit")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	g := graph.New(s, "short-circuit")

	now := time.Now().UTC()
	require.NoError(t, g.AddNode(store.Node{
		ID: "n1", Name: "handleRequest", NodeType: store.NodeTypeFunction,
		FilePath: "src/server.go", StartLine: 5, EndLine: 20,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, g.AddNode(store.Node{
		ID: "n2", Name: "handleRequestAsync", NodeType: store.NodeTypeFunction,
		FilePath: "src/server.go", StartLine: 25, EndLine: 40,
		CreatedAt: now, UpdatedAt: now,
	}))

	_, err = s.DB().Exec(`DROP TABLE fts_content`)
	require.NoError(t, err)

	e := New(g, Config{ResultCacheTTL: time.Minute, ResultCacheCapacity: 16, FetchCacheCapacity: 16})
	resp, err := e.Search("handleRequest", 1)
	require.NoError(t, err)
	require.Len(t, resp.Pointers, 1)
	assert.Equal(t, "n1", resp.Pointers[0].ID)
	assert.InDelta(t, 1.0, resp.Pointers[0].Relevance, 1e-9)
}

func TestSearchExactNameMatchWinsViaL0(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp, err := e.Search("widget_factory", 5)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Pointers)
	assert.Equal(t, "widget_factory", resp.Pointers[0].Chunk)
	assert.InDelta(t, 1.0, resp.Pointers[0].Relevance, 1e-9)
}

func TestSearchFallsBackToVectorTierForLooseQuery(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp, err := e.Search("widgets fun building", 5)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Pointers)
}

func TestSearchResultsAreCachedUntilInvalidated(t *testing.T) {
	e, g, _ := newTestEngine(t)

	first, err := e.Search("widget_factory", 5)
	require.NoError(t, err)
	require.NotEmpty(t, first.Pointers)

	// Delete the underlying node directly; a cached response should still
	// be served byte-for-byte until InvalidateCache is called.
	require.NoError(t, g.DeleteNodesForFile(first.Pointers[0].Source))

	cached, err := e.Search("widget_factory", 5)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	e.InvalidateCache()
	fresh, err := e.Search("widget_factory", 5)
	require.NoError(t, err)
	assert.Empty(t, fresh.Pointers)
}

func TestSearchEmptyQueryReturnsNoPointers(t *testing.T) {
	e, _, _ := newTestEngine(t)
	for _, q := range []string{"", "   "} {
		resp, err := e.Search(q, 10)
		require.NoError(t, err)
		assert.Empty(t, resp.Pointers, "query %q", q)
	}
}

func TestSearchTopKZeroReturnsEmptyResponse(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp, err := e.Search("widget_factory", 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Pointers)
	assert.Zero(t, resp.Accounting.PointerTokens)
}

func TestFetchMissingFileReturnsPlaceholder(t *testing.T) {
	e, _, dir := newTestEngine(t)
	resp, err := e.Search("widget_factory", 5)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Pointers)

	require.NoError(t, os.Remove(filepath.Join(dir, "main.rs")))

	result, err := e.Fetch(resp.Pointers[0].ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.Content, "[File not found:")
	assert.Greater(t, result.TokenCount, 0)
}

func TestFetchReturnsNodeContentSlice(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp, err := e.Search("widget_factory", 5)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Pointers)

	result, err := e.Fetch(resp.Pointers[0].ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.Content, "fn widget_factory")
	assert.Greater(t, result.TokenCount, 0)
}

func TestFetchUnknownPointerReturnsNilNotError(t *testing.T) {
	e, _, _ := newTestEngine(t)
	result, err := e.Fetch("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDedupeAndRankKeepsRawScoreNotBoosted(t *testing.T) {
	node := store.Node{ID: "n1", Name: "widgetFactory"}
	results := []Result{
		{Node: node, Score: 0.5, Tier: TierL2Vector},
		{Node: node, Score: 0.5, Tier: TierL0Literal},
	}
	ranked := dedupeAndRank(results, 5)
	require.Len(t, ranked, 1)
	assert.Equal(t, TierL0Literal, ranked[0].Tier)
	assert.Equal(t, 0.5, ranked[0].Score)
}

func TestBuildResponseComputesSavings(t *testing.T) {
	resp := BuildResponse([]Pointer{{Source: "a.go", Chunk: "f", Lines: "1-3", Summary: "does a thing"}}, 0)
	assert.Greater(t, resp.Accounting.PointerTokens, 0)
	assert.Equal(t, resp.Accounting.PointerTokens*15, resp.Accounting.TraditionalRAGEstimate)
	assert.GreaterOrEqual(t, resp.Accounting.SavingsPct, 0.0)
}
