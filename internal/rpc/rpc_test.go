package rpc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hermes-project/hermes/internal/config"
	"github.com/hermes-project/hermes/internal/engine"
	"github.com/hermes-project/hermes/internal/store"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.rs"), []byte(`pub fn handle_request() {}
`), 0o644))

	cfg := config.NewConfig(dir)
	eng, err := engine.OpenInMemory(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	return New(eng, nil), dir
}

func TestHandleIndexThenSearchThenFetch(t *testing.T) {
	s, dir := newTestServer(t)
	ctx := context.Background()

	_, indexOut, err := s.handleIndex(ctx, nil, IndexInput{Root: dir})
	require.NoError(t, err)
	require.Greater(t, indexOut.NodesCreated, 0)

	_, searchOut, err := s.handleSearch(ctx, nil, SearchInput{Query: "handle_request"})
	require.NoError(t, err)
	require.NotEmpty(t, searchOut.Pointers)

	_, fetchOut, err := s.handleFetch(ctx, nil, FetchInput{ID: searchOut.Pointers[0].ID})
	require.NoError(t, err)
	require.True(t, fetchOut.Found)
}

func TestHandleFetchUnknownIDNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	_, out, err := s.handleFetch(context.Background(), nil, FetchInput{ID: "does-not-exist"})
	require.NoError(t, err)
	require.False(t, out.Found)
}

func TestHandleFactAndFacts(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, factOut, err := s.handleFact(ctx, nil, FactInput{
		Type:    string(store.FactTypeConstraint),
		Content: "must run offline",
	})
	require.NoError(t, err)
	require.NotEmpty(t, factOut.ID)

	_, factsOut, err := s.handleFacts(ctx, nil, FactsInput{})
	require.NoError(t, err)
	require.Len(t, factsOut.Facts, 1)
	require.Equal(t, "must run offline", factsOut.Facts[0].Content)
}

func TestHandleStatsReportsSessionQuery(t *testing.T) {
	s, dir := newTestServer(t)
	ctx := context.Background()

	_, _, err := s.handleIndex(ctx, nil, IndexInput{Root: dir})
	require.NoError(t, err)
	_, _, err = s.handleSearch(ctx, nil, SearchInput{Query: "handle_request"})
	require.NoError(t, err)

	_, statsOut, err := s.handleStats(ctx, nil, StatsInput{})
	require.NoError(t, err)
	require.EqualValues(t, 1, statsOut.Session.TotalQueries)
}
