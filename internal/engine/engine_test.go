package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hermes-project/hermes/internal/config"
	"github.com/hermes-project/hermes/internal/search"
	"github.com/hermes-project/hermes/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.NewConfig(t.TempDir())
	eng, err := OpenInMemory(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestEngineIndexSearchFetchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.rs"), []byte(`pub fn widget_factory() {}
`), 0o644))

	eng := newTestEngine(t)

	report, err := eng.Index(context.Background(), dir)
	require.NoError(t, err)
	require.Greater(t, report.NodesCreated, 0)

	resp, err := eng.Search("widget_factory", 5, search.ModeSmart)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Pointers)

	fetched, err := eng.Fetch(resp.Pointers[0].ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
}

func TestEngineSearchRecordsAccounting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.rs"), []byte(`pub fn do_the_thing() {}
`), 0o644))

	eng := newTestEngine(t)
	_, err := eng.Index(context.Background(), dir)
	require.NoError(t, err)

	_, err = eng.Search("do_the_thing", 5, search.ModeSmart)
	require.NoError(t, err)

	stats, err := eng.Accountant().Session()
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.TotalQueries)
}

func TestEngineFactRoundTrip(t *testing.T) {
	eng := newTestEngine(t)

	id, err := eng.Temporal().Add("", store.FactTypeDecision, "use SQLite for storage", "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	facts, err := eng.Temporal().Active(nil)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	require.Equal(t, "use SQLite for storage", facts[0].Content)
}

func TestEngineSessionIDsAreDistinctAcrossEngines(t *testing.T) {
	a := newTestEngine(t)
	b := newTestEngine(t)
	require.NotEqual(t, a.SessionID(), b.SessionID())
}
