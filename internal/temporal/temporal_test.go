package temporal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermes-project/hermes/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := store.OpenInMemory("temporal-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s, "temporal-test")
}

func TestAddAndRetrieveFact(t *testing.T) {
	ts := newTestStore(t)
	id, err := ts.Add("", store.FactTypeArchitecture, "Uses SQLite for storage", "initial setup")
	require.NoError(t, err)

	active, err := ts.Active(nil)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, id, active[0].ID)
	assert.True(t, active[0].Active())
}

func TestInvalidateFactSetsValidTo(t *testing.T) {
	ts := newTestStore(t)
	id, err := ts.Add("", store.FactTypeDecision, "Use SQLite", "")
	require.NoError(t, err)
	require.NoError(t, ts.Invalidate(id, ""))

	active, err := ts.Active(nil)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSupersedeCreatesChain(t *testing.T) {
	ts := newTestStore(t)
	oldID, err := ts.Add("", store.FactTypeDecision, "Use ChromaDB", "")
	require.NoError(t, err)
	newID, err := ts.Add("", store.FactTypeDecision, "Use Qdrant instead", "")
	require.NoError(t, err)
	require.NoError(t, ts.Invalidate(oldID, newID))

	active, err := ts.Active(nil)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Use Qdrant instead", active[0].Content)
}

func TestSupersededFactKeepsChainInHistory(t *testing.T) {
	ts := newTestStore(t)
	oldID, err := ts.Add("node-1", store.FactTypeDecision, "use X", "")
	require.NoError(t, err)
	newID, err := ts.Add("node-1", store.FactTypeDecision, "use Y", "")
	require.NoError(t, err)
	require.NoError(t, ts.Invalidate(oldID, newID))

	history, err := ts.History("node-1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	var old store.Fact
	for _, f := range history {
		if f.ID == oldID {
			old = f
		}
	}
	require.Equal(t, oldID, old.ID)
	assert.False(t, old.Active())
	assert.NotNil(t, old.ValidTo)
	assert.Equal(t, newID, old.SupersededBy)
}

func TestFilterByFactType(t *testing.T) {
	ts := newTestStore(t)
	_, err := ts.Add("", store.FactTypeArchitecture, "Go backend", "")
	require.NoError(t, err)
	_, err = ts.Add("", store.FactTypeDecision, "Use Go", "")
	require.NoError(t, err)

	arch := store.FactTypeArchitecture
	facts, err := ts.Active(&arch)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "Go backend", facts[0].Content)
}

func TestHistoryReturnsAllVersionsForNode(t *testing.T) {
	ts := newTestStore(t)
	id1, err := ts.Add("node-1", store.FactTypeConstraint, "v1", "")
	require.NoError(t, err)
	require.NoError(t, ts.Invalidate(id1, ""))
	_, err = ts.Add("node-1", store.FactTypeConstraint, "v2", "")
	require.NoError(t, err)

	history, err := ts.History("node-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
