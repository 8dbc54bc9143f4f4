// Package temporal stores append-only, dated facts about a project:
// architecture notes, API contracts, decisions, and the like, each
// optionally superseding an earlier fact. It corresponds to C9 in the
// design.
package temporal

import (
	"time"

	"github.com/hermes-project/hermes/internal/graph"
	"github.com/hermes-project/hermes/internal/herrors"
	"github.com/hermes-project/hermes/internal/store"
)

// Store records and queries temporal facts for one project.
type Store struct {
	s         *store.Store
	projectID string
}

// New returns a temporal Store bound to s, scoped to projectID.
func New(s *store.Store, projectID string) *Store {
	return &Store{s: s, projectID: projectID}
}

// Add records a new fact and returns its id. nodeID may be empty for a
// fact not attached to any specific node.
func (t *Store) Add(nodeID string, factType store.FactType, content, sourceRef string) (string, error) {
	unlock := t.s.Lock()
	defer unlock()

	id := graph.NewID()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := t.s.DB().Exec(
		`INSERT INTO temporal_facts (id, project_id, node_id, fact_type, content, valid_from, source_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, t.projectID, nullIfEmpty(nodeID), string(factType), content, now, nullIfEmpty(sourceRef),
	)
	if err != nil {
		return "", herrors.StorageError("add temporal fact", err)
	}
	return id, nil
}

// Invalidate marks factID as no longer active, optionally recording the
// fact that supersedes it (forming a supersedes-chain).
func (t *Store) Invalidate(factID, supersededBy string) error {
	unlock := t.s.Lock()
	defer unlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := t.s.DB().Exec(
		`UPDATE temporal_facts SET valid_to = ?, superseded_by = ? WHERE id = ? AND project_id = ?`,
		now, nullIfEmpty(supersededBy), factID, t.projectID,
	)
	if err != nil {
		return herrors.StorageError("invalidate temporal fact", err)
	}
	return nil
}

// Active returns every fact currently in force, optionally filtered to one
// fact type, most recent first.
func (t *Store) Active(factType *store.FactType) ([]store.Fact, error) {
	unlock := t.s.Lock()
	defer unlock()

	if factType != nil {
		rows, err := t.s.DB().Query(
			`SELECT id, project_id, node_id, fact_type, content, valid_from, valid_to, superseded_by, source_ref
			 FROM temporal_facts WHERE project_id = ? AND valid_to IS NULL AND fact_type = ?
			 ORDER BY valid_from DESC`, t.projectID, string(*factType))
		if err != nil {
			return nil, herrors.StorageError("list active facts", err)
		}
		defer rows.Close()
		return scanFacts(rows)
	}

	rows, err := t.s.DB().Query(
		`SELECT id, project_id, node_id, fact_type, content, valid_from, valid_to, superseded_by, source_ref
		 FROM temporal_facts WHERE project_id = ? AND valid_to IS NULL
		 ORDER BY valid_from DESC`, t.projectID)
	if err != nil {
		return nil, herrors.StorageError("list active facts", err)
	}
	defer rows.Close()
	return scanFacts(rows)
}

// History returns every fact (active or superseded) attached to nodeID,
// most recent first.
func (t *Store) History(nodeID string) ([]store.Fact, error) {
	unlock := t.s.Lock()
	defer unlock()

	rows, err := t.s.DB().Query(
		`SELECT id, project_id, node_id, fact_type, content, valid_from, valid_to, superseded_by, source_ref
		 FROM temporal_facts WHERE project_id = ? AND node_id = ?
		 ORDER BY valid_from DESC`, t.projectID, nodeID)
	if err != nil {
		return nil, herrors.StorageError("fact history", err)
	}
	defer rows.Close()
	return scanFacts(rows)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
