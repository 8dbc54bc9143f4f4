// Package graph implements the knowledge graph: CRUD over nodes and edges,
// the FTS5 projection each node's content is indexed under, and the
// project-scoped queries search and ingestion build on. It corresponds to
// C2 in the design.
package graph

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"

	"github.com/hermes-project/hermes/internal/herrors"
	"github.com/hermes-project/hermes/internal/store"
)

// Graph is a project-scoped view over a Store's nodes, edges, and FTS index.
type Graph struct {
	store     *store.Store
	projectID string
}

// New returns a Graph bound to s, scoped to projectID.
func New(s *store.Store, projectID string) *Graph {
	return &Graph{store: s, projectID: projectID}
}

// NewID returns a random 128-bit hex node/edge identifier.
func NewID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// AddNode inserts or replaces node, stamping updated_at.
func (g *Graph) AddNode(n store.Node) error {
	unlock := g.store.Lock()
	defer unlock()

	_, err := g.store.DB().Exec(
		`INSERT INTO nodes (id, project_id, name, node_type, file_path, start_line, end_line, summary, content_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, node_type = excluded.node_type, file_path = excluded.file_path,
		   start_line = excluded.start_line, end_line = excluded.end_line, summary = excluded.summary,
		   content_hash = excluded.content_hash, updated_at = excluded.updated_at`,
		n.ID, g.projectID, n.Name, string(n.NodeType), n.FilePath, n.StartLine, n.EndLine,
		n.Summary, n.ContentHash, n.CreatedAt.Format(rfc3339), n.UpdatedAt.Format(rfc3339),
	)
	if err != nil {
		return herrors.StorageError("add node", err)
	}
	return nil
}

// GetNode returns the node with id, or (store.Node{}, false, nil) if absent.
func (g *Graph) GetNode(id string) (store.Node, bool, error) {
	unlock := g.store.Lock()
	defer unlock()

	row := g.store.DB().QueryRow(
		`SELECT id, project_id, name, node_type, file_path, start_line, end_line, summary, content_hash, created_at, updated_at
		 FROM nodes WHERE id = ? AND project_id = ?`, id, g.projectID)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Node{}, false, nil
	}
	if err != nil {
		return store.Node{}, false, herrors.StorageError("get node", err)
	}
	return n, true, nil
}

// AddEdge inserts edge, silently ignoring a duplicate (source, target, type).
func (g *Graph) AddEdge(e store.Edge) error {
	unlock := g.store.Lock()
	defer unlock()

	_, err := g.store.DB().Exec(
		`INSERT OR IGNORE INTO edges (id, project_id, source_id, target_id, edge_type, weight)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, g.projectID, e.SourceID, e.TargetID, string(e.EdgeType), e.Weight,
	)
	if err != nil {
		return herrors.StorageError("add edge", err)
	}
	return nil
}

// Neighbor pairs an edge with the node on its other end from the node the
// query was issued against.
type Neighbor struct {
	Edge store.Edge
	Node store.Node
}

// GetNeighbors returns every node connected to id by an edge in either
// direction.
func (g *Graph) GetNeighbors(id string) ([]Neighbor, error) {
	unlock := g.store.Lock()
	defer unlock()

	rows, err := g.store.DB().Query(
		`SELECT e.id, e.project_id, e.source_id, e.target_id, e.edge_type, e.weight,
		        n.id, n.project_id, n.name, n.node_type, n.file_path, n.start_line, n.end_line, n.summary, n.content_hash, n.created_at, n.updated_at
		 FROM edges e
		 JOIN nodes n ON n.id = CASE WHEN e.source_id = ? THEN e.target_id ELSE e.source_id END
		 WHERE (e.source_id = ? OR e.target_id = ?) AND e.project_id = ?`,
		id, id, id, g.projectID,
	)
	if err != nil {
		return nil, herrors.StorageError("get neighbors", err)
	}
	defer rows.Close()

	var out []Neighbor
	for rows.Next() {
		var e store.Edge
		var edgeType string
		var n store.Node
		var nodeType string
		var createdAt, updatedAt string
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.SourceID, &e.TargetID, &edgeType, &e.Weight,
			&n.ID, &n.ProjectID, &n.Name, &nodeType, &n.FilePath, &n.StartLine, &n.EndLine, &n.Summary, &n.ContentHash,
			&createdAt, &updatedAt); err != nil {
			return nil, herrors.StorageError("scan neighbor", err)
		}
		e.EdgeType = store.EdgeType(edgeType)
		n.NodeType = store.NodeType(nodeType)
		n.CreatedAt = parseRFC3339(createdAt)
		n.UpdatedAt = parseRFC3339(updatedAt)
		out = append(out, Neighbor{Edge: e, Node: n})
	}
	return out, rows.Err()
}

// IndexFTS replaces node's entry in the full-text index with content.
func (g *Graph) IndexFTS(n store.Node, content string) error {
	unlock := g.store.Lock()
	defer unlock()

	if _, err := g.store.DB().Exec(`DELETE FROM fts_content WHERE node_id = ?`, n.ID); err != nil {
		return herrors.StorageError("clear fts entry", err)
	}
	_, err := g.store.DB().Exec(
		`INSERT INTO fts_content (node_id, project_id, name, content, file_path) VALUES (?, ?, ?, ?, ?)`,
		n.ID, g.projectID, n.Name, content, n.FilePath,
	)
	if err != nil {
		return herrors.StorageError("index fts content", err)
	}
	return nil
}

// LiteralSearchByName returns nodes whose name matches query: prefix
// matches first, falling back to substring matches only if there are none.
func (g *Graph) LiteralSearchByName(query string) ([]store.Node, error) {
	unlock := g.store.Lock()
	defer unlock()

	prefix, err := g.queryNodesByNameLike(prefixPattern(query))
	if err != nil {
		return nil, err
	}
	if len(prefix) > 0 {
		return prefix, nil
	}
	return g.queryNodesByNameLike(containsPattern(query))
}

func (g *Graph) queryNodesByNameLike(pattern string) ([]store.Node, error) {
	rows, err := g.store.DB().Query(
		`SELECT id, project_id, name, node_type, file_path, start_line, end_line, summary, content_hash, created_at, updated_at
		 FROM nodes WHERE project_id = ? AND LOWER(name) LIKE ?`, g.projectID, pattern)
	if err != nil {
		return nil, herrors.StorageError("literal search by name", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// GetAllFilePaths returns the set of file paths currently represented by a
// file-type node, used by ingestion to find stale files.
func (g *Graph) GetAllFilePaths() (map[string]struct{}, error) {
	unlock := g.store.Lock()
	defer unlock()

	rows, err := g.store.DB().Query(
		`SELECT DISTINCT file_path FROM nodes WHERE project_id = ? AND node_type = ? AND file_path IS NOT NULL AND file_path != ''`,
		g.projectID, string(store.NodeTypeFile),
	)
	if err != nil {
		return nil, herrors.StorageError("list file paths", err)
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, herrors.StorageError("scan file path", err)
		}
		out[path] = struct{}{}
	}
	return out, rows.Err()
}

// DeleteNodesForFile removes every node (and their edges and FTS entries)
// backed by filePath, used when a file is deleted or renamed out from under
// the crawl.
func (g *Graph) DeleteNodesForFile(filePath string) error {
	unlock := g.store.Lock()
	defer unlock()

	db := g.store.DB()
	if _, err := db.Exec(
		`DELETE FROM fts_content WHERE node_id IN (SELECT id FROM nodes WHERE file_path = ? AND project_id = ?)`,
		filePath, g.projectID); err != nil {
		return herrors.StorageError("delete fts for file", err)
	}
	if _, err := db.Exec(
		`DELETE FROM edges WHERE project_id = ? AND (
		   source_id IN (SELECT id FROM nodes WHERE file_path = ? AND project_id = ?)
		   OR target_id IN (SELECT id FROM nodes WHERE file_path = ? AND project_id = ?))`,
		g.projectID, filePath, g.projectID, filePath, g.projectID); err != nil {
		return herrors.StorageError("delete edges for file", err)
	}
	if _, err := db.Exec(`DELETE FROM nodes WHERE file_path = ? AND project_id = ?`, filePath, g.projectID); err != nil {
		return herrors.StorageError("delete nodes for file", err)
	}
	return nil
}

// GetAllNodes returns every node in the project, used by the L2 vector tier.
func (g *Graph) GetAllNodes() ([]store.Node, error) {
	unlock := g.store.Lock()
	defer unlock()

	rows, err := g.store.DB().Query(
		`SELECT id, project_id, name, node_type, file_path, start_line, end_line, summary, content_hash, created_at, updated_at
		 FROM nodes WHERE project_id = ?`, g.projectID)
	if err != nil {
		return nil, herrors.StorageError("get all nodes", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// FTSHit is a raw full-text match, bm25 rank and all.
type FTSHit struct {
	Node store.Node
	Rank float64
}

// FTSSearch runs query against the FTS5 index and returns up to limit hits
// ordered by bm25 rank (most relevant first; bm25 itself is negative and
// ascending in relevance, so callers compare ascending).
func (g *Graph) FTSSearch(query string, limit int) ([]FTSHit, error) {
	unlock := g.store.Lock()
	defer unlock()

	rows, err := g.store.DB().Query(
		`SELECT n.id, n.project_id, n.name, n.node_type, n.file_path, n.start_line, n.end_line, n.summary, n.content_hash,
		        n.created_at, n.updated_at, bm25(fts_content) as rank
		 FROM fts_content f
		 JOIN nodes n ON n.id = f.node_id
		 WHERE fts_content MATCH ? AND f.project_id = ?
		 ORDER BY rank
		 LIMIT ?`, query, g.projectID, limit)
	if err != nil {
		return nil, herrors.StorageError("fts search", err)
	}
	defer rows.Close()

	var out []FTSHit
	for rows.Next() {
		var n store.Node
		var nodeType, createdAt, updatedAt string
		var rank float64
		if err := rows.Scan(&n.ID, &n.ProjectID, &n.Name, &nodeType, &n.FilePath, &n.StartLine, &n.EndLine,
			&n.Summary, &n.ContentHash, &createdAt, &updatedAt, &rank); err != nil {
			return nil, herrors.StorageError("scan fts hit", err)
		}
		n.NodeType = store.NodeType(nodeType)
		n.CreatedAt = parseRFC3339(createdAt)
		n.UpdatedAt = parseRFC3339(updatedAt)
		out = append(out, FTSHit{Node: n, Rank: rank})
	}
	return out, rows.Err()
}
