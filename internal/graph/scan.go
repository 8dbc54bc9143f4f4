package graph

import (
	"database/sql"
	"strings"
	"time"

	"github.com/hermes-project/hermes/internal/herrors"
	"github.com/hermes-project/hermes/internal/store"
)

const rfc3339 = time.RFC3339Nano

func parseRFC3339(s string) time.Time {
	t, err := time.Parse(rfc3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

type scannable interface {
	Scan(dest ...any) error
}

func scanNode(row scannable) (store.Node, error) {
	var n store.Node
	var nodeType, createdAt, updatedAt string
	err := row.Scan(&n.ID, &n.ProjectID, &n.Name, &nodeType, &n.FilePath, &n.StartLine, &n.EndLine,
		&n.Summary, &n.ContentHash, &createdAt, &updatedAt)
	if err != nil {
		return store.Node{}, err
	}
	n.NodeType = store.NodeType(nodeType)
	n.CreatedAt = parseRFC3339(createdAt)
	n.UpdatedAt = parseRFC3339(updatedAt)
	return n, nil
}

func scanNodes(rows *sql.Rows) ([]store.Node, error) {
	var out []store.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, herrors.StorageError("scan node", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func prefixPattern(query string) string {
	return strings.ToLower(query) + "%"
}

func containsPattern(query string) string {
	return "%" + strings.ToLower(query) + "%"
}
