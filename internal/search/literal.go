package search

import (
	"sort"
	"strings"

	"github.com/hermes-project/hermes/internal/graph"
)

const literalLimit = 20

// literalSearch matches nodes by name with SQL LIKE on the lowercased name:
// a prefix pass, then a substring pass only when the prefix pass finds
// nothing. Results are scored by how closely the name matches the query
// (exact > prefix/suffix > partial). The substring pattern starts with a
// wildcard, so that pass cannot use an index.
func literalSearch(g *graph.Graph, query string) ([]Result, error) {
	queryLower := strings.ToLower(query)
	if strings.TrimSpace(queryLower) == "" {
		return nil, nil
	}
	nodes, err := g.LiteralSearchByName(query)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(nodes))
	for _, n := range nodes {
		nameLower := strings.ToLower(n.Name)
		results = append(results, Result{
			Node:  n,
			Score: literalScore(queryLower, nameLower),
			Tier:  TierL0Literal,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > literalLimit {
		results = results[:literalLimit]
	}
	return results, nil
}

func literalScore(query, name string) float64 {
	if name == query {
		return 1.0
	}
	if strings.HasPrefix(name, query) || strings.HasSuffix(name, query) {
		return 0.9
	}
	nameLen := len(name)
	if nameLen == 0 {
		nameLen = 1
	}
	return 0.5 + (float64(len(query))/float64(nameLen))*0.4
}
