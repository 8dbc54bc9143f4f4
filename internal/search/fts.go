package search

import (
	"fmt"
	"strings"

	"github.com/hermes-project/hermes/internal/graph"
)

const (
	ftsLimit           = 20
	ftsStrategyMinRows = 3
	ftsMaxQueryWords   = 10
)

// ftsSearch runs a three-strategy cascade against the FTS5 index: an exact
// phrase match first (highest precision), falling back to an AND-prefix
// match, then an OR match, each strategy tried only if the previous one
// came back with fewer than ftsStrategyMinRows hits.
func ftsSearch(g *graph.Graph, query string) ([]Result, error) {
	words := meaningfulWords(query)
	if len(words) == 0 {
		return nil, nil
	}

	if len(words) == 1 {
		hits, err := g.FTSSearch(fmt.Sprintf("%q", words[0]), ftsLimit)
		if err != nil {
			return nil, err
		}
		return toResults(hits), nil
	}

	phrase := fmt.Sprintf("%q", strings.Join(words, " "))
	if hits, err := g.FTSSearch(phrase, ftsLimit); err != nil {
		return nil, err
	} else if len(hits) >= ftsStrategyMinRows {
		return toResults(hits), nil
	}

	andQuery := andPrefixQuery(words)
	if hits, err := g.FTSSearch(andQuery, ftsLimit); err != nil {
		return nil, err
	} else if len(hits) >= ftsStrategyMinRows {
		return toResults(hits), nil
	}

	hits, err := g.FTSSearch(orQuery(words), ftsLimit)
	if err != nil {
		return nil, err
	}
	return toResults(hits), nil
}

func meaningfulWords(query string) []string {
	fields := strings.Fields(query)
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if isFTSOperator(w) {
			continue
		}
		words = append(words, w)
		if len(words) == ftsMaxQueryWords {
			break
		}
	}
	return words
}

func isFTSOperator(word string) bool {
	switch strings.ToUpper(word) {
	case "AND", "OR", "NOT", "NEAR":
		return true
	}
	return false
}

func andPrefixQuery(words []string) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = fmt.Sprintf("%q*", w)
	}
	return strings.Join(parts, " AND ")
}

func orQuery(words []string) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = fmt.Sprintf("%q", w)
	}
	return strings.Join(parts, " OR ")
}

func toResults(hits []graph.FTSHit) []Result {
	out := make([]Result, len(hits))
	for i, h := range hits {
		out[i] = Result{Node: h.Node, Score: normalizeBM25(h.Rank), Tier: TierL1FTS}
	}
	return out
}

// normalizeBM25 maps SQLite's bm25() rank (negative, more negative is more
// relevant) onto a 0..1 relevance score.
func normalizeBM25(rank float64) float64 {
	abs := rank
	if abs < 0 {
		abs = -abs
	}
	if abs < 0.001 {
		return 0.5
	}
	score := 1.0 - 1.0/(1.0+abs)
	if score > 1.0 {
		score = 1.0
	}
	return score
}
