package search

import (
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/hermes-project/hermes/internal/graph"
	"github.com/hermes-project/hermes/internal/store"
)

const (
	vectorDimension = 256
	vectorLimit     = 20
	vectorMinScore  = 0.20
)

// vectorSearch is the local, dependency-free fallback tier: it hashes
// query and node text into a fixed-width bag-of-words vector and ranks by
// cosine similarity. It never leaves the process and never calls a
// network-backed embedding service — see internal/embed for that optional,
// unused-by-default path.
func vectorSearch(g *graph.Graph, query string) ([]Result, error) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}
	queryVec := buildVector(queryTokens)

	nodes, err := g.GetAllNodes()
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, n := range nodes {
		tokens := tokenize(combinedNodeText(n))
		if len(tokens) == 0 {
			continue
		}
		score := cosineSimilarity(queryVec, buildVector(tokens))
		if score < vectorMinScore {
			continue
		}
		results = append(results, Result{Node: n, Score: score, Tier: TierL2Vector})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > vectorLimit {
		results = results[:vectorLimit]
	}
	return results, nil
}

func combinedNodeText(n store.Node) string {
	parts := []string{n.Name}
	if n.Summary != "" {
		parts = append(parts, n.Summary)
	}
	if n.FilePath != "" {
		parts = append(parts, n.FilePath)
	}
	return strings.Join(parts, " ")
}

func tokenize(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

func buildVector(tokens []string) []float64 {
	vec := make([]float64, vectorDimension)
	for _, t := range tokens {
		vec[stableHash(t)%vectorDimension]++
	}
	normalize(vec)
	return vec
}

func stableHash(s string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % (1 << 62))
}

func normalize(vec []float64) {
	var sumSquares float64
	for _, v := range vec {
		sumSquares += v * v
	}
	norm := math.Sqrt(sumSquares)
	if norm < 1e-12 {
		return
	}
	for i := range vec {
		vec[i] /= norm
	}
}

func cosineSimilarity(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
