package search

import (
	"fmt"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hermes-project/hermes/internal/graph"
	"github.com/hermes-project/hermes/internal/store"
)

const (
	shortCircuitSkipAll = 0.9
	shortCircuitSkipL2  = 0.8
)

type fetchKey struct {
	filePath string
	start    int
	end      int
}

// Engine runs the L0/L1/L2 cascade over a Graph and caches both search
// responses and fetched file content.
type Engine struct {
	graph       *graph.Graph
	resultCache *expirable.LRU[string, Response]
	fetchCache  *lru.Cache[fetchKey, string]
}

// Config controls the engine's cache sizing (60s/256 entries for results,
// 50 entries for fetched content by default).
type Config struct {
	ResultCacheTTL      time.Duration
	ResultCacheCapacity int
	FetchCacheCapacity  int
}

// New returns an Engine over g with the given cache configuration.
func New(g *graph.Graph, cfg Config) *Engine {
	fetchCache, _ := lru.New[fetchKey, string](cfg.FetchCacheCapacity)
	return &Engine{
		graph:       g,
		resultCache: expirable.NewLRU[string, Response](cfg.ResultCacheCapacity, nil, cfg.ResultCacheTTL),
		fetchCache:  fetchCache,
	}
}

// Search runs the cascade for query, short-circuiting later tiers once an
// earlier tier's results are confident enough.
func (e *Engine) Search(query string, topK int) (Response, error) {
	cacheKey := fmt.Sprintf("%s:%d", strings.ToLower(strings.TrimSpace(query)), topK)
	if cached, ok := e.resultCache.Get(cacheKey); ok {
		return cached, nil
	}

	l0, err := literalSearch(e.graph, query)
	if err != nil {
		return Response{}, err
	}

	if topK > 0 && len(l0) >= topK {
		minScore := l0[0].Score
		for _, r := range l0[:topK] {
			if r.Score < minScore {
				minScore = r.Score
			}
		}
		if minScore >= shortCircuitSkipAll {
			resp := buildAndCache(e, cacheKey, dedupeAndRank(l0, topK))
			return resp, nil
		}
		if minScore >= shortCircuitSkipL2 {
			l1, err := ftsSearch(e.graph, query)
			if err != nil {
				return Response{}, err
			}
			resp := buildAndCache(e, cacheKey, dedupeAndRank(append(l0, l1...), topK))
			return resp, nil
		}
	}

	l1, err := ftsSearch(e.graph, query)
	if err != nil {
		return Response{}, err
	}
	l2, err := vectorSearch(e.graph, query)
	if err != nil {
		return Response{}, err
	}

	all := append(append(l0, l1...), l2...)
	resp := buildAndCache(e, cacheKey, dedupeAndRank(all, topK))
	return resp, nil
}

func buildAndCache(e *Engine, key string, ranked []Result) Response {
	pointers := toPointers(ranked)
	resp := BuildResponse(pointers, 0)
	e.resultCache.Add(key, resp)
	return resp
}

// dedupeAndRank keeps, for each node id, the result with the highest
// tier-bonus-adjusted score, but reports that result's raw (un-boosted)
// score, then returns the top topK by that raw score.
func dedupeAndRank(results []Result, topK int) []Result {
	best := make(map[string]Result, len(results))
	bestBoosted := make(map[string]float64, len(results))

	for _, r := range results {
		boosted := r.Score + r.Tier.tierBonus()
		id := r.Node.ID
		if _, ok := best[id]; !ok || boosted > bestBoosted[id] {
			best[id] = r
			bestBoosted[id] = boosted
		}
	}

	ranked := make([]Result, 0, len(best))
	for _, r := range best {
		ranked = append(ranked, r)
	}
	sortResultsDescending(ranked)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

func sortResultsDescending(results []Result) {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Score > results[j-1].Score; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
}

func toPointers(results []Result) []Pointer {
	out := make([]Pointer, len(results))
	for i, r := range results {
		out[i] = Pointer{
			ID:        r.Node.ID,
			Source:    r.Node.FilePath,
			Chunk:     r.Node.Name,
			Lines:     fmt.Sprintf("%d-%d", r.Node.StartLine, r.Node.EndLine),
			Relevance: r.Score,
			Summary:   r.Node.Summary,
			NodeType:  string(r.Node.NodeType),
		}
	}
	return out
}

// Fetch returns the full content backing pointerID, reading from the
// fetch cache when available.
func (e *Engine) Fetch(pointerID string) (*FetchResult, error) {
	n, ok, err := e.graph.GetNode(pointerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	content, err := e.readNodeContentCached(n)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		PointerID:  n.ID,
		Content:    content,
		FilePath:   n.FilePath,
		StartLine:  n.StartLine,
		EndLine:    n.EndLine,
		TokenCount: EstimateTokens(content),
	}, nil
}

func (e *Engine) readNodeContentCached(n store.Node) (string, error) {
	if n.FilePath == "" {
		return readNodeContent(n)
	}
	key := fetchKey{filePath: n.FilePath, start: n.StartLine, end: n.EndLine}
	if content, ok := e.fetchCache.Get(key); ok {
		return content, nil
	}
	content, err := readNodeContent(n)
	if err != nil {
		return "", err
	}
	e.fetchCache.Add(key, content)
	return content, nil
}

func readNodeContent(n store.Node) (string, error) {
	if n.FilePath == "" {
		return "", nil
	}
	raw, err := os.ReadFile(n.FilePath)
	if err != nil {
		return fmt.Sprintf("[File not found: %s]", n.FilePath), nil
	}
	content := string(raw)
	if n.EndLine == 0 {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	start := n.StartLine
	if start < 1 {
		start = 1
	}
	startIdx := start - 1
	if startIdx > len(lines) {
		startIdx = len(lines)
	}
	endIdx := n.EndLine
	if endIdx > len(lines) {
		endIdx = len(lines)
	}
	if startIdx >= endIdx {
		return "", nil
	}
	return strings.Join(lines[startIdx:endIdx], "\n"), nil
}

// InvalidateCache clears every cached search response, used after a reindex.
func (e *Engine) InvalidateCache() {
	e.resultCache.Purge()
}
