// Package search implements Hermes's three-tier hybrid search cascade:
// literal name matching (L0), full-text BM25 (L1), and a local hashed
// bag-of-words cosine similarity fallback (L2). It corresponds to C7 and
// C8 in the design.
package search

import (
	"strings"

	"github.com/hermes-project/hermes/internal/store"
)

// Mode names how much of a matched node's content a caller wants back
// inline. It is accepted for protocol compatibility only: all three modes
// return the same pointers, neither the engine nor the RPC/CLI layer
// changes its output by mode, and content is always retrieved with Fetch.
type Mode string

const (
	ModePointer Mode = "pointer"
	ModeSmart   Mode = "smart"
	ModeFull    Mode = "full"
)

// Tier identifies which cascade stage produced a Result.
type Tier string

const (
	TierL0Literal Tier = "l0_literal"
	TierL1FTS     Tier = "l1_fts"
	TierL2Vector  Tier = "l2_vector"
)

// tierBonus is added to a raw score only to choose which tier's candidate
// wins when several tiers return the same node; the bonus-adjusted score
// picks the winner even when raw scores differ, but the result it reports
// keeps its original, un-boosted score.
func (t Tier) tierBonus() float64 {
	switch t {
	case TierL0Literal:
		return 0.3
	case TierL1FTS:
		return 0.1
	default:
		return 0.0
	}
}

// Result is one scored match from a single cascade tier.
type Result struct {
	Node  store.Node
	Score float64
	Tier  Tier
}

// Pointer is the lightweight, content-free handle to a match returned by
// Search; callers use Fetch to retrieve the underlying content on demand.
type Pointer struct {
	ID        string  `json:"id"`
	Source    string  `json:"source"`
	Chunk     string  `json:"chunk"`
	Lines     string  `json:"lines"`
	Relevance float64 `json:"relevance"`
	Summary   string  `json:"summary"`
	NodeType  string  `json:"node_type"`
}

// EstimateTokenCount approximates the token cost of rendering this pointer
// inline: roughly 4/3 tokens per whitespace-split word, plus a small fixed
// overhead for JSON structure.
func (p Pointer) EstimateTokenCount() int {
	text := strings.Join([]string{p.Source, p.Chunk, p.Lines, p.Summary}, " ")
	return EstimateTokens(text) + 2
}

// AccountingReport is the token-cost summary attached to every search response.
type AccountingReport struct {
	PointerTokens          int     `json:"pointer_tokens"`
	FetchedTokens          int     `json:"fetched_tokens"`
	TotalTokens            int     `json:"total_tokens"`
	TraditionalRAGEstimate int     `json:"traditional_rag_estimate"`
	SavingsPct             float64 `json:"savings_pct"`
}

// Response is the full result of a Search call: the ranked pointers plus
// the accounting this search incurred.
type Response struct {
	Pointers  []Pointer         `json:"pointers"`
	Accounting AccountingReport `json:"accounting"`
}

// BuildResponse computes a Response's accounting from its pointers and any
// content already fetched inline (fetchedTokens is 0 for pure pointer mode).
func BuildResponse(pointers []Pointer, fetchedTokens int) Response {
	var pointerTokens int
	for _, p := range pointers {
		pointerTokens += p.EstimateTokenCount()
	}
	traditional := pointerTokens * tokenMultiplier
	total := pointerTokens + fetchedTokens
	var savingsPct float64
	if traditional > 0 {
		savingsPct = (1 - float64(total)/float64(traditional)) * 100
		if savingsPct < 0 {
			savingsPct = 0
		}
	}
	return Response{
		Pointers: pointers,
		Accounting: AccountingReport{
			PointerTokens:          pointerTokens,
			FetchedTokens:          fetchedTokens,
			TotalTokens:            total,
			TraditionalRAGEstimate: traditional,
			SavingsPct:             savingsPct,
		},
	}
}

// tokenMultiplier has the same value as telemetry.TraditionalRAGMultiplier;
// it is kept as its own constant so that search does not import
// telemetry, and the two must be changed together.
const tokenMultiplier = 15

// EstimateTokens roughly estimates the token count of content from its
// whitespace-split word count.
func EstimateTokens(content string) int {
	words := len(strings.Fields(content))
	return (words*4 + 2) / 3
}

// FetchResult is the content returned by Fetch for one pointer id.
type FetchResult struct {
	PointerID  string `json:"pointer_id"`
	Content    string `json:"content"`
	FilePath   string `json:"file_path"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	TokenCount int    `json:"token_count"`
}
