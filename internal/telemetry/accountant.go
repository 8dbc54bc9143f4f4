// Package telemetry records per-query token accounting: how many tokens a
// pointer-based search actually cost versus a notional traditional-RAG
// baseline, cumulatively, per session, and over a recent window. It
// corresponds to C10 in the design.
package telemetry

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hermes-project/hermes/internal/herrors"
	"github.com/hermes-project/hermes/internal/store"
)

// TraditionalRAGMultiplier is the notional per-token cost multiplier of a
// traditional whole-file RAG pipeline relative to pointer-based retrieval,
// used to compute the baseline a query is compared against.
const TraditionalRAGMultiplier = 15

// Stats summarizes accounting rows over some window.
type Stats struct {
	TotalQueries            int64
	TotalPointerTokens       int64
	TotalFetchedTokens       int64
	TotalTraditionalEstimate int64
	SavingsTokens            int64
	SavingsPct               float64
}

// Accountant records and aggregates accounting rows for one project/session.
type Accountant struct {
	s         *store.Store
	projectID string
	sessionID string
}

// New returns an Accountant bound to s, scoped to projectID and sessionID.
func New(s *store.Store, projectID, sessionID string) *Accountant {
	return &Accountant{s: s, projectID: projectID, sessionID: sessionID}
}

// TraditionalEstimate returns the notional token cost a traditional RAG
// pipeline would have paid to deliver tokenCount tokens of content.
func TraditionalEstimate(tokenCount int) int {
	return tokenCount * TraditionalRAGMultiplier
}

// Record persists one query's token accounting.
func (a *Accountant) Record(queryText string, pointerTokens, fetchedTokens, traditionalEstimate int) error {
	unlock := a.s.Lock()
	defer unlock()

	_, err := a.s.DB().Exec(
		`INSERT INTO accounting (project_id, session_id, query_text, pointer_tokens, fetched_tokens, traditional_estimate, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.projectID, a.sessionID, queryText, pointerTokens, fetchedTokens, traditionalEstimate,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return herrors.StorageError("record accounting row", err)
	}
	return nil
}

// Cumulative aggregates every row ever recorded for the project.
func (a *Accountant) Cumulative() (Stats, error) {
	return a.aggregate(`WHERE project_id = ?`, a.projectID)
}

// Session aggregates rows recorded by this Accountant's session only.
func (a *Accountant) Session() (Stats, error) {
	return a.aggregate(`WHERE project_id = ? AND session_id = ?`, a.projectID, a.sessionID)
}

// Since aggregates rows recorded within d of now.
func (a *Accountant) Since(d time.Duration) (Stats, error) {
	cutoff := time.Now().UTC().Add(-d).Format(time.RFC3339Nano)
	return a.aggregate(`WHERE project_id = ? AND created_at >= ?`, a.projectID, cutoff)
}

func (a *Accountant) aggregate(where string, args ...any) (Stats, error) {
	unlock := a.s.Lock()
	defer unlock()

	query := fmt.Sprintf(
		`SELECT COUNT(*), COALESCE(SUM(pointer_tokens),0), COALESCE(SUM(fetched_tokens),0), COALESCE(SUM(traditional_estimate),0)
		 FROM accounting %s`, where)
	row := a.s.DB().QueryRow(query, args...)

	var stats Stats
	if err := row.Scan(&stats.TotalQueries, &stats.TotalPointerTokens, &stats.TotalFetchedTokens, &stats.TotalTraditionalEstimate); err != nil {
		return Stats{}, herrors.StorageError("aggregate accounting", err)
	}

	actual := stats.TotalPointerTokens + stats.TotalFetchedTokens
	if stats.TotalTraditionalEstimate > actual {
		stats.SavingsTokens = stats.TotalTraditionalEstimate - actual
	}
	if stats.TotalTraditionalEstimate > 0 {
		stats.SavingsPct = (float64(stats.SavingsTokens) / float64(stats.TotalTraditionalEstimate)) * 100
	}
	return stats, nil
}

// ParseSince parses a "24h"/"7d"/"all" window spec into a duration. "all"
// and anything unrecognized return ok=false, signaling the caller should
// use Cumulative instead of Since.
func ParseSince(spec string) (time.Duration, bool) {
	s := strings.ToLower(strings.TrimSpace(spec))
	switch {
	case s == "all" || s == "":
		return 0, false
	case strings.HasSuffix(s, "h"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return 0, false
		}
		return time.Duration(n) * time.Hour, true
	case strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	default:
		return 0, false
	}
}
