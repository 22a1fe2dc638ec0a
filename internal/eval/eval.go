// Package eval implements an offline evaluation harness: given a JSON
// dataset of queries with expected-relevant documents or entities, it
// runs each through the Fusion engine and reports Precision@5,
// Recall@10, and Mean Reciprocal Rank, matching the original system's
// eval module (no teacher equivalent — the teacher ships no evaluation
// tooling at all).
package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dshills/ragmcp/internal/search"
	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

// Query is one row of the evaluation dataset. A query with none of
// ExpectedDoc, ExpectedSection, or ExpectedEntities set carries no
// ground truth and is never counted relevant against any result.
type Query struct {
	QueryText        string   `json:"query"`
	Category         string   `json:"category"`
	ExpectedDoc      string   `json:"expected_doc,omitempty"`
	ExpectedSection  string   `json:"expected_section,omitempty"`
	ExpectedEntities []string `json:"expected_entities,omitempty"`
	RelevantChunkIDs []string `json:"relevant_chunk_ids,omitempty"`
}

// LoadQueries reads and parses a JSON array of Query from path.
func LoadQueries(path string) ([]Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading eval queries %s: %w", path, err)
	}
	var queries []Query
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("parsing eval queries %s: %w", path, err)
	}
	return queries, nil
}

// relevantChunkIDs resolves the set of chunk ids considered relevant for
// q. An explicit RelevantChunkIDs list wins outright; otherwise it scans
// every document for one whose normalized path contains the normalized
// ExpectedDoc as a substring (the original dataset mixes path styles —
// "module-alpha/overview.md" must match a flattened
// "agents/module-alpha/docs_module-alpha_overview.md" — so exact lookup
// isn't enough), then collects that document's chunk ids, narrowed to
// ExpectedSection when set.
func (q Query) relevantChunkIDs(ctx context.Context, st store.Store) ([]string, error) {
	if len(q.RelevantChunkIDs) > 0 {
		return q.RelevantChunkIDs, nil
	}
	if q.ExpectedDoc == "" {
		return nil, nil
	}
	expected := strings.ToLower(normalizeSlashes(q.ExpectedDoc))

	namespaces, err := st.ListNamespaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing namespaces for eval relevance: %w", err)
	}
	var docs []*domain.Document
	for _, ns := range namespaces {
		nsDocs, err := st.ListDocumentsByNamespace(ctx, ns)
		if err != nil {
			return nil, fmt.Errorf("listing documents for eval relevance: %w", err)
		}
		docs = append(docs, nsDocs...)
	}

	var ids []string
	for _, doc := range docs {
		if !pathMatches(doc.Path, expected) {
			continue
		}
		chunks, err := st.ListChunksByDoc(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("listing chunks of %s for eval relevance: %w", doc.Path, err)
		}
		for _, c := range chunks {
			if q.ExpectedSection != "" && c.SectionHeader != q.ExpectedSection {
				continue
			}
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// isRelevant reports whether result satisfies every ground-truth
// criterion q sets. A query with no criteria at all is never relevant,
// so it can't inflate MRR.
func (q Query) isRelevant(result domain.SearchResult) bool {
	hasDoc := q.ExpectedDoc != ""
	hasSection := q.ExpectedSection != ""
	hasEntities := len(q.ExpectedEntities) > 0
	if !hasDoc && !hasSection && !hasEntities {
		return false
	}
	if hasDoc && !pathMatches(result.DocPath, q.ExpectedDoc) {
		return false
	}
	if hasSection && result.SectionHeader != q.ExpectedSection {
		return false
	}
	if hasEntities {
		agent := domain.AgentNameFor(result.DocPath)
		if agent == "" {
			return false
		}
		matched := false
		for _, e := range q.ExpectedEntities {
			if agent == strings.TrimPrefix(e, "agent:") || agent == e {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// pathMatches reports whether got contains expected case-insensitively,
// either as written or with its slashes flattened to underscores, so
// "module-alpha/overview.md" also matches
// "agents/module-alpha/docs_module-alpha_overview.md".
func pathMatches(got, expected string) bool {
	g := strings.ToLower(normalizeSlashes(got))
	e := strings.ToLower(normalizeSlashes(expected))
	return strings.Contains(g, e) || strings.Contains(g, strings.ReplaceAll(e, "/", "_"))
}

func normalizeSlashes(p string) string {
	return strings.Trim(strings.ReplaceAll(p, "\\", "/"), "/")
}

// QueryResult is one evaluated query's outcome, kept for per-query
// reporting alongside the aggregate Report metrics.
type QueryResult struct {
	Query        string
	Category     string
	PrecisionAt5 float64
	RecallAt10   float64
	ResultCount  int
}

// Report is the full evaluation outcome across a dataset.
type Report struct {
	Queries      []QueryResult
	AvgPrecision float64
	AvgRecall    float64
	MRR          float64
}

// Pass thresholds, matching the original evaluation harness's gate.
const (
	ThresholdPrecision = 0.85
	ThresholdRecall    = 0.90
	ThresholdMRR       = 0.80
)

// Pass reports whether every metric clears its threshold.
func (r *Report) Pass() bool {
	return r.AvgPrecision >= ThresholdPrecision && r.AvgRecall >= ThresholdRecall && r.MRR >= ThresholdMRR
}

// minRetrieve is the floor on how many results each query asks the
// Fusion engine for, large enough to compute Recall@10 regardless of a
// smaller configured default_k.
const minRetrieve = 10

// Run evaluates every query in queries against fusion, resolving ground
// truth from st, and returns the aggregate Report.
func Run(ctx context.Context, fusion *search.Fusion, st store.Store, queries []Query) (*Report, error) {
	report := &Report{Queries: make([]QueryResult, 0, len(queries))}
	if len(queries) == 0 {
		return report, nil
	}

	allResults := make([][]domain.SearchResult, 0, len(queries))
	var precisionSum, recallSum float64

	for _, q := range queries {
		results, err := fusion.Search(ctx, search.Request{
			Query:     q.QueryText,
			K:         minRetrieve,
			Overfetch: minRetrieve, // bypass min_score filtering; eval wants the raw ranked list
		})
		if err != nil {
			return nil, fmt.Errorf("evaluating query %q: %w", q.QueryText, err)
		}
		relevant, err := q.relevantChunkIDs(ctx, st)
		if err != nil {
			return nil, err
		}

		precision := precisionAtK(results, relevant, 5)
		recall := recallAtK(results, relevant, 10)
		precisionSum += precision
		recallSum += recall
		allResults = append(allResults, results)

		report.Queries = append(report.Queries, QueryResult{
			Query:        q.QueryText,
			Category:     q.Category,
			PrecisionAt5: precision,
			RecallAt10:   recall,
			ResultCount:  len(results),
		})
	}

	n := float64(len(queries))
	report.AvgPrecision = precisionSum / n
	report.AvgRecall = recallSum / n
	report.MRR = meanReciprocalRank(queries, allResults)
	return report, nil
}
