package eval

import "github.com/dshills/ragmcp/pkg/domain"

// precisionAtK is the proportion of the top k results that are relevant.
// Returns 0 when k is 0.
func precisionAtK(results []domain.SearchResult, relevantChunkIDs []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	relevant := toSet(relevantChunkIDs)
	top := results
	if len(top) > k {
		top = top[:k]
	}
	count := 0
	for _, r := range top {
		if relevant[r.ChunkID] {
			count++
		}
	}
	return float64(count) / float64(k)
}

// recallAtK is the proportion of all relevant chunks that appear in the
// top k results. Returns 0 when there is no ground truth to recall.
func recallAtK(results []domain.SearchResult, relevantChunkIDs []string, k int) float64 {
	if len(relevantChunkIDs) == 0 {
		return 0
	}
	relevant := toSet(relevantChunkIDs)
	top := results
	if len(top) > k {
		top = top[:k]
	}
	count := 0
	for _, r := range top {
		if relevant[r.ChunkID] {
			count++
		}
	}
	return float64(count) / float64(len(relevantChunkIDs))
}

// meanReciprocalRank averages, over every query, 1/rank of that query's
// first relevant result (0 if it has none), using 1-based rank.
func meanReciprocalRank(queries []Query, resultSets [][]domain.SearchResult) float64 {
	if len(queries) == 0 {
		return 0
	}
	var sum float64
	for i, q := range queries {
		for rank, r := range resultSets[i] {
			if q.isRelevant(r) {
				sum += 1.0 / float64(rank+1)
				break
			}
		}
	}
	return sum / float64(len(queries))
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
