package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ragmcp/internal/embed"
	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

func setupFusion(t *testing.T, provider *stubProvider) (*Fusion, store.Store) {
	t.Helper()
	st := setupSearchStore(t)
	bm25 := &BM25{Store: st}
	vec := &Vector{Store: st, Provider: provider, Cache: embed.NewCache(10)}
	return New(bm25, vec, st), st
}

func TestFusionSearch_HybridMergesBothLists(t *testing.T) {
	provider := &stubProvider{dims: 3, vectors: map[string][]float32{"authentication": {1, 0, 0}}}
	fusion, st := setupFusion(t, provider)
	insertSearchFixture(t, st)

	results, err := fusion.Search(context.Background(), Request{Query: "authentication", K: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.RetrievalHybrid, results[0].Method)
	assert.Greater(t, results[0].Score, 0.0)

	// allow the async query-log write to land before the test process exits
	time.Sleep(10 * time.Millisecond)
	count, err := st.CountChunks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFusionSearch_RespectsMinScore(t *testing.T) {
	provider := &stubProvider{dims: 3, vectors: map[string][]float32{"authentication": {1, 0, 0}}}
	fusion, st := setupFusion(t, provider)
	insertSearchFixture(t, st)

	results, err := fusion.Search(context.Background(), Request{Query: "authentication", K: 5, MinScore: 1.1})
	require.NoError(t, err)
	assert.Empty(t, results, "min_score above the maximum normalized score must drop every result")
}

func TestFusionSearch_OverfetchSkipsMinScoreDrop(t *testing.T) {
	provider := &stubProvider{dims: 3, vectors: map[string][]float32{"authentication": {1, 0, 0}}}
	fusion, st := setupFusion(t, provider)
	insertSearchFixture(t, st)

	results, err := fusion.Search(context.Background(), Request{Query: "authentication", K: 5, MinScore: 1.1, Overfetch: 20})
	require.NoError(t, err)
	assert.Len(t, results, 1, "overfetch mode returns the raw fused list without the min_score filter")
}

func TestFuse_DeterministicTieBreakByChunkID(t *testing.T) {
	bm25 := []domain.RankedChunk{{ChunkID: "b", Score: 1, Rank: 1}, {ChunkID: "a", Score: 1, Rank: 1}}
	fused := fuse(bm25, nil, 0.5, 0.5)
	require.Len(t, fused, 2)
	assert.Equal(t, "a", fused[0].chunkID)
}

func TestFuse_MissingRankContributesZero(t *testing.T) {
	bm25 := []domain.RankedChunk{{ChunkID: "a", Rank: 1}}
	vector := []domain.RankedChunk{{ChunkID: "a", Rank: 1}, {ChunkID: "b", Rank: 1}}
	fused := fuse(bm25, vector, 0.5, 0.5)

	var scoreA, scoreB float64
	for _, e := range fused {
		if e.chunkID == "a" {
			scoreA = e.rrfScore
		}
		if e.chunkID == "b" {
			scoreB = e.rrfScore
		}
	}
	assert.Greater(t, scoreA, scoreB, "a appears in both lists and must outrank b which appears only in vector")
}
