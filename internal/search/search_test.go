package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ragmcp/internal/embed"
	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

type stubProvider struct {
	dims    int
	vectors map[string][]float32
	calls   int
}

func (s *stubProvider) Model() string   { return "stub" }
func (s *stubProvider) Dimensions() int { return s.dims }

func (s *stubProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			v = make([]float32, s.dims)
		}
		out[i] = v
	}
	return out, nil
}

func setupSearchStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func insertSearchFixture(t *testing.T, st store.Store) (docID string, chunkID string) {
	t.Helper()
	ctx := context.Background()
	doc := &domain.Document{Path: "guides/auth.md", Type: domain.DocTypeMarkdown, Namespace: "guides", ContentText: "Use JWT tokens for authentication."}
	doc.ComputeFileHash()
	require.NoError(t, st.UpsertDocument(ctx, doc))

	chunk := &domain.Chunk{DocID: doc.ID, ChunkIndex: 0, Text: "Use JWT tokens for authentication.", SectionHeader: "Authentication"}
	require.NoError(t, st.InsertChunk(ctx, chunk))
	require.NoError(t, st.SetChunkEmbedding(ctx, chunk.ID, []float32{1, 0, 0}))
	return doc.ID, chunk.ID
}

func TestBM25Search_FindsMatchingChunk(t *testing.T) {
	st := setupSearchStore(t)
	insertSearchFixture(t, st)

	bm25 := &BM25{Store: st}
	results, err := bm25.Search(context.Background(), "authentication", domain.SearchFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Rank)
}

func TestBM25Search_EmptyQueryReturnsEmpty(t *testing.T) {
	st := setupSearchStore(t)
	insertSearchFixture(t, st)

	bm25 := &BM25{Store: st}
	results, err := bm25.Search(context.Background(), "   ", domain.SearchFilters{}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorSearch_UsesCacheOnRepeatedQuery(t *testing.T) {
	st := setupSearchStore(t)
	insertSearchFixture(t, st)

	provider := &stubProvider{dims: 3, vectors: map[string][]float32{"authentication": {1, 0, 0}}}
	cache := embed.NewCache(10)
	v := &Vector{Store: st, Provider: provider, Cache: cache}

	_, err := v.Search(context.Background(), "authentication", domain.SearchFilters{}, 10)
	require.NoError(t, err)
	_, err = v.Search(context.Background(), "authentication", domain.SearchFilters{}, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls, "second search must hit the cache, not the provider")
}
