package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

type fakeProvider struct {
	dims       int
	calls      int
	failOnCall int
	vectors    func(texts []string) [][]float32
}

func (f *fakeProvider) Model() string   { return "fake-model" }
func (f *fakeProvider) Dimensions() int { return f.dims }

func (f *fakeProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failOnCall > 0 && f.calls == f.failOnCall {
		return nil, assert.AnError
	}
	if f.vectors != nil {
		return f.vectors(texts), nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 0, 0}
	}
	return out, nil
}

func setupEmbedStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func insertDocAndChunks(t *testing.T, st store.Store, n int) []*domain.Chunk {
	t.Helper()
	ctx := context.Background()
	doc := &domain.Document{Path: "a.md", Namespace: "default", ContentText: "x", FileHash: "h"}
	require.NoError(t, st.UpsertDocument(ctx, doc))

	chunks := make([]*domain.Chunk, n)
	for i := 0; i < n; i++ {
		c := &domain.Chunk{DocID: doc.ID, ChunkIndex: i, Text: "chunk text"}
		require.NoError(t, st.InsertChunk(ctx, c))
		chunks[i] = c
	}
	return chunks
}

func TestEmbedMissing_EmbedsAllPendingChunks(t *testing.T) {
	st := setupEmbedStore(t)
	insertDocAndChunks(t, st, 5)

	e := New(&fakeProvider{dims: 3}, st, NewCache(100), 2)
	report, err := e.EmbedMissing(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Embedded)

	count, err := st.CountEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestEmbedMissing_NoOpWhenNothingPending(t *testing.T) {
	st := setupEmbedStore(t)
	e := New(&fakeProvider{dims: 3}, st, NewCache(100), 10)
	report, err := e.EmbedMissing(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Embedded)
}

func TestEmbedMissing_IdempotentOnSecondRun(t *testing.T) {
	st := setupEmbedStore(t)
	insertDocAndChunks(t, st, 3)

	e := New(&fakeProvider{dims: 3}, st, NewCache(100), 10)
	_, err := e.EmbedMissing(context.Background(), false)
	require.NoError(t, err)

	before, _ := st.CountEmbeddings(context.Background())
	report, err := e.EmbedMissing(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Embedded)
	after, _ := st.CountEmbeddings(context.Background())
	assert.Equal(t, before, after)
}

func TestEmbedMissing_ForceRevisitsAlreadyEmbeddedChunks(t *testing.T) {
	st := setupEmbedStore(t)
	insertDocAndChunks(t, st, 3)

	e := New(&fakeProvider{dims: 3}, st, NewCache(100), 10)
	_, err := e.EmbedMissing(context.Background(), false)
	require.NoError(t, err)

	report, err := e.EmbedMissing(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Embedded)
}

func TestEmbedMissing_FailurePreservesEarlierCommittedPages(t *testing.T) {
	st := setupEmbedStore(t)
	insertDocAndChunks(t, st, 4)

	provider := &fakeProvider{dims: 3, failOnCall: 2}
	// first page (2 chunks) succeeds, second page fails
	provider.vectors = func(texts []string) [][]float32 {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 1, 1}
		}
		return out
	}

	// No cache: every chunk shares the same text, so a cache would serve the
	// second page without calling the provider again.
	e := New(provider, st, nil, 2)
	_, err := e.EmbedMissing(context.Background(), false)
	require.Error(t, err)

	count, err := st.CountEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count, "the first successfully embedded page must remain committed")
}

func TestEmbedMissing_SkipsChunkWithWrongDimensionVector(t *testing.T) {
	st := setupEmbedStore(t)
	insertDocAndChunks(t, st, 3)

	provider := &fakeProvider{dims: 3}
	// the second vector comes back short, as if the provider silently
	// switched models mid-batch.
	provider.vectors = func(texts []string) [][]float32 {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 1, 1}
		}
		out[1] = []float32{1, 1}
		return out
	}

	e := New(provider, st, NewCache(100), 10)
	report, err := e.EmbedMissing(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Embedded)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Errors, 1)

	count, err := st.CountEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count, "the mismatched vector must never reach the store")
}

func TestCache_RoundTripsByModelAndDimension(t *testing.T) {
	c := NewCache(10)
	c.Set("m1", 3, "hello", []float32{1, 2, 3})

	v, ok := c.Get("m1", 3, "hello")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, v)

	_, ok = c.Get("m2", 3, "hello")
	assert.False(t, ok, "cache key must include model")

	_, ok = c.Get("m1", 4, "hello")
	assert.False(t, ok, "cache key must include dimension")
}
