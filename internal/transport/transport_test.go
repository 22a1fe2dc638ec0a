package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dshills/ragmcp/internal/dispatcher"
	"github.com/dshills/ragmcp/internal/embed"
	"github.com/dshills/ragmcp/internal/ingest"
	"github.com/dshills/ragmcp/internal/pathvalidator"
	"github.com/dshills/ragmcp/internal/search"
	"github.com/dshills/ragmcp/internal/store"
)

type stubProvider struct{ dims int }

func (s *stubProvider) Model() string   { return "stub" }
func (s *stubProvider) Dimensions() int { return s.dims }

func (s *stubProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func setupDispatcher(t *testing.T) (*dispatcher.Dispatcher, store.Store) {
	t.Helper()
	root := t.TempDir()

	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ig := ingest.New(st, ingest.Config{Root: root})
	provider := &stubProvider{dims: 3}
	cache := embed.NewCache(10)
	fusion := search.New(&search.BM25{Store: st}, &search.Vector{Store: st, Provider: provider, Cache: cache}, st)
	embedder := embed.New(provider, st, cache, 0)

	validator, err := pathvalidator.New(root, nil)
	require.NoError(t, err)

	d := dispatcher.New(st, fusion, ig, embedder, validator, dispatcher.SearchDefaults{})
	return d, st
}
