package search

import (
	"context"

	"github.com/dshills/ragmcp/internal/apperr"
	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

// BM25 wraps the Store's FTS5-backed text search.
type BM25 struct {
	Store store.Store
}

// Search returns the top k chunks ranked by BM25 relevance. An empty or
// whitespace-only query returns an empty list, not an error.
func (b *BM25) Search(ctx context.Context, query string, filters domain.SearchFilters, k int) ([]domain.RankedChunk, error) {
	results, err := b.Store.SearchText(ctx, query, filters, k)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "bm25 search", err)
	}
	return results, nil
}

// QueryEmbedder generates a single embedding for a query string, distinct
// from the Embedder's batch chunk-embedding path but sharing its cache.
type QueryEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimensions() int
}

// QueryCache caches a query string's embedding, keyed by model and
// dimension, mirroring the Embedder's chunk cache.
type QueryCache interface {
	Get(model string, dimensions int, text string) ([]float32, bool)
	Set(model string, dimensions int, text string, vector []float32)
}

// Vector wraps the Store's cosine-similarity search, embedding the query
// text on demand through Provider and caching the resulting vector.
type Vector struct {
	Store    store.Store
	Provider QueryEmbedder
	Cache    QueryCache
}

// Search embeds query (via cache when possible) and returns the top k
// chunks by cosine similarity.
func (v *Vector) Search(ctx context.Context, query string, filters domain.SearchFilters, k int) ([]domain.RankedChunk, error) {
	vector, err := v.embedQuery(ctx, query)
	if err != nil {
		return nil, apperr.Wrap(apperr.EmbeddingError, "embed query", err)
	}
	results, err := v.Store.SearchVector(ctx, vector, filters, k)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "vector search", err)
	}
	return results, nil
}

func (v *Vector) embedQuery(ctx context.Context, query string) ([]float32, error) {
	model := v.Provider.Model()
	dims := v.Provider.Dimensions()
	if v.Cache != nil {
		if cached, ok := v.Cache.Get(model, dims, query); ok {
			return cached, nil
		}
	}
	vectors, err := v.Provider.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, apperr.New(apperr.EmbeddingError, "provider returned an unexpected number of query vectors")
	}
	if v.Cache != nil {
		v.Cache.Set(model, dims, query, vectors[0])
	}
	return vectors[0], nil
}
