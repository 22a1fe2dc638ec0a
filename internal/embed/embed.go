package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/ragmcp/internal/apperr"
	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

// DefaultBatchSize is the page size embed_missing uses when the caller
// doesn't specify one.
const DefaultBatchSize = 50

// Cache is a small in-memory LRU from content hash (scoped by model and
// dimension) to a previously computed vector, shared by embed_missing and
// the query-vector path the Vector searcher uses.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache builds a Cache with the given capacity; capacity <= 0 falls back
// to a sensible default.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 10000
	}
	c, err := lru.New[string, []float32](capacity)
	if err != nil {
		c, _ = lru.New[string, []float32](10000)
	}
	return &Cache{cache: c}
}

func (c *Cache) key(model string, dimensions int, text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%d:%s", model, dimensions, hex.EncodeToString(h[:]))
}

// Get returns a cached vector for text under model/dimensions, if present.
func (c *Cache) Get(model string, dimensions int, text string) ([]float32, bool) {
	v, ok := c.cache.Get(c.key(model, dimensions, text))
	if !ok {
		return nil, false
	}
	cp := make([]float32, len(v))
	copy(cp, v)
	return cp, true
}

// Set stores a vector for text under model/dimensions.
func (c *Cache) Set(model string, dimensions int, text string, vector []float32) {
	c.cache.Add(c.key(model, dimensions, text), vector)
}

// Provider generates embeddings for a batch of texts, returning vectors in
// input order.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimensions() int
}

// Embedder wires a Provider and Cache to the Store, implementing
// embed_missing per the chunk-embedding contract.
type Embedder struct {
	Provider  Provider
	Store     store.Store
	Cache     *Cache
	BatchSize int
}

// New builds an Embedder with the given provider and store, using
// DefaultBatchSize unless batchSize is positive.
func New(provider Provider, st store.Store, cache *Cache, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Embedder{Provider: provider, Store: st, Cache: cache, BatchSize: batchSize}
}

// Report summarizes an embed_missing run.
type Report struct {
	Embedded int
	Skipped  int
	Failed   int
	Errors   []string
}

// EmbedMissing fetches chunks with a NULL embedding (or every chunk, if
// force is set) in deterministic id order, paginated by the Embedder's
// BatchSize, and sends one batch request per page to the provider. A
// successfully embedded page is committed to the Store even if a later page
// fails — partial progress on outage is preserved rather than discarded.
func (e *Embedder) EmbedMissing(ctx context.Context, force bool) (*Report, error) {
	report := &Report{}
	afterID := ""
	for {
		chunks, err := e.nextPage(ctx, force, afterID)
		if err != nil {
			return report, apperr.Wrap(apperr.StoreError, "fetch chunks for embedding", err)
		}
		if len(chunks) == 0 {
			return report, nil
		}

		if err := e.embedPage(ctx, chunks, report); err != nil {
			report.Failed += len(chunks)
			report.Errors = append(report.Errors, err.Error())
			return report, apperr.Wrap(apperr.EmbeddingError, "embed batch", err)
		}

		if len(chunks) < e.BatchSize {
			return report, nil
		}
		if force {
			afterID = chunks[len(chunks)-1].ID
		}
	}
}

// nextPage fetches one page of chunks to embed. In non-force mode the
// NULL-embedding filter does the paging for free: each successfully
// embedded chunk drops out of the next call. Force mode must walk every
// chunk exactly once regardless of embedding state, so it cursors by id.
func (e *Embedder) nextPage(ctx context.Context, force bool, afterID string) ([]*domain.Chunk, error) {
	if !force {
		return e.Store.ChunksMissingEmbedding(ctx, e.BatchSize)
	}
	return e.Store.ListChunksPage(ctx, afterID, e.BatchSize)
}

func (e *Embedder) embedPage(ctx context.Context, chunks []*domain.Chunk, report *Report) error {
	texts := make([]string, len(chunks))
	vectors := make([][]float32, len(chunks))
	toFetch := make([]string, 0, len(chunks))
	toFetchIdx := make([]int, 0, len(chunks))

	model := e.Provider.Model()
	dims := e.Provider.Dimensions()

	for i, c := range chunks {
		texts[i] = c.Text
		if e.Cache != nil {
			if v, ok := e.Cache.Get(model, dims, c.Text); ok {
				vectors[i] = v
				continue
			}
		}
		toFetch = append(toFetch, c.Text)
		toFetchIdx = append(toFetchIdx, i)
	}

	if len(toFetch) > 0 {
		fetched, err := e.Provider.Embed(ctx, toFetch)
		if err != nil {
			return err
		}
		if len(fetched) != len(toFetch) {
			return fmt.Errorf("provider returned %d vectors for %d inputs", len(fetched), len(toFetch))
		}
		for j, idx := range toFetchIdx {
			v := fetched[j]
			if len(v) != dims {
				report.Skipped++
				report.Errors = append(report.Errors, fmt.Sprintf(
					"chunk %s: provider returned a %d-dimensional vector, want %d", chunks[idx].ID, len(v), dims))
				continue
			}
			vectors[idx] = v
			if e.Cache != nil {
				e.Cache.Set(model, dims, texts[idx], v)
			}
		}
	}

	byChunk := make(map[string][]float32, len(chunks))
	for i, c := range chunks {
		if vectors[i] == nil {
			continue
		}
		byChunk[c.ID] = vectors[i]
	}
	if len(byChunk) > 0 {
		if err := e.Store.SetChunkEmbeddings(ctx, byChunk); err != nil {
			return err
		}
	}
	report.Embedded += len(byChunk)
	return nil
}
