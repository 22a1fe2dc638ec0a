package search

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/ragmcp/internal/apperr"
	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

// RRFConstant is K in the Reciprocal Rank Fusion formula.
const RRFConstant = 60.0

// DefaultBM25Weight and DefaultVectorWeight give BM25 and Vector equal say
// in the fused score.
const DefaultBM25Weight = 0.5
const DefaultVectorWeight = 0.5

// Request is one Fusion engine call, matching the search tool's contract.
type Request struct {
	Query        string
	K            int
	Filters      domain.SearchFilters
	MinScore     float64
	Overfetch    int
	BM25Weight   float64
	VectorWeight float64
}

// Fusion combines BM25 and Vector search via Reciprocal Rank Fusion and
// hydrates the fused chunk ids against the Store, logging each query
// asynchronously.
type Fusion struct {
	BM25   *BM25
	Vector *Vector
	Store  store.Store
}

// New builds a Fusion engine over the given BM25 and Vector searchers,
// sharing the same Store for hydration and query logging.
func New(bm25 *BM25, vector *Vector, st store.Store) *Fusion {
	return &Fusion{BM25: bm25, Vector: vector, Store: st}
}

type fusedEntry struct {
	chunkID    string
	rrfScore   float64
	bm25Rank   int
	vectorRank int
}

// Search runs the full Fusion algorithm for req and returns hydrated,
// ranked results.
func (f *Fusion) Search(ctx context.Context, req Request) ([]domain.SearchResult, error) {
	if req.K <= 0 {
		req.K = 10
	}
	bm25Weight, vectorWeight := req.BM25Weight, req.VectorWeight
	if bm25Weight == 0 && vectorWeight == 0 {
		bm25Weight, vectorWeight = DefaultBM25Weight, DefaultVectorWeight
	}

	candidateSize := req.Overfetch
	if candidateSize < 2*req.K {
		candidateSize = 2 * req.K
	}
	if candidateSize < 20 {
		candidateSize = 20
	}

	start := time.Now()

	var bm25Results, vectorResults []domain.RankedChunk
	var vectorErr error

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		bm25Results, err = f.BM25.Search(gctx, req.Query, req.Filters, candidateSize)
		return err
	})
	group.Go(func() error {
		results, err := f.Vector.Search(gctx, req.Query, req.Filters, candidateSize)
		if err != nil {
			// query-embedding failure degrades to BM25-only rather than
			// failing the whole search.
			vectorErr = err
			return nil
		}
		vectorResults = results
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "fusion search", err)
	}

	method := domain.RetrievalHybrid
	if vectorErr != nil {
		method = domain.RetrievalBM25Only
	}

	fused := fuse(bm25Results, vectorResults, bm25Weight, vectorWeight)

	if req.Overfetch > 0 {
		if len(fused) > req.Overfetch {
			fused = fused[:req.Overfetch]
		}
	} else {
		maxScore := bm25Weight/(RRFConstant+1) + vectorWeight/(RRFConstant+1)
		filtered := fused[:0]
		for _, e := range fused {
			normalized := e.rrfScore
			if maxScore > 0 {
				normalized = e.rrfScore / maxScore
			}
			e.rrfScore = normalized
			if normalized >= req.MinScore {
				filtered = append(filtered, e)
			}
		}
		fused = filtered
	}

	if req.Overfetch <= 0 && len(fused) > req.K {
		fused = fused[:req.K]
	}

	results, err := f.hydrate(ctx, fused, method)
	if err != nil {
		return nil, err
	}

	go f.logQuery(req, results, method, time.Since(start))

	return results, nil
}

// fuse merges BM25 and Vector ranked lists into weighted RRF scores, sorted
// descending with chunk id as the deterministic tie-break.
func fuse(bm25, vector []domain.RankedChunk, bm25Weight, vectorWeight float64) []fusedEntry {
	byChunk := make(map[string]*fusedEntry)

	for _, r := range bm25 {
		e := byChunk[r.ChunkID]
		if e == nil {
			e = &fusedEntry{chunkID: r.ChunkID}
			byChunk[r.ChunkID] = e
		}
		e.bm25Rank = r.Rank
		e.rrfScore += bm25Weight / (RRFConstant + float64(r.Rank))
	}
	for _, r := range vector {
		e := byChunk[r.ChunkID]
		if e == nil {
			e = &fusedEntry{chunkID: r.ChunkID}
			byChunk[r.ChunkID] = e
		}
		e.vectorRank = r.Rank
		e.rrfScore += vectorWeight / (RRFConstant + float64(r.Rank))
	}

	out := make([]fusedEntry, 0, len(byChunk))
	for _, e := range byChunk {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].rrfScore != out[j].rrfScore {
			return out[i].rrfScore > out[j].rrfScore
		}
		return out[i].chunkID < out[j].chunkID
	})
	return out
}

func (f *Fusion) hydrate(ctx context.Context, fused []fusedEntry, method domain.RetrievalMethod) ([]domain.SearchResult, error) {
	if len(fused) == 0 {
		return nil, nil
	}
	ids := make([]string, len(fused))
	for i, e := range fused {
		ids[i] = e.chunkID
	}
	hydration, err := f.Store.HydrateChunks(ctx, ids)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "hydrate search results", err)
	}

	results := make([]domain.SearchResult, 0, len(fused))
	for _, e := range fused {
		h, ok := hydration[e.chunkID]
		if !ok {
			continue
		}
		chunkMethod := method
		switch {
		case e.bm25Rank > 0 && e.vectorRank == 0:
			if chunkMethod == domain.RetrievalHybrid {
				chunkMethod = domain.RetrievalBM25Only
			}
		case e.vectorRank > 0 && e.bm25Rank == 0:
			chunkMethod = domain.RetrievalVectorOnly
		}
		results = append(results, domain.SearchResult{
			ChunkID:       h.ChunkID,
			DocPath:       h.DocPath,
			Namespace:     h.Namespace,
			SectionHeader: h.SectionHeader,
			ChunkText:     h.ChunkText,
			Score:         e.rrfScore,
			BM25Rank:      e.bm25Rank,
			VectorRank:    e.vectorRank,
			Method:        chunkMethod,
		})
	}
	return results, nil
}

func (f *Fusion) logQuery(req Request, results []domain.SearchResult, method domain.RetrievalMethod, latency time.Duration) {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ChunkID
	}
	log := &domain.QueryLog{
		ID:             uuid.NewString(),
		Timestamp:      time.Now(),
		QueryText:      req.Query,
		Namespace:      req.Filters.Namespace,
		Method:         method,
		ResultChunkIDs: ids,
		LatencyMS:      latency.Milliseconds(),
		ResultCount:    len(results),
	}
	_ = f.Store.InsertQueryLog(context.Background(), log)
}
