// Package search implements the BM25 searcher, Vector searcher, and the
// Fusion engine that combines their ranked lists via Reciprocal Rank Fusion.
//
// # Fusion algorithm
//
// Given a query and a fan-out size k:
//
//  1. Compute a candidate size C = max(overfetch, 2k, 20).
//  2. Run BM25 and Vector search concurrently, each returning its top C.
//     If the query embedding fails, degrade to BM25-only and label the
//     result accordingly.
//  3. For every chunk in either list, accumulate
//     rrf = w_bm25/(K+rank_bm25) + w_vec/(K+rank_vec), K=60, with a missing
//     rank contributing zero.
//  4. Sort by rrf descending, tie-break by chunk id ascending.
//  5. Normalise to [0,1] by the maximum possible score and drop results
//     below min_score, unless overfetch is set, in which case the raw fused
//     list is truncated to overfetch instead.
//  6. Truncate to k (when overfetch is not set), hydrate with document
//     metadata and chunk text, and log the query asynchronously.
package search
