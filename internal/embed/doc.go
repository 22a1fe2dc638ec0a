// Package embed generates dense vector embeddings for chunks missing them,
// via a single HTTP embedding provider, and writes the vectors back into the
// Store in batches.
//
// # Provider contract
//
// The provider is a single configurable HTTP endpoint: POST a JSON body of
// {"model": <string>, "input": [<string>, ...]} with a bearer token, and
// receive {"data": [{"embedding": [<float>, ...]}, ...]} in input order.
// There is no provider-specific branching (no Jina/OpenAI special cases) —
// any provider that speaks this contract works, including a local
// OpenAI-compatible server.
//
// # Retry and caching
//
// Batch calls retry on transient failure with exponential backoff (bounded
// attempts, capped delay, multiplicative growth). An LRU cache keyed by
// content hash plus model and dimension avoids re-embedding identical chunk
// text or repeated query strings.
package embed
