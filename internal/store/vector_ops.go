package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dshills/ragmcp/pkg/domain"
)

// serializeVector packs a float32 vector as a little-endian BLOB, the layout
// sqlite-vec's vec0 virtual table also expects for its raw float32 columns.
func serializeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func deserializeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SearchVector ranks chunks by cosine similarity to vector, full-scan. ANN
// indexing is explicitly out of scope: an exact brute-force scan over the
// embedded chunks is the intended algorithm, not a placeholder for one.
// VectorExtensionAvailable (see build_cgo.go / build_purego.go) is reserved
// for a future vec0-accelerated path; both build modes currently share this
// implementation for correctness and simplicity.
func (s *sqliteStore) SearchVector(ctx context.Context, vector []float32, filters domain.SearchFilters, k int) ([]domain.RankedChunk, error) {
	query, args := filteredEmbeddedChunksQuery(filters)
	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search vector: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type scored struct {
		id    string
		score float64
	}
	var candidates []scored
	for rows.Next() {
		var id string
		var embedding []byte
		if err := rows.Scan(&id, &embedding); err != nil {
			return nil, err
		}
		sim := cosineSimilarity(vector, deserializeVector(embedding))
		candidates = append(candidates, scored{id: id, score: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}

	out := make([]domain.RankedChunk, len(candidates))
	for i, c := range candidates {
		out[i] = domain.RankedChunk{ChunkID: c.id, Score: c.score, Rank: i + 1}
	}
	return out, nil
}

func filteredEmbeddedChunksQuery(filters domain.SearchFilters) (string, []any) {
	var b strings.Builder
	b.WriteString(`
		SELECT c.id, c.embedding
		FROM chunks c JOIN documents d ON c.doc_id = d.id
		WHERE c.embedding IS NOT NULL
	`)
	var args []any
	appendDocumentFilters(&b, &args, filters)
	return b.String(), args
}

func appendDocumentFilters(b *strings.Builder, args *[]any, filters domain.SearchFilters) {
	if filters.Namespace != "" && filters.Namespace != domain.NamespaceAll {
		b.WriteString(" AND d.namespace = ?")
		*args = append(*args, filters.Namespace)
	}
	if filters.AgentName != "" {
		b.WriteString(" AND d.agent_name = ?")
		*args = append(*args, filters.AgentName)
	}
	if len(filters.DocTypes) > 0 {
		placeholders := make([]string, len(filters.DocTypes))
		for i, t := range filters.DocTypes {
			placeholders[i] = "?"
			*args = append(*args, string(t))
		}
		b.WriteString(" AND d.doc_type IN (")
		b.WriteString(strings.Join(placeholders, ","))
		b.WriteString(")")
	}
}

// SearchText ranks chunks by BM25 relevance via the chunks_fts external
// content table, joined back to documents for namespace/agent/type filters.
// FTS5 queries are sanitized into an implicit-AND sequence of quoted terms so
// user input cannot inject FTS5 query-syntax operators.
func (s *sqliteStore) SearchText(ctx context.Context, queryText string, filters domain.SearchFilters, k int) ([]domain.RankedChunk, error) {
	ftsQuery := sanitizeFTSQuery(queryText)
	if ftsQuery == "" {
		return nil, nil
	}

	var b strings.Builder
	b.WriteString(`
		SELECT c.id, bm25(chunks_fts) AS rank
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		JOIN documents d ON c.doc_id = d.id
		WHERE chunks_fts MATCH ?
	`)
	args := []any{ftsQuery}
	appendDocumentFilters(&b, &args, filters)
	b.WriteString(" ORDER BY rank, c.id ASC LIMIT ?")
	args = append(args, k)

	rows, err := s.readDB.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search text: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.RankedChunk
	rankPos := 0
	for rows.Next() {
		var id string
		var bm25Rank float64
		if err := rows.Scan(&id, &bm25Rank); err != nil {
			return nil, err
		}
		rankPos++
		// bm25() in SQLite returns lower-is-better; invert for a
		// higher-is-better score consistent with SearchVector/RankedChunk.
		out = append(out, domain.RankedChunk{ChunkID: id, Score: -bm25Rank, Rank: rankPos})
	}
	return out, rows.Err()
}

// sanitizeFTSQuery rewrites free text into a sequence of double-quoted FTS5
// string literals, escaping embedded quotes, so operators like OR/NOT/*/^
// and column filters typed by a user are treated as literal text rather than
// FTS5 query syntax.
func sanitizeFTSQuery(q string) string {
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return ""
	}
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		escaped := strings.ReplaceAll(f, `"`, `""`)
		terms = append(terms, `"`+escaped+`"`)
	}
	return strings.Join(terms, " ")
}
