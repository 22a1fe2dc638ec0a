package eval

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ragmcp/internal/embed"
	"github.com/dshills/ragmcp/internal/ingest"
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

func setupEvalFixture(t *testing.T) (*search.Fusion, store.Store) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "guides"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "guides", "auth.md"),
		[]byte("# Authentication\n\nUse JWT tokens for authentication."), 0o644))

	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ig := ingest.New(st, ingest.Config{Root: root})
	_, err = ig.Run(context.Background(), ingest.Options{})
	require.NoError(t, err)

	provider := &stubProvider{dims: 3}
	cache := embed.NewCache(10)
	embedder := embed.New(provider, st, cache, 0)
	_, err = embedder.EmbedMissing(context.Background(), false)
	require.NoError(t, err)

	fusion := search.New(&search.BM25{Store: st}, &search.Vector{Store: st, Provider: provider, Cache: cache}, st)
	return fusion, st
}

func TestLoadQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.json")
	contents := `[{"query":"how do I authenticate","category":"auth","expected_doc":"guides/auth.md"}]`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	queries, err := LoadQueries(path)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, "how do I authenticate", queries[0].QueryText)
	assert.Equal(t, "guides/auth.md", queries[0].ExpectedDoc)
}

func TestLoadQueriesRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err := LoadQueries(path)
	assert.Error(t, err)
}

func TestRelevantChunkIDsExplicitListWins(t *testing.T) {
	q := Query{RelevantChunkIDs: []string{"c1", "c2"}, ExpectedDoc: "ignored.md"}
	ids, err := q.relevantChunkIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids)
}

func TestRelevantChunkIDsResolvesFromStoreByPathSubstring(t *testing.T) {
	_, st := setupEvalFixture(t)
	q := Query{ExpectedDoc: "auth.md"}

	ids, err := q.relevantChunkIDs(context.Background(), st)
	require.NoError(t, err)
	assert.NotEmpty(t, ids)
}

func TestRun_ComputesAggregateMetrics(t *testing.T) {
	fusion, st := setupEvalFixture(t)
	queries := []Query{{QueryText: "authentication", Category: "auth", ExpectedDoc: "auth.md"}}

	report, err := Run(context.Background(), fusion, st, queries)
	require.NoError(t, err)
	require.Len(t, report.Queries, 1)
	assert.GreaterOrEqual(t, report.AvgPrecision, 0.0)
	assert.GreaterOrEqual(t, report.AvgRecall, 0.0)
	assert.GreaterOrEqual(t, report.MRR, 0.0)
}

func TestRun_EmptyQueriesReturnsZeroReport(t *testing.T) {
	fusion, st := setupEvalFixture(t)
	report, err := Run(context.Background(), fusion, st, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Queries)
	assert.Zero(t, report.AvgPrecision)
}

func TestReportPassRequiresEveryThreshold(t *testing.T) {
	pass := &Report{AvgPrecision: 0.9, AvgRecall: 0.95, MRR: 0.85}
	assert.True(t, pass.Pass())

	fail := &Report{AvgPrecision: 0.5, AvgRecall: 0.95, MRR: 0.85}
	assert.False(t, fail.Pass())
}

func TestQueryJSONRoundTrip(t *testing.T) {
	q := Query{QueryText: "x", Category: "y", ExpectedEntities: []string{"agent:dev"}}
	data, err := json.Marshal(q)
	require.NoError(t, err)

	var out Query
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, q, out)
}
