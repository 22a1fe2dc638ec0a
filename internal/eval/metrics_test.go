package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/ragmcp/pkg/domain"
)

func resultAt(chunkID string) domain.SearchResult {
	return domain.SearchResult{ChunkID: chunkID}
}

func TestPrecisionAtKAllRelevant(t *testing.T) {
	results := []domain.SearchResult{resultAt("a"), resultAt("b"), resultAt("c")}
	relevant := []string{"a", "b", "c"}
	assert.InDelta(t, 1.0, precisionAtK(results, relevant, 3), 1e-9)
}

func TestPrecisionAtKPartial(t *testing.T) {
	results := []domain.SearchResult{resultAt("a"), resultAt("b"), resultAt("x")}
	relevant := []string{"a", "b"}
	assert.InDelta(t, 2.0/3.0, precisionAtK(results, relevant, 3), 1e-9)
}

func TestPrecisionAtKZeroK(t *testing.T) {
	results := []domain.SearchResult{resultAt("a")}
	assert.Zero(t, precisionAtK(results, []string{"a"}, 0))
}

func TestRecallAtKAllRetrieved(t *testing.T) {
	results := []domain.SearchResult{resultAt("a"), resultAt("b")}
	relevant := []string{"a", "b"}
	assert.InDelta(t, 1.0, recallAtK(results, relevant, 10), 1e-9)
}

func TestRecallAtKPartial(t *testing.T) {
	results := []domain.SearchResult{resultAt("a"), resultAt("x")}
	relevant := []string{"a", "b"}
	assert.InDelta(t, 0.5, recallAtK(results, relevant, 10), 1e-9)
}

func TestRecallAtKEmptyRelevant(t *testing.T) {
	results := []domain.SearchResult{resultAt("a")}
	assert.Zero(t, recallAtK(results, nil, 10))
}

func TestMRRFirstRank(t *testing.T) {
	q := Query{ExpectedDoc: "doc.xml"}
	first := domain.SearchResult{ChunkID: "x", DocPath: "doc.xml"}
	second := resultAt("y")
	assert.True(t, q.isRelevant(first))

	mrr := meanReciprocalRank([]Query{q}, [][]domain.SearchResult{{first, second}})
	assert.InDelta(t, 1.0, mrr, 1e-9)
}

func TestMRRSecondRank(t *testing.T) {
	q := Query{ExpectedDoc: "doc.xml"}
	first := resultAt("a")
	second := domain.SearchResult{ChunkID: "b", DocPath: "doc.xml"}

	mrr := meanReciprocalRank([]Query{q}, [][]domain.SearchResult{{first, second}})
	assert.InDelta(t, 0.5, mrr, 1e-9)
}

func TestMRREmptyQueries(t *testing.T) {
	mrr := meanReciprocalRank(nil, [][]domain.SearchResult{{resultAt("a")}})
	assert.Zero(t, mrr)
}

func TestIsRelevantRequiresAtLeastOneCriterion(t *testing.T) {
	q := Query{}
	assert.False(t, q.isRelevant(domain.SearchResult{DocPath: "anything.md"}))
}

func TestIsRelevantMatchesPathSubstringCaseInsensitively(t *testing.T) {
	q := Query{ExpectedDoc: "module-alpha/overview.md"}
	result := domain.SearchResult{DocPath: "Agents/module-alpha/docs_module-alpha_overview.md"}
	assert.True(t, q.isRelevant(result))
}

func TestIsRelevantRequiresSectionMatch(t *testing.T) {
	q := Query{ExpectedDoc: "doc.md", ExpectedSection: "Overview"}
	assert.False(t, q.isRelevant(domain.SearchResult{DocPath: "doc.md", SectionHeader: "Other"}))
	assert.True(t, q.isRelevant(domain.SearchResult{DocPath: "doc.md", SectionHeader: "Overview"}))
}

func TestIsRelevantMatchesEntityWithOrWithoutPrefix(t *testing.T) {
	q := Query{ExpectedEntities: []string{"agent:dev"}}
	result := domain.SearchResult{DocPath: "agents/dev/guide.md"}
	assert.True(t, q.isRelevant(result))
	assert.True(t, Query{ExpectedEntities: []string{"dev"}}.isRelevant(result))
}
