package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ragmcp/internal/parsers"
)

func TestNew(t *testing.T) {
	c := New()
	assert.NotNil(t, c)
	assert.Equal(t, DefaultTargetTokens, c.TargetTokens)
	assert.Equal(t, DefaultOverlapTokens, c.OverlapTokens)
}

func TestChunkDocument_RespectsSectionBoundaries(t *testing.T) {
	c := New()
	doc := &parsers.ParsedDocument{
		Sections: []parsers.Section{
			{Header: "Intro", Content: "short intro text"},
			{Header: "Body", Content: "more body text here"},
		},
	}

	chunks := c.ChunkDocument(doc)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Intro", chunks[0].SectionHeader)
	assert.Equal(t, "Body", chunks[1].SectionHeader)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[1].ChunkIndex)
}

func TestChunkDocument_SlidesWindowWithOverlap(t *testing.T) {
	c := &Chunker{TargetTokens: 10, OverlapTokens: 3}
	words := make([]string, 25)
	for i := range words {
		words[i] = "w"
	}
	doc := &parsers.ParsedDocument{
		Sections: []parsers.Section{{Header: "s", Content: strings.Join(words, " ")}},
	}

	chunks := c.ChunkDocument(doc)
	require.GreaterOrEqual(t, len(chunks), 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, chunk.TokenCount, 10)
	}
}

func TestChunkDocument_FallsBackToFullContentWhenNoSections(t *testing.T) {
	c := New()
	doc := &parsers.ParsedDocument{Content: "full document content with no sections"}

	chunks := c.ChunkDocument(doc)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].SectionHeader)
}

func TestChunkDocument_EmptySectionProducesNoChunks(t *testing.T) {
	c := New()
	doc := &parsers.ParsedDocument{
		Sections: []parsers.Section{{Header: "empty", Content: "   "}},
	}

	chunks := c.ChunkDocument(doc)
	assert.Empty(t, chunks)
}

func TestWindowText_NoInfiniteLoopWhenOverlapExceedsTarget(t *testing.T) {
	c := &Chunker{TargetTokens: 2, OverlapTokens: 10}
	result := c.windowText("a b c d e f")
	assert.NotEmpty(t, result)
}
