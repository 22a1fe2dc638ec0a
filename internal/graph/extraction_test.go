package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ragmcp/pkg/domain"
)

func TestExtractRelations_Basic(t *testing.T) {
	rels := ExtractRelations("DefaultChains: Agent-A -> Agent-B")
	require.Len(t, rels, 1)
	assert.Equal(t, "agent-a", rels[0].SourceEntity)
	assert.Equal(t, "agent-b", rels[0].TargetEntity)
	assert.Equal(t, RelationTypeRoutesTo, rels[0].RelationType)
}

func TestExtractRelations_UnicodeArrow(t *testing.T) {
	rels := ExtractRelations("Foo → Bar")
	require.Len(t, rels, 1)
	assert.Equal(t, "foo", rels[0].SourceEntity)
	assert.Equal(t, "bar", rels[0].TargetEntity)
}

func TestExtractRelations_ChainYieldsOneMatch(t *testing.T) {
	rels := ExtractRelations("A -> B -> C")
	assert.Len(t, rels, 1)
	assert.Equal(t, "a", rels[0].SourceEntity)
	assert.Equal(t, "b", rels[0].TargetEntity)
}

func TestExtractRelations_Multiple(t *testing.T) {
	rels := ExtractRelations("A -> B and C -> D")
	require.Len(t, rels, 2)
	assert.Equal(t, "c", rels[1].SourceEntity)
	assert.Equal(t, "d", rels[1].TargetEntity)
}

func TestExtractRelations_NoMatches(t *testing.T) {
	rels := ExtractRelations("No arrows here, just text.")
	assert.Empty(t, rels)
}

func TestExtractFromChunk_StampsOrigin(t *testing.T) {
	chunk := &domain.Chunk{ID: "chunk-1", Text: "X -> Y"}
	rels := ExtractFromChunk("doc-1", chunk)
	require.Len(t, rels, 1)
	assert.Equal(t, "doc-1", rels[0].SourceDocID)
	assert.Equal(t, "chunk-1", rels[0].SourceChunkID)
}
