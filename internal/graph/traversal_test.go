package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

func setupGraphStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func insertRelation(t *testing.T, st store.Store, source, relType, target string) {
	t.Helper()
	require.NoError(t, st.InsertEntityRelation(context.Background(), &domain.EntityRelation{
		SourceEntity: source, RelationType: relType, TargetEntity: target,
	}))
}

func TestTraverse_FollowsChainWithinDepth(t *testing.T) {
	st := setupGraphStore(t)
	insertRelation(t, st, "agent:a", "routes_to", "agent:b")
	insertRelation(t, st, "agent:b", "routes_to", "agent:c")
	insertRelation(t, st, "agent:a", "routes_to", "agent:d")

	rels, err := Traverse(context.Background(), st, "agent:a", nil, 3)
	require.NoError(t, err)
	assert.Len(t, rels, 3)
}

func TestTraverse_RespectsMaxDepth(t *testing.T) {
	st := setupGraphStore(t)
	insertRelation(t, st, "agent:a", "routes_to", "agent:b")
	insertRelation(t, st, "agent:b", "routes_to", "agent:c")

	rels, err := Traverse(context.Background(), st, "agent:a", nil, 1)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "agent:b", rels[0].TargetEntity)
}

func TestTraverse_ClampsDepthAboveMax(t *testing.T) {
	st := setupGraphStore(t)
	insertRelation(t, st, "agent:a", "routes_to", "agent:b")

	rels, err := Traverse(context.Background(), st, "agent:a", nil, 1000)
	require.NoError(t, err)
	assert.Len(t, rels, 1)
}

func TestTraverse_CycleSafe(t *testing.T) {
	st := setupGraphStore(t)
	insertRelation(t, st, "agent:a", "routes_to", "agent:b")
	insertRelation(t, st, "agent:b", "routes_to", "agent:a")

	rels, err := Traverse(context.Background(), st, "agent:a", nil, 3)
	require.NoError(t, err)
	assert.Len(t, rels, 1, "revisiting agent:a must not re-expand it")
}

func TestTraverse_FiltersByRelationType(t *testing.T) {
	st := setupGraphStore(t)
	insertRelation(t, st, "agent:a", "routes_to", "agent:b")
	insertRelation(t, st, "agent:a", "depends_on", "agent:c")

	rels, err := Traverse(context.Background(), st, "agent:a", []string{"routes_to"}, 2)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "agent:b", rels[0].TargetEntity)
}
