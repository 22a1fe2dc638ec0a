package graph

import (
	"context"
	"fmt"

	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

// MaxTraversalDepth bounds Traverse regardless of the caller-requested
// depth, so a misbehaving or malicious max_depth can't force an unbounded
// BFS over the relation graph.
const MaxTraversalDepth = 3

// Traverse performs a breadth-first walk of entity_relations starting from
// startEntity, returning the relations followed within maxDepth hops.
// relationTypes, if non-empty, restricts which edges are followed. The
// visited set makes the walk cycle-safe: an entity is expanded at most once,
// and a relation whose target was already visited is not returned.
func Traverse(ctx context.Context, st store.Store, startEntity string, relationTypes []string, maxDepth int) ([]domain.EntityRelation, error) {
	if maxDepth <= 0 || maxDepth > MaxTraversalDepth {
		maxDepth = MaxTraversalDepth
	}

	type queued struct {
		entity string
		depth  int
	}

	visited := map[string]bool{startEntity: true}
	queue := []queued{{entity: startEntity, depth: 0}}
	var result []domain.EntityRelation

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxDepth {
			continue
		}

		rels, err := st.RelationsFrom(ctx, cur.entity, relationTypes)
		if err != nil {
			return nil, fmt.Errorf("traverse from %q: %w", cur.entity, err)
		}

		for _, rel := range rels {
			if visited[rel.TargetEntity] {
				continue
			}
			visited[rel.TargetEntity] = true
			queue = append(queue, queued{entity: rel.TargetEntity, depth: cur.depth + 1})
			result = append(result, *rel)
		}
	}

	return result, nil
}
