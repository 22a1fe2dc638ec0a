// Package graph extracts lightweight knowledge-graph triples from chunk
// text and traverses the stored relations with a breadth-first search.
//
// Extraction is heuristic and best-effort: absence of a recognizable
// "A -> B" pattern in a chunk is not an error, it simply yields no
// relations. Traversal is bounded by a maximum hop count and is cycle-safe
// via a visited-entity set.
//
//	rels := graph.ExtractRelations(chunk.Text)
//	for _, r := range rels {
//	    _ = store.InsertEntityRelation(ctx, &r)
//	}
//
//	hits, err := graph.Traverse(ctx, store, "router", nil, 3)
package graph
