package graph

import (
	"regexp"
	"strings"

	"github.com/dshills/ragmcp/pkg/domain"
)

// arrowPattern matches "A -> B" or "A → B" style chains in free text.
// Unlike a bare \w+, the character class includes '-' so hyphenated
// identifiers like "agent-a" are captured whole rather than truncated at
// the hyphen.
var arrowPattern = regexp.MustCompile(`([A-Za-z0-9_-]+)\s*(?:->|→)\s*([A-Za-z0-9_-]+)`)

// RelationTypeRoutesTo is the relation type assigned to every arrow-pattern
// extraction; extraction recognizes one shape of relationship today.
const RelationTypeRoutesTo = "routes_to"

// ExtractRelations scans text for "A -> B" style chains and returns one
// EntityRelation per match. Matches are non-overlapping, so a chain
// "A -> B -> C" yields only one relation (A->B): once "B" is consumed as
// the first match's target, it is no longer available as the next match's
// source.
func ExtractRelations(text string) []domain.EntityRelation {
	matches := arrowPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	relations := make([]domain.EntityRelation, 0, len(matches))
	for _, m := range matches {
		relations = append(relations, domain.EntityRelation{
			SourceEntity: strings.ToLower(m[1]),
			RelationType: RelationTypeRoutesTo,
			TargetEntity: strings.ToLower(m[2]),
		})
	}
	return relations
}

// ExtractFromChunk extracts relations from chunk.Text and stamps each with
// the originating document/chunk so a relation can be traced back to the
// text that produced it.
func ExtractFromChunk(docID string, chunk *domain.Chunk) []domain.EntityRelation {
	relations := ExtractRelations(chunk.Text)
	for i := range relations {
		relations[i].SourceDocID = docID
		relations[i].SourceChunkID = chunk.ID
	}
	return relations
}
