// Package chunker splits a parsed document into bounded-length, overlapping
// chunks of whitespace-delimited tokens, never spanning a section boundary.
package chunker

import (
	"strings"

	"github.com/dshills/ragmcp/internal/parsers"
	"github.com/dshills/ragmcp/pkg/domain"
)

const (
	// DefaultTargetTokens is T, the target chunk size in whitespace tokens.
	DefaultTargetTokens = 300

	// DefaultOverlapTokens is O, the sliding-window overlap in tokens.
	DefaultOverlapTokens = 50
)

// Chunker splits a ParsedDocument's sections into domain.Chunk values using
// a sliding token window with overlap.
type Chunker struct {
	TargetTokens  int
	OverlapTokens int
}

// New creates a Chunker with the spec default target/overlap.
func New() *Chunker {
	return &Chunker{TargetTokens: DefaultTargetTokens, OverlapTokens: DefaultOverlapTokens}
}

// ChunkDocument splits every section of doc independently, so a chunk never
// spans a section boundary, then assigns chunk indexes sequentially across
// the whole document.
func (c *Chunker) ChunkDocument(doc *parsers.ParsedDocument) []*domain.Chunk {
	var out []*domain.Chunk
	for _, section := range doc.Sections {
		for _, text := range c.windowText(section.Content) {
			out = append(out, &domain.Chunk{
				Text:          text,
				TokenCount:    domain.EstimateTokenCount(text),
				SectionHeader: section.Header,
				ChunkType:     chunkTypeFor(section.SectionType),
			})
		}
	}

	if len(out) == 0 {
		for _, text := range c.windowText(doc.Content) {
			out = append(out, &domain.Chunk{
				Text:       text,
				TokenCount: domain.EstimateTokenCount(text),
			})
		}
	}

	for i, chunk := range out {
		chunk.ChunkIndex = i
	}
	return out
}

func chunkTypeFor(sectionType string) domain.ChunkType {
	if sectionType == "" {
		return domain.ChunkTypeBody
	}
	return domain.ChunkTypeSection
}

// windowText splits text into whitespace tokens and slides a window of
// TargetTokens tokens across them, stepping back OverlapTokens tokens at
// each restart so consecutive chunks share trailing/leading context.
func (c *Chunker) windowText(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	target := c.TargetTokens
	if target <= 0 {
		target = DefaultTargetTokens
	}
	overlap := c.OverlapTokens
	if overlap < 0 {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := start + target
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end >= len(words) {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}
