package domain

import "errors"

// Chunk is a bounded-length slice of a Document, the unit of retrieval.
//
// Identity is an opaque id; (DocID, ChunkIndex) is unique and ordered.
type Chunk struct {
	ID            string
	DocID         string
	ChunkIndex    int
	Text          string
	TokenCount    int
	SectionHeader string    // optional, verbatim from the originating section
	ChunkType     ChunkType // optional classification tag
	Embedding     []float32 // nil until the Embedder runs
}

// ChunkType loosely classifies a chunk's originating section. Parsers may
// leave this empty; it is informational only.
type ChunkType string

const (
	ChunkTypeSection ChunkType = "section"
	ChunkTypeBody    ChunkType = "body"
)

// ValidateContent checks that the chunk carries non-empty text and belongs
// to a document.
func (c *Chunk) ValidateContent() error {
	if c.Text == "" {
		return errors.New("chunk text cannot be empty")
	}
	if c.DocID == "" {
		return errors.New("chunk must belong to a document")
	}
	if c.ChunkIndex < 0 {
		return errors.New("chunk index must be non-negative")
	}
	return nil
}

// Validate performs comprehensive validation of the chunk.
func (c *Chunk) Validate() error {
	if err := c.ValidateContent(); err != nil {
		return err
	}
	if c.Embedding != nil && len(c.Embedding) == 0 {
		return errors.New("embedding, if present, must be non-empty")
	}
	return nil
}

// HasEmbedding reports whether the chunk carries a dense vector.
func (c *Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// EstimateTokenCount approximates token count by whitespace splitting, the
// deterministic baseline approximation permitted in place of a BPE tokenizer,
// kept consistent with the chunker and embedder dimensionality bookkeeping.
func EstimateTokenCount(s string) int {
	count := 0
	inToken := false
	for _, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if isSpace {
			inToken = false
			continue
		}
		if !inToken {
			count++
			inToken = true
		}
	}
	return count
}
