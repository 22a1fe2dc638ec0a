// Package chunker splits a parsed document's sections into overlapping
// token-window chunks for embedding and retrieval.
//
// # Basic Usage
//
//	c := chunker.New()
//	chunks := c.ChunkDocument(parsedDoc)
//
//	for _, chunk := range chunks {
//	    fmt.Printf("chunk %d: %d tokens, section %q\n",
//	        chunk.ChunkIndex, chunk.TokenCount, chunk.SectionHeader)
//	}
//
// # Chunk Sizing
//
// The default window is T=300 tokens with O=50 tokens of overlap between
// consecutive windows, using a whitespace-split token approximation rather
// than a BPE tokenizer (see domain.EstimateTokenCount). A chunk never spans
// a section boundary: each parsed section is windowed independently, so a
// heading's content never bleeds into the next heading's chunk.
package chunker
