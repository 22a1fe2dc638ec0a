// Package parsers extracts structured sections from a document's raw
// content, dispatching by file extension to a format-specific parser.
//
// Every parser produces the same shape, a ParsedDocument made of ordered
// Sections, so the chunker downstream never needs to know which parser
// produced them.
//
// # Basic Usage
//
//	reg := parsers.NewRegistry()
//	doc, err := reg.Parse(content, "guides/auth.md", ".md")
//	if err != nil {
//	    // an unrecognized extension and a format-specific parse failure
//	    // both fall back to plain text rather than returning an error.
//	}
//
// # Supported Formats
//
//   - Markdown (.md, .markdown): sectioned by ATX heading (goldmark AST)
//   - YAML (.yaml, .yml): top-level mapping keys as sections
//   - JSON (.json): top-level object keys as sections
//   - XML (.xml): top-level child elements as sections
//   - Everything else: a single plaintext section
//
// A format-specific parser that fails (malformed YAML, truncated JSON, …)
// never aborts ingestion; the registry retries with the plaintext parser so
// the document is still searchable.
package parsers
