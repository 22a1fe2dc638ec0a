package parsers

import (
	"strings"
)

// Section is one logical division of a parsed document: a header (a
// markdown heading, a top-level YAML/JSON key, an XML element name) and its
// associated text content.
type Section struct {
	Header      string
	Content     string
	SectionType string // optional, e.g. "h2", "mapping"; informational only
}

// ParsedDocument is the uniform output of every format parser.
type ParsedDocument struct {
	Content  string // the original, unparsed document content
	Sections []Section
	DocType  string
}

// Parser parses one document format into sections.
type Parser interface {
	CanParse(ext string) bool
	Parse(content, path string) (*ParsedDocument, error)
}

// Registry selects a Parser by file extension and falls back to plain text
// whenever the selected parser fails.
type Registry struct {
	parsers   []Parser
	plaintext Parser
}

// NewRegistry builds a Registry with all built-in format parsers.
func NewRegistry() *Registry {
	return &Registry{
		parsers: []Parser{
			&XMLParser{},
			&YAMLParser{},
			&JSONParser{},
			&MarkdownParser{},
		},
		plaintext: &PlainTextParser{},
	}
}

// findParser returns the first registered parser that claims ext, or nil.
func (r *Registry) findParser(ext string) Parser {
	for _, p := range r.parsers {
		if p.CanParse(ext) {
			return p
		}
	}
	return nil
}

// Parse parses content using the parser registered for ext. If that parser
// errors, Parse falls back to plain text so ingestion never fails on a
// single malformed document.
func (r *Registry) Parse(content, path, ext string) (*ParsedDocument, error) {
	p := r.findParser(strings.ToLower(ext))
	if p == nil {
		return r.plaintext.Parse(content, path)
	}
	doc, err := p.Parse(content, path)
	if err != nil {
		return r.plaintext.Parse(content, path)
	}
	return doc, nil
}

func singleSection(content string) []Section {
	return []Section{{Header: "content", Content: strings.TrimSpace(content)}}
}
