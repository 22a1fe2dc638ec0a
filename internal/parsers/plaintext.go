package parsers

import "strings"

// PlainTextParser treats the entire document as a single section with the
// header "content".
// It is both a format in its own right and the universal fallback the
// Registry retries with when a structured parser fails.
type PlainTextParser struct{}

func (p *PlainTextParser) CanParse(ext string) bool { return true }

func (p *PlainTextParser) Parse(content, path string) (*ParsedDocument, error) {
	return &ParsedDocument{
		Content:  content,
		Sections: singleSection(content),
		DocType:  plaintextDocType(path),
	}, nil
}

func plaintextDocType(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return "yaml_plaintext"
	case strings.HasSuffix(lower, ".json"):
		return "json_plaintext"
	case strings.HasSuffix(lower, ".xml"):
		return "xml_plaintext"
	default:
		return "plaintext"
	}
}

// LooksBinary reports whether content likely isn't text, by the presence of
// a NUL byte in the first 8 KiB, the conventional binary-content heuristic.
// Exported so callers outside the package (the ingester's file walk) can
// skip binary files before ever calling Parse.
func LooksBinary(content []byte) bool {
	return looksBinary(content)
}

func looksBinary(content []byte) bool {
	limit := len(content)
	if limit > 8192 {
		limit = 8192
	}
	for _, b := range content[:limit] {
		if b == 0 {
			return true
		}
	}
	return false
}
