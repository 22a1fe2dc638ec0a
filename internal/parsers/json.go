package parsers

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// JSONParser sections a JSON document by its top-level object keys. Go's
// map iteration order is randomized, so keys are sorted for a stable,
// reproducible section order rather than reproducing source insertion order.
type JSONParser struct{}

func (p *JSONParser) CanParse(ext string) bool { return ext == ".json" }

func (p *JSONParser) Parse(content, path string) (*ParsedDocument, error) {
	var value any
	if err := json.Unmarshal([]byte(content), &value); err != nil {
		return nil, fmt.Errorf("parse JSON %s: %w", path, err)
	}

	var sections []Section
	if obj, ok := value.(map[string]any); ok {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sections = append(sections, Section{
				Header:      k,
				Content:     jsonValueToText(obj[k]),
				SectionType: "object",
			})
		}
	} else {
		sections = append(sections, Section{Header: "root", Content: jsonValueToText(value)})
	}

	if len(sections) == 0 {
		sections = singleSection(content)
	}

	return &ParsedDocument{Content: content, Sections: sections, DocType: "json"}, nil
}

func jsonValueToText(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool, float64:
		return fmt.Sprintf("%v", val)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = jsonValueToText(item)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for i, k := range keys {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(jsonValueToText(val[k]))
		}
		return b.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
