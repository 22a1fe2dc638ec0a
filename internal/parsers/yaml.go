package parsers

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLParser sections a YAML document by its top-level mapping keys, so
// "tools.yaml" and "guardrails.yaml" style config files retrieve as
// individually addressable chunks rather than one undifferentiated blob.
type YAMLParser struct{}

func (p *YAMLParser) CanParse(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func (p *YAMLParser) Parse(content, path string) (*ParsedDocument, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(content), &root); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", path, err)
	}

	doc := &root
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		doc = root.Content[0]
	}

	var sections []Section
	if doc != nil && doc.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(doc.Content); i += 2 {
			key := doc.Content[i]
			val := doc.Content[i+1]
			sections = append(sections, Section{
				Header:      key.Value,
				Content:     yamlNodeToText(val),
				SectionType: "mapping",
			})
		}
	} else if doc != nil {
		sections = append(sections, Section{Header: "root", Content: yamlNodeToText(doc)})
	}

	if len(sections) == 0 {
		sections = singleSection(content)
	}

	return &ParsedDocument{Content: content, Sections: sections, DocType: "yaml"}, nil
}

// yamlNodeToText renders a YAML node as readable text, mirroring how a
// structured value is shown in a rendered config file.
func yamlNodeToText(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value
	case yaml.SequenceNode:
		parts := make([]string, len(n.Content))
		for i, item := range n.Content {
			parts[i] = yamlNodeToText(item)
		}
		return strings.Join(parts, ", ")
	case yaml.MappingNode:
		var b strings.Builder
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(n.Content[i].Value)
			b.WriteString(": ")
			b.WriteString(yamlNodeToText(n.Content[i+1]))
		}
		return b.String()
	case yaml.AliasNode:
		return yamlNodeToText(n.Alias)
	default:
		return n.Value
	}
}
