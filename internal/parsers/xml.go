package parsers

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// XMLParser sections an XML document by its top-level child elements,
// matching the mapping-style sectioning used for YAML and JSON so a config
// expressed in any of the three formats retrieves the same way.
type XMLParser struct{}

func (p *XMLParser) CanParse(ext string) bool { return ext == ".xml" }

// xmlNode is a generic tree shape any well-formed XML document unmarshals
// into, used to walk arbitrary schemas without a format-specific struct.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Chardata string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

func (p *XMLParser) Parse(content, path string) (*ParsedDocument, error) {
	var root xmlNode
	if err := xml.Unmarshal([]byte(content), &root); err != nil {
		return nil, fmt.Errorf("parse XML %s: %w", path, err)
	}

	var sections []Section
	if len(root.Children) > 0 {
		for _, child := range root.Children {
			sections = append(sections, Section{
				Header:      child.XMLName.Local,
				Content:     xmlNodeToText(child),
				SectionType: "element",
			})
		}
	} else {
		sections = append(sections, Section{Header: root.XMLName.Local, Content: strings.TrimSpace(root.Chardata)})
	}

	if len(sections) == 0 {
		sections = singleSection(content)
	}

	return &ParsedDocument{Content: content, Sections: sections, DocType: "xml"}, nil
}

func xmlNodeToText(n xmlNode) string {
	text := strings.TrimSpace(n.Chardata)
	if len(n.Children) == 0 {
		return text
	}
	var b strings.Builder
	if text != "" {
		b.WriteString(text)
		b.WriteByte('\n')
	}
	for i, child := range n.Children {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(child.XMLName.Local)
		b.WriteString(": ")
		b.WriteString(xmlNodeToText(child))
	}
	return b.String()
}
