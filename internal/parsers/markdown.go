package parsers

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser sections a markdown document by ATX heading, walking
// goldmark's parsed AST rather than scanning for "#" lines by hand so
// headings inside fenced code blocks are never mistaken for structure.
type MarkdownParser struct{}

func (p *MarkdownParser) CanParse(ext string) bool {
	return ext == ".md" || ext == ".markdown"
}

func (p *MarkdownParser) Parse(content, path string) (*ParsedDocument, error) {
	source := []byte(content)
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	var sections []Section
	var header string
	var level int
	var body strings.Builder

	flush := func() {
		text := strings.TrimSpace(body.String())
		if text == "" {
			body.Reset()
			return
		}
		sectionType := ""
		if level > 0 {
			sectionType = headingLevelTag(level)
		}
		sections = append(sections, Section{Header: header, Content: text, SectionType: sectionType})
		body.Reset()
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			flush()
			header = strings.TrimSpace(blockText(h, source))
			level = h.Level
			continue
		}
		body.WriteString(blockText(n, source))
		body.WriteByte('\n')
	}
	flush()

	if len(sections) == 0 {
		sections = singleSection(content)
	}

	return &ParsedDocument{Content: content, Sections: sections, DocType: "markdown"}, nil
}

func headingLevelTag(level int) string {
	const tags = "h0h1h2h3h4h5h6"
	if level < 0 || level > 6 {
		return "h0"
	}
	return tags[level*2 : level*2+2]
}

// blockText extracts the rendered plain text of a block node: inline text
// segments for paragraphs/headings, raw lines for fenced/indented code.
func blockText(n ast.Node, source []byte) string {
	var b strings.Builder
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(source))
		}
		return b.String()
	}

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		case *ast.CodeSpan:
			// children are *ast.Text nodes, already handled by the walk
		case *ast.FencedCodeBlock:
			lines := t.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			lines := t.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
