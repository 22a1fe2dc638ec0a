package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DispatchesByExtension(t *testing.T) {
	reg := NewRegistry()

	doc, err := reg.Parse("# Title\n\nBody text.\n", "a.md", ".md")
	require.NoError(t, err)
	assert.Equal(t, "markdown", doc.DocType)

	doc, err = reg.Parse(`{"a": 1}`, "a.json", ".json")
	require.NoError(t, err)
	assert.Equal(t, "json", doc.DocType)

	doc, err = reg.Parse("a: 1\n", "a.yaml", ".yaml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", doc.DocType)

	doc, err = reg.Parse("unstructured notes", "a.txt", ".txt")
	require.NoError(t, err)
	assert.Equal(t, "plaintext", doc.DocType)
}

func TestRegistry_FallsBackToPlainTextOnParseError(t *testing.T) {
	reg := NewRegistry()

	doc, err := reg.Parse(`{"key": "value", invalid}`, "bad.json", ".json")
	require.NoError(t, err)
	assert.Equal(t, "json_plaintext", doc.DocType)
	require.Len(t, doc.Sections, 1)
	assert.Contains(t, doc.Sections[0].Content, "invalid")
}

func TestMarkdownParser_SectionsByHeading(t *testing.T) {
	p := &MarkdownParser{}
	content := "# Title\n\nThis is content.\n\n## Subsection\n\nMore content.\n"

	doc, err := p.Parse(content, "test.md")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(doc.Sections), 2)

	var titleSection *Section
	for i := range doc.Sections {
		if doc.Sections[i].Header == "Title" {
			titleSection = &doc.Sections[i]
		}
	}
	require.NotNil(t, titleSection)
	assert.Contains(t, titleSection.Content, "This is content.")
}

func TestMarkdownParser_PreservesFencedCodeBlock(t *testing.T) {
	p := &MarkdownParser{}
	content := "# Code\n\n```go\nfunc main() {}\n```\n"

	doc, err := p.Parse(content, "test.md")
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)
	assert.Contains(t, doc.Sections[0].Content, "func main()")
}

func TestYAMLParser_SectionsByTopLevelKey(t *testing.T) {
	p := &YAMLParser{}
	content := "key1: value1\nkey2: value2\nnested:\n  subkey: subvalue\n"

	doc, err := p.Parse(content, "test.yaml")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(doc.Sections), 2)

	var key1 *Section
	for i := range doc.Sections {
		if doc.Sections[i].Header == "key1" {
			key1 = &doc.Sections[i]
		}
	}
	require.NotNil(t, key1)
	assert.Equal(t, "value1", key1.Content)
}

func TestYAMLParser_InvalidYAMLErrors(t *testing.T) {
	p := &YAMLParser{}
	_, err := p.Parse("key: [unterminated", "bad.yaml")
	assert.Error(t, err)
}

func TestJSONParser_SectionsByTopLevelKey(t *testing.T) {
	p := &JSONParser{}
	doc, err := p.Parse(`{"name": "ragmcp", "nested": {"a": 1}}`, "test.json")
	require.NoError(t, err)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "name", doc.Sections[0].Header) // sorted alphabetically before "nested"
	assert.Equal(t, "ragmcp", doc.Sections[0].Content)
}

func TestXMLParser_SectionsByTopLevelElement(t *testing.T) {
	p := &XMLParser{}
	doc, err := p.Parse(`<root><tool>search</tool><tool>ingest</tool></root>`, "test.xml")
	require.NoError(t, err)
	require.NotEmpty(t, doc.Sections)
	assert.Equal(t, "tool", doc.Sections[0].Header)
}

func TestPlainTextParser_SingleSection(t *testing.T) {
	p := &PlainTextParser{}
	doc, err := p.Parse("just some notes", "notes.txt")
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "content", doc.Sections[0].Header)
	assert.Equal(t, "plaintext", doc.DocType)
}

func TestLooksBinary(t *testing.T) {
	assert.True(t, looksBinary([]byte{0x00, 0x01, 0x02}))
	assert.False(t, looksBinary([]byte("plain ascii text")))
}
