package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippetPassesShortTextThrough(t *testing.T) {
	assert.Equal(t, "short", snippet("short"))
}

func TestSnippetTruncatesLongText(t *testing.T) {
	long := strings.Repeat("a", 200)
	out := snippet(long)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Len(t, out, 163)
}

func TestProviderBaseURLKnownNames(t *testing.T) {
	assert.Equal(t, "https://api.openai.com/v1/embeddings", providerBaseURL("openai"))
	assert.Equal(t, "https://api.openai.com/v1/embeddings", providerBaseURL(""))
	assert.Equal(t, "https://api.jina.ai/v1/embeddings", providerBaseURL("jina"))
}

func TestProviderBaseURLPassesThroughUnknownAsLiteralURL(t *testing.T) {
	assert.Equal(t, "https://internal.example/embed", providerBaseURL("https://internal.example/embed"))
}
