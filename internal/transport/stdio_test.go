package transport

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ragmcp/internal/apperr"
)

func TestNewStdioRegistersEveryTool(t *testing.T) {
	d, _ := setupDispatcher(t)
	st := NewStdio(d)
	require.NotNil(t, st.mcp)
}

func TestStdioHandlerForSuccess(t *testing.T) {
	d, _ := setupDispatcher(t)
	st := NewStdio(d)

	h := st.handlerFor("list")
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{
		Name:      "list",
		Arguments: map[string]any{"list_type": "namespaces"},
	}}

	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.IsError)
}

func TestStdioHandlerForAppError(t *testing.T) {
	d, _ := setupDispatcher(t)
	st := NewStdio(d)

	h := st.handlerFor("search")
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{
		Name:      "search",
		Arguments: map[string]any{"query": "a"},
	}}

	res, err := h(context.Background(), req)
	require.NoError(t, err) // dispatcher errors surface as tool-result errors, not protocol errors
	require.NotNil(t, res)
	assert.True(t, res.IsError)
}

func TestErrorTextHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "internal error", errorText(assert.AnError))
	assert.Equal(t, "boom", errorText(apperr.New(apperr.InvalidInput, "boom")))
}

func TestToMCPToolConvertsSchema(t *testing.T) {
	d, _ := setupDispatcher(t)
	for _, ts := range d.ListTools() {
		tool := toMCPTool(ts)
		assert.Equal(t, ts.Name, tool.Name)
		assert.Equal(t, ts.Description, tool.Description)
		assert.Equal(t, "object", tool.InputSchema.Type)
	}
}
