package dispatcher

import (
	"context"

	"github.com/dshills/ragmcp/internal/apperr"
	"github.com/dshills/ragmcp/internal/embed"
	"github.com/dshills/ragmcp/internal/ingest"
	"github.com/dshills/ragmcp/internal/pathvalidator"
	"github.com/dshills/ragmcp/internal/search"
	"github.com/dshills/ragmcp/internal/store"
)

// Result is a single tool-call outcome: a text payload plus a flag the
// transport layer surfaces as the wire protocol's is_error marker. Text is
// either a human-readable report (search, get, list, explain) or a
// marshalled JSON object (related, create_doc, update_doc, delete_doc),
// matching the split the underlying tool descriptions imply.
type Result struct {
	Text    string
	IsError bool
}

// SearchDefaults carries the [search] configuration table's tunables so the
// search handler doesn't hardcode them.
type SearchDefaults struct {
	K            int
	MinScore     float64
	BM25Weight   float64
	VectorWeight float64
}

// Dispatcher wires the eight tool operations to their backing components.
// A single instance is shared by every transport connection.
type Dispatcher struct {
	Store     store.Store
	Fusion    *search.Fusion
	Ingester  *ingest.Ingester
	Embedder  *embed.Embedder // nil disables the inline post-write embed pass
	Validator *pathvalidator.Validator
	Search    SearchDefaults
}

// New builds a Dispatcher over the given components. defaults is optional;
// a zero value falls back to the hardcoded defaults each handler documents.
func New(st store.Store, fusion *search.Fusion, ig *ingest.Ingester, emb *embed.Embedder, validator *pathvalidator.Validator, defaults SearchDefaults) *Dispatcher {
	return &Dispatcher{
		Store:     st,
		Fusion:    fusion,
		Ingester:  ig,
		Embedder:  emb,
		Validator: validator,
		Search:    defaults,
	}
}

type handlerFunc func(ctx context.Context, d *Dispatcher, args map[string]any) (*Result, error)

var handlers = map[string]handlerFunc{
	"search":     handleSearch,
	"get":        handleGet,
	"list":       handleList,
	"related":    handleRelated,
	"explain":    handleExplain,
	"create_doc": handleCreateDoc,
	"update_doc": handleUpdateDoc,
	"delete_doc": handleDeleteDoc,
}

// Call runs the named tool with args, validating before any mutation and
// returning a typed *apperr.Error for any schema violation or downstream
// failure. args may be nil.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (*Result, error) {
	h, ok := handlers[name]
	if !ok {
		return nil, apperr.New(apperr.InvalidInput, "unknown tool: "+name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return h(ctx, d, args)
}

// ListTools returns the published schema for every tool, for the
// transport's tools/list response.
func (d *Dispatcher) ListTools() []ToolSchema {
	return toolSchemas
}
