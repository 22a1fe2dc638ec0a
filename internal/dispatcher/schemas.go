package dispatcher

// ToolSchema is the published, transport-agnostic description of one tool:
// a JSON Schema object for its arguments, in the shape both the stdio
// transport (via mark3labs/mcp-go's mcp.Tool) and the HTTP transport's
// tools/list JSON-RPC response expect.
type ToolSchema struct {
	Name        string
	Description string
	InputSchema map[string]any
}

var toolSchemas = []ToolSchema{
	{
		Name:        "search",
		Description: "Hybrid search across the corpus using BM25 and vector similarity, fused via Reciprocal Rank Fusion",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query text",
					"minLength":   3,
				},
				"k": map[string]any{
					"type":        "integer",
					"description": "Number of results to return",
					"default":     5,
					"minimum":     0,
					"maximum":     20,
				},
				"overfetch": map[string]any{
					"type":        "integer",
					"description": "Number of raw fused results to retrieve before score thresholding is applied; disables min_score when set",
					"minimum":     1,
					"maximum":     100,
				},
				"namespace": map[string]any{
					"type":        "string",
					"description": "Filter by namespace (top-level directory). Use 'all' for every namespace",
					"default":     "all",
				},
				"agent_filter": map[string]any{
					"type":        "string",
					"description": "Filter by agent name (second-level directory)",
				},
				"min_score": map[string]any{
					"type":        "number",
					"description": "Minimum fused relevance score (0-1)",
					"default":     0.65,
					"minimum":     0,
					"maximum":     1,
				},
			},
			"required": []string{"query"},
		},
	},
	{
		Name:        "get",
		Description: "Retrieve a document by path, in full or as a subset of named sections",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"doc_path": map[string]any{
					"type":        "string",
					"description": "Document path relative to the corpus root",
				},
				"return_full_doc": map[string]any{
					"type":        "boolean",
					"default":     false,
					"description": "Return the full document content instead of just metadata",
				},
				"sections": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Section headers to retrieve instead of the full document",
				},
			},
			"required": []string{"doc_path"},
		},
	},
	{
		Name:        "list",
		Description: "List corpus structure: agents, system_docs, namespaces, or doc_types",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"list_type": map[string]any{
					"type": "string",
					"enum": []string{"agents", "system_docs", "namespaces", "doc_types"},
				},
				"agent_name": map[string]any{
					"type":        "string",
					"description": "Filter system_docs by agent name",
				},
			},
			"required": []string{"list_type"},
		},
	},
	{
		Name:        "related",
		Description: "Find related entities via a breadth-first walk of the knowledge graph extracted during ingestion",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"entity": map[string]any{
					"type":        "string",
					"description": "Entity identifier to start the traversal from",
				},
				"relation_types": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Restrict traversal to these relation types",
				},
				"max_depth": map[string]any{
					"type":    "integer",
					"default": 1,
					"minimum": 1,
					"maximum": 3,
				},
			},
			"required": []string{"entity"},
		},
	},
	{
		Name:        "explain",
		Description: "Get meta-information about the index: aggregate stats, single-document info, or a staleness report",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"explain_what": map[string]any{
					"type": "string",
					"enum": []string{"index_stats", "doc_info", "freshness"},
				},
				"doc_path": map[string]any{
					"type":        "string",
					"description": "Document path, required for doc_info",
				},
			},
			"required": []string{"explain_what"},
		},
	},
	{
		Name:        "create_doc",
		Description: "Create a new document with automatic parsing, chunking, and embedding. Creates parent directories if needed",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"doc_path": map[string]any{
					"type":        "string",
					"description": "Path relative to the corpus root, e.g. \"Guides/subfolder/doc.md\"",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "Full document content to write",
				},
				"doc_type": map[string]any{
					"type":        "string",
					"description": "Document type override (optional, auto-detected from extension if omitted)",
				},
			},
			"required": []string{"doc_path", "content"},
		},
	},
	{
		Name:        "update_doc",
		Description: "Replace an existing document's content, re-parsing and re-embedding automatically",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"doc_path": map[string]any{
					"type":        "string",
					"description": "Path of the document to update",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "New content (full replacement)",
				},
			},
			"required": []string{"doc_path", "content"},
		},
	},
	{
		Name:        "delete_doc",
		Description: "Delete a document and its chunks from the corpus and the index",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"doc_path": map[string]any{
					"type":        "string",
					"description": "Path of the document to delete",
				},
				"confirm": map[string]any{
					"type":        "boolean",
					"description": "Must be true; a safety guard against accidental deletion",
				},
			},
			"required": []string{"doc_path", "confirm"},
		},
	},
}
