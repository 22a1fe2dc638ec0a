package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/ragmcp/internal/apperr"
	"github.com/dshills/ragmcp/internal/graph"
	"github.com/dshills/ragmcp/internal/ingest"
	"github.com/dshills/ragmcp/internal/search"
	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

// staleAfter is how long a document can go without re-ingestion before the
// explain tool's freshness report lists it.
const staleAfter = 7 * 24 * time.Hour

// maxStaleDocuments caps how many documents handleExplain's freshness report
// surfaces in one call.
const maxStaleDocuments = 20

func getString(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func getStringDefault(args map[string]any, key, def string) string {
	s := getString(args, key)
	if s == "" {
		return def
	}
	return s
}

func getBoolDefault(args map[string]any, key string, def bool) bool {
	v, ok := args[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// getIntDefault reads an integer argument. JSON-decoded numbers arrive as
// float64, so both float64 and int are accepted.
func getIntDefault(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

func getFloat64Default(args map[string]any, key string, def float64) float64 {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return def
	}
}

func getStringSlice(args map[string]any, key string) []string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// normalizeDocPath converts a backslash-separated path (as a Windows client
// might send) into the forward-slash form the Store and Validator expect.
func normalizeDocPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// truncatePreview shortens s to at most n runes, appending an ellipsis when
// truncated, so a search report never embeds an entire chunk's text.
func truncatePreview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// auditWrite records a write tool's attempt, success or not. Called via
// defer from every write handler so the audit log is complete even when
// argument validation or path confinement rejects the call before any
// mutation happens.
func auditWrite(ctx context.Context, d *Dispatcher, op domain.AuditOperation, path string, callErr error) {
	entry := &domain.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Operation: op,
		Path:      path,
		Success:   callErr == nil,
	}
	if callErr != nil {
		entry.ErrorMsg = callErr.Error()
	}
	_ = d.Store.InsertAuditEntry(ctx, entry)
}

func errResult(err error) (*Result, error) {
	return nil, err
}

// handleSearch implements the search tool: hybrid BM25+vector retrieval
// fused via Reciprocal Rank Fusion. k == 0 is a deliberate boundary case
// meaning "no results wanted" and returns empty without ever calling Fusion,
// since Fusion.Search treats k <= 0 as "use the default of 10".
func handleSearch(ctx context.Context, d *Dispatcher, args map[string]any) (*Result, error) {
	query := strings.TrimSpace(getString(args, "query"))
	if len([]rune(query)) < 3 {
		return errResult(apperr.New(apperr.InvalidInput, "query must be at least 3 characters"))
	}

	defaultK := d.Search.K
	if defaultK <= 0 {
		defaultK = 5
	}
	k := getIntDefault(args, "k", defaultK)
	if k < 0 || k > 20 {
		return errResult(apperr.New(apperr.InvalidInput, "k must be between 0 and 20"))
	}
	if k == 0 {
		return &Result{Text: fmt.Sprintf("Found 0 results for query: %q\n", query)}, nil
	}

	overfetch := getIntDefault(args, "overfetch", 0)
	if overfetch != 0 && (overfetch < 1 || overfetch > 100) {
		return errResult(apperr.New(apperr.InvalidInput, "overfetch must be between 1 and 100"))
	}

	namespace := getStringDefault(args, "namespace", domain.NamespaceAll)
	minScore := getFloat64Default(args, "min_score", defaultOr(d.Search.MinScore, 0.65))
	if minScore < 0 || minScore > 1 {
		return errResult(apperr.New(apperr.InvalidInput, "min_score must be between 0 and 1"))
	}

	req := search.Request{
		Query: query,
		K:     k,
		Filters: domain.SearchFilters{
			Namespace: namespace,
			AgentName: getString(args, "agent_filter"),
		},
		MinScore:     minScore,
		Overfetch:    overfetch,
		BM25Weight:   d.Search.BM25Weight,
		VectorWeight: d.Search.VectorWeight,
	}

	start := time.Now()
	results, err := d.Fusion.Search(ctx, req)
	if err != nil {
		return errResult(err)
	}
	elapsed := time.Since(start)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d results for query: %q\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. [%s] %s (score: %.3f)\n", i+1, r.Method, r.DocPath, r.Score)
		if r.SectionHeader != "" {
			fmt.Fprintf(&b, "   Section: %s\n", r.SectionHeader)
		}
		fmt.Fprintf(&b, "   Content: %s\n\n", truncatePreview(r.ChunkText, 200))
	}
	fmt.Fprintf(&b, "Latency: %dms\n", elapsed.Milliseconds())

	return &Result{Text: b.String()}, nil
}

func defaultOr(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

// handleGet implements the get tool: document metadata, optionally the full
// text or a named subset of sections.
func handleGet(ctx context.Context, d *Dispatcher, args map[string]any) (*Result, error) {
	docPath := normalizeDocPath(strings.TrimSpace(getString(args, "doc_path")))
	if docPath == "" {
		return errResult(apperr.New(apperr.InvalidInput, "doc_path is required"))
	}

	doc, err := d.Store.GetDocumentByPath(ctx, docPath)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errResult(apperr.Wrap(apperr.NotFound, "document not found: "+docPath, err))
		}
		return errResult(apperr.Wrap(apperr.StoreError, "get document", err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n", doc.Path)
	fmt.Fprintf(&b, "Type: %s\n", doc.Type)
	fmt.Fprintf(&b, "Namespace: %s\n", doc.Namespace)
	if doc.AgentName != "" {
		fmt.Fprintf(&b, "Agent: %s\n", doc.AgentName)
	}
	fmt.Fprintf(&b, "Tokens: %d\n", doc.TokenCount)
	fmt.Fprintf(&b, "Last Modified: %s\n", doc.LastModifiedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Hash: %s\n\n", doc.FileHash)

	sections := getStringSlice(args, "sections")
	returnFull := getBoolDefault(args, "return_full_doc", false)

	switch {
	case len(sections) > 0:
		wanted := make(map[string]bool, len(sections))
		for _, s := range sections {
			wanted[s] = true
		}
		chunks, err := d.Store.ListChunksByDoc(ctx, doc.ID)
		if err != nil {
			return errResult(apperr.Wrap(apperr.StoreError, "list chunks", err))
		}
		found := false
		for _, c := range chunks {
			if !wanted[c.SectionHeader] {
				continue
			}
			found = true
			fmt.Fprintf(&b, "--- %s ---\n%s\n\n", c.SectionHeader, c.Text)
		}
		if !found {
			b.WriteString("(no matching sections found)\n")
		}
	case returnFull:
		b.WriteString("Full Content:\n")
		b.WriteString(doc.ContentText)
	default:
		b.WriteString("(Use return_full_doc=true to see full content)\n")
	}

	return &Result{Text: b.String()}, nil
}

// handleList implements the list tool over the four corpus-structure views.
func handleList(ctx context.Context, d *Dispatcher, args map[string]any) (*Result, error) {
	listType := getString(args, "list_type")
	agentName := getString(args, "agent_name")

	var b strings.Builder
	switch listType {
	case "agents":
		agents, err := d.Store.ListAgentNames(ctx)
		if err != nil {
			return errResult(apperr.Wrap(apperr.StoreError, "list agents", err))
		}
		fmt.Fprintf(&b, "Found %d agents:\n\n", len(agents))
		for _, a := range agents {
			fmt.Fprintf(&b, "- %s\n", a)
		}

	case "system_docs":
		docs, err := d.Store.ListDocumentsByNamespace(ctx, domain.NamespaceAll)
		if err != nil {
			return errResult(apperr.Wrap(apperr.StoreError, "list system docs", err))
		}
		if agentName != "" {
			filtered := docs[:0]
			for _, doc := range docs {
				if doc.AgentName == agentName {
					filtered = append(filtered, doc)
				}
			}
			docs = filtered
		}
		fmt.Fprintf(&b, "Found %d system documents:\n\n", len(docs))
		for _, doc := range docs {
			fmt.Fprintf(&b, "- %s (%s)", doc.Path, doc.Type)
			if doc.AgentName != "" {
				fmt.Fprintf(&b, " [Agent: %s]", doc.AgentName)
			}
			b.WriteByte('\n')
		}

	case "namespaces":
		namespaces, err := d.Store.ListNamespaces(ctx)
		if err != nil {
			return errResult(apperr.Wrap(apperr.StoreError, "list namespaces", err))
		}
		fmt.Fprintf(&b, "Found %d namespaces:\n\n", len(namespaces))
		for _, ns := range namespaces {
			fmt.Fprintf(&b, "- %s\n", ns)
		}

	case "doc_types":
		docTypes, err := d.Store.ListDocTypes(ctx)
		if err != nil {
			return errResult(apperr.Wrap(apperr.StoreError, "list doc types", err))
		}
		fmt.Fprintf(&b, "Found %d document types:\n\n", len(docTypes))
		for _, t := range docTypes {
			fmt.Fprintf(&b, "- %s\n", t)
		}

	default:
		return errResult(apperr.New(apperr.InvalidInput, "list_type must be one of: agents, system_docs, namespaces, doc_types"))
	}

	return &Result{Text: b.String()}, nil
}

type relatedRelation struct {
	RelationID string `json:"relation_id"`
	Source     string `json:"source"`
	Type       string `json:"type"`
	Target     string `json:"target"`
}

type relatedReport struct {
	Entity        string            `json:"entity"`
	MaxDepth      int               `json:"max_depth"`
	RelationCount int               `json:"relation_count"`
	Relations     []relatedRelation `json:"relations"`
}

// handleRelated implements the related tool: a bounded BFS walk of the
// knowledge graph extracted during ingestion. graph.Traverse silently clamps
// an out-of-range depth rather than erroring, so the depth bound is enforced
// here.
func handleRelated(ctx context.Context, d *Dispatcher, args map[string]any) (*Result, error) {
	entity := strings.TrimSpace(getString(args, "entity"))
	if entity == "" {
		return errResult(apperr.New(apperr.InvalidInput, "entity is required"))
	}

	maxDepth := getIntDefault(args, "max_depth", 1)
	if maxDepth < 1 || maxDepth > graph.MaxTraversalDepth {
		return errResult(apperr.New(apperr.InvalidInput, fmt.Sprintf("max_depth must be between 1 and %d", graph.MaxTraversalDepth)))
	}

	relationTypes := getStringSlice(args, "relation_types")

	relations, err := graph.Traverse(ctx, d.Store, entity, relationTypes, maxDepth)
	if err != nil {
		return errResult(apperr.Wrap(apperr.StoreError, "traverse relations", err))
	}

	report := relatedReport{
		Entity:        entity,
		MaxDepth:      maxDepth,
		RelationCount: len(relations),
		Relations:     make([]relatedRelation, 0, len(relations)),
	}
	for _, r := range relations {
		report.Relations = append(report.Relations, relatedRelation{
			RelationID: r.ID,
			Source:     r.SourceEntity,
			Type:       r.RelationType,
			Target:     r.TargetEntity,
		})
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errResult(apperr.Wrap(apperr.Internal, "marshal related report", err))
	}
	return &Result{Text: string(out)}, nil
}

// handleExplain implements the explain tool's three sub-modes.
func handleExplain(ctx context.Context, d *Dispatcher, args map[string]any) (*Result, error) {
	switch getString(args, "explain_what") {
	case "index_stats":
		return explainIndexStats(ctx, d)
	case "doc_info":
		return explainDocInfo(ctx, d, args)
	case "freshness":
		return explainFreshness(ctx, d)
	default:
		return errResult(apperr.New(apperr.InvalidInput, "explain_what must be one of: index_stats, doc_info, freshness"))
	}
}

func explainIndexStats(ctx context.Context, d *Dispatcher) (*Result, error) {
	status, err := d.Store.Status(ctx)
	if err != nil {
		return errResult(apperr.Wrap(apperr.StoreError, "get status", err))
	}

	coverage := 0.0
	if status.ChunksCount > 0 {
		coverage = float64(status.EmbeddingsCount) / float64(status.ChunksCount) * 100
	}
	lastUpdate := "Unknown"
	if !status.LastIngestAt.IsZero() {
		lastUpdate = status.LastIngestAt.Format(time.RFC3339)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Documents: %d\n", status.DocumentsCount)
	fmt.Fprintf(&b, "Chunks: %d\n", status.ChunksCount)
	fmt.Fprintf(&b, "Embedded Chunks: %d\n", status.EmbeddingsCount)
	fmt.Fprintf(&b, "Embedding Coverage: %.1f%%\n", coverage)
	fmt.Fprintf(&b, "Index Size: %.2f MB\n", status.IndexSizeMB)
	fmt.Fprintf(&b, "Last Update: %s\n", lastUpdate)
	return &Result{Text: b.String()}, nil
}

func explainDocInfo(ctx context.Context, d *Dispatcher, args map[string]any) (*Result, error) {
	docPath := normalizeDocPath(strings.TrimSpace(getString(args, "doc_path")))
	if docPath == "" {
		return errResult(apperr.New(apperr.InvalidInput, "doc_path is required for doc_info"))
	}

	doc, err := d.Store.GetDocumentByPath(ctx, docPath)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errResult(apperr.Wrap(apperr.NotFound, "document not found: "+docPath, err))
		}
		return errResult(apperr.Wrap(apperr.StoreError, "get document", err))
	}

	chunks, err := d.Store.ListChunksByDoc(ctx, doc.ID)
	if err != nil {
		return errResult(apperr.Wrap(apperr.StoreError, "list chunks", err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Path: %s\n", doc.Path)
	fmt.Fprintf(&b, "Type: %s\n", doc.Type)
	fmt.Fprintf(&b, "Namespace: %s\n", doc.Namespace)
	if doc.AgentName != "" {
		fmt.Fprintf(&b, "Agent: %s\n", doc.AgentName)
	}
	fmt.Fprintf(&b, "Tokens: %d\n", doc.TokenCount)
	fmt.Fprintf(&b, "Last Modified: %s\n", doc.LastModifiedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Hash: %s\n", doc.FileHash)
	fmt.Fprintf(&b, "Chunks: %d\n", len(chunks))
	return &Result{Text: b.String()}, nil
}

func explainFreshness(ctx context.Context, d *Dispatcher) (*Result, error) {
	cutoff := time.Now().Add(-staleAfter)
	docs, err := d.Store.ListStaleDocuments(ctx, cutoff, maxStaleDocuments)
	if err != nil {
		return errResult(apperr.Wrap(apperr.StoreError, "list stale documents", err))
	}

	var b strings.Builder
	if len(docs) == 0 {
		b.WriteString("No stale documents found.\n")
		return &Result{Text: b.String()}, nil
	}
	fmt.Fprintf(&b, "Found %d stale documents (older than %s):\n\n", len(docs), staleAfter)
	for _, doc := range docs {
		fmt.Fprintf(&b, "- %s (last modified: %s)\n", doc.Path, doc.LastModifiedAt.Format(time.RFC3339))
	}
	return &Result{Text: b.String()}, nil
}

type writeDocResult struct {
	Success       bool   `json:"success"`
	DocPath       string `json:"doc_path"`
	Operation     string `json:"operation"`
	ChunksCreated int    `json:"chunks_created"`
	Message       string `json:"message"`
	Warning       string `json:"warning,omitempty"`
}

// handleCreateDoc implements create_doc: validate, reject an existing path,
// write the file, and run it through the ingest pipeline inline. An audit
// entry is written on every return path via the deferred auditWrite, so a
// rejected path still leaves a success=false audit row.
func handleCreateDoc(ctx context.Context, d *Dispatcher, args map[string]any) (res *Result, err error) {
	docPath := normalizeDocPath(getString(args, "doc_path"))
	defer func() { auditWrite(ctx, d, domain.AuditOpCreateDoc, docPath, err) }()

	content := getString(args, "content")
	if docPath == "" || content == "" {
		err = apperr.New(apperr.InvalidInput, "doc_path and content are required")
		return nil, err
	}

	validated, verr := d.Validator.Validate(docPath)
	if verr != nil {
		err = verr
		return nil, err
	}

	if _, getErr := d.Store.GetDocumentByPath(ctx, validated.RelPath); getErr == nil {
		err = apperr.New(apperr.InvalidInput, "document already exists: "+validated.RelPath)
		return nil, err
	} else if !errors.Is(getErr, store.ErrNotFound) {
		err = apperr.Wrap(apperr.StoreError, "check existing document", getErr)
		return nil, err
	}

	if mkErr := os.MkdirAll(filepath.Dir(validated.AbsPath), 0o755); mkErr != nil {
		err = apperr.Wrap(apperr.Internal, "create parent directories", mkErr)
		return nil, err
	}
	if writeErr := os.WriteFile(validated.AbsPath, []byte(content), 0o644); writeErr != nil {
		err = apperr.Wrap(apperr.Internal, "write file", writeErr)
		return nil, err
	}

	docTypeOverride := domain.DocType(getString(args, "doc_type"))
	switch docTypeOverride {
	case domain.DocTypeMarkdown, domain.DocTypeXML, domain.DocTypeYAML, domain.DocTypeJSON, domain.DocTypePlainText:
		// recognised override, pass through as-is
	default:
		docTypeOverride = ""
	}

	kind, procErr := d.Ingester.ProcessDocument(ctx, validated.RelPath, []byte(content), ingest.ProcessOptions{DocTypeOverride: docTypeOverride})
	if procErr != nil {
		err = procErr
		return nil, err
	}

	result, warnMsg := finishWriteDoc(ctx, d, validated.RelPath, string(kind))
	if warnMsg != "" {
		result.Warning = warnMsg
	}
	result.Message = "document created"
	out, marshalErr := json.MarshalIndent(result, "", "  ")
	if marshalErr != nil {
		err = apperr.Wrap(apperr.Internal, "marshal result", marshalErr)
		return nil, err
	}
	return &Result{Text: string(out)}, nil
}

// handleUpdateDoc implements update_doc: unlike create_doc it overwrites
// unconditionally and always re-derives the document type from its
// extension rather than accepting an override.
func handleUpdateDoc(ctx context.Context, d *Dispatcher, args map[string]any) (res *Result, err error) {
	docPath := normalizeDocPath(getString(args, "doc_path"))
	defer func() { auditWrite(ctx, d, domain.AuditOpUpdateDoc, docPath, err) }()

	content := getString(args, "content")
	if docPath == "" || content == "" {
		err = apperr.New(apperr.InvalidInput, "doc_path and content are required")
		return nil, err
	}

	validated, verr := d.Validator.Validate(docPath)
	if verr != nil {
		err = verr
		return nil, err
	}

	if mkErr := os.MkdirAll(filepath.Dir(validated.AbsPath), 0o755); mkErr != nil {
		err = apperr.Wrap(apperr.Internal, "create parent directories", mkErr)
		return nil, err
	}
	if writeErr := os.WriteFile(validated.AbsPath, []byte(content), 0o644); writeErr != nil {
		err = apperr.Wrap(apperr.Internal, "write file", writeErr)
		return nil, err
	}

	kind, procErr := d.Ingester.ProcessDocument(ctx, validated.RelPath, []byte(content), ingest.ProcessOptions{})
	if procErr != nil {
		err = procErr
		return nil, err
	}

	result, warnMsg := finishWriteDoc(ctx, d, validated.RelPath, string(kind))
	if warnMsg != "" {
		result.Warning = warnMsg
	}
	result.Message = "document updated"
	out, marshalErr := json.MarshalIndent(result, "", "  ")
	if marshalErr != nil {
		err = apperr.Wrap(apperr.Internal, "marshal result", marshalErr)
		return nil, err
	}
	return &Result{Text: string(out)}, nil
}

// finishWriteDoc runs the non-fatal embed-missing pass and collects the
// final chunk count for a just-written document. A failed embed pass is
// reported as a warning string rather than propagated as an error: the
// write itself already succeeded and is searchable via BM25 regardless.
func finishWriteDoc(ctx context.Context, d *Dispatcher, relPath, operation string) (*writeDocResult, string) {
	warning := ""
	if d.Embedder != nil {
		if _, err := d.Embedder.EmbedMissing(ctx, false); err != nil {
			warning = "embedding pass failed: " + err.Error()
		}
	}

	chunkCount := 0
	if doc, err := d.Store.GetDocumentByPath(ctx, relPath); err == nil {
		if chunks, err := d.Store.ListChunksByDoc(ctx, doc.ID); err == nil {
			chunkCount = len(chunks)
		}
	}

	return &writeDocResult{
		Success:       true,
		DocPath:       relPath,
		Operation:     operation,
		ChunksCreated: chunkCount,
	}, warning
}

type deleteDocResult struct {
	Success bool   `json:"success"`
	DocPath string `json:"doc_path"`
	Message string `json:"message"`
}

// handleDeleteDoc implements delete_doc: no analogous handler exists in the
// tool this was grounded on, so the shape follows create_doc/update_doc's
// validate-then-audit pattern, requiring an explicit confirm=true guard
// against an accidental call.
func handleDeleteDoc(ctx context.Context, d *Dispatcher, args map[string]any) (res *Result, err error) {
	docPath := normalizeDocPath(getString(args, "doc_path"))
	defer func() { auditWrite(ctx, d, domain.AuditOpDeleteDoc, docPath, err) }()

	if docPath == "" {
		err = apperr.New(apperr.InvalidInput, "doc_path is required")
		return nil, err
	}
	if !getBoolDefault(args, "confirm", false) {
		err = apperr.New(apperr.InvalidInput, "confirm must be true to delete a document")
		return nil, err
	}

	validated, verr := d.Validator.Validate(docPath)
	if verr != nil {
		err = verr
		return nil, err
	}

	if _, getErr := d.Store.GetDocumentByPath(ctx, validated.RelPath); getErr != nil {
		if errors.Is(getErr, store.ErrNotFound) {
			err = apperr.Wrap(apperr.NotFound, "document not found: "+validated.RelPath, getErr)
			return nil, err
		}
		err = apperr.Wrap(apperr.StoreError, "get document", getErr)
		return nil, err
	}

	if rmErr := os.Remove(validated.AbsPath); rmErr != nil && !os.IsNotExist(rmErr) {
		err = apperr.Wrap(apperr.Internal, "remove file", rmErr)
		return nil, err
	}

	txErr := d.Store.Transaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if delErr := tx.DeleteDocumentByPath(ctx, validated.RelPath); delErr != nil {
			return delErr
		}
		return tx.InsertDocumentOperation(ctx, &domain.DocumentOperation{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			DocPath:   validated.RelPath,
			Kind:      domain.DocOpRemoved,
		})
	})
	if txErr != nil {
		err = apperr.Wrap(apperr.StoreError, "delete document", txErr)
		return nil, err
	}

	result := deleteDocResult{
		Success: true,
		DocPath: validated.RelPath,
		Message: "document deleted",
	}
	out, marshalErr := json.MarshalIndent(result, "", "  ")
	if marshalErr != nil {
		err = apperr.Wrap(apperr.Internal, "marshal result", marshalErr)
		return nil, err
	}
	return &Result{Text: string(out)}, nil
}
