package domain

import "time"

// RetrievalMethod labels how a search result was produced.
type RetrievalMethod string

const (
	RetrievalHybrid     RetrievalMethod = "hybrid"
	RetrievalBM25Only   RetrievalMethod = "bm25_only"
	RetrievalVectorOnly RetrievalMethod = "vector_only"
)

// QueryLog is an append-only record of a single retrieval, written by the
// Fusion engine for telemetry.
type QueryLog struct {
	ID              string
	Timestamp       time.Time
	QueryText       string
	Namespace       string
	Method          RetrievalMethod
	ResultChunkIDs  []string
	LatencyMS       int64
	ResultCount     int
}

// AuditOperation names the write tool that produced an audit entry.
type AuditOperation string

const (
	AuditOpCreateDoc AuditOperation = "create_doc"
	AuditOpUpdateDoc AuditOperation = "update_doc"
	AuditOpDeleteDoc AuditOperation = "delete_doc"
	AuditOpIngest    AuditOperation = "ingest"
)

// AuditEntry is an append-only record of a write tool call. The dispatcher
// writes one entry per mutating call, when the call returns, carrying its
// outcome; no entry is written before the call runs.
type AuditEntry struct {
	ID        string
	Timestamp time.Time
	Operation AuditOperation
	Path      string
	Success   bool
	ErrorMsg  string
}

// DocumentOperation records a single document-level mutation performed
// during an ingest or write-tool run, distinct from the coarser AuditEntry:
// it captures per-document changes (created/updated/removed), independent
// of which tool call triggered them. Unchanged documents get no record.
type DocumentOperation struct {
	ID        string
	Timestamp time.Time
	DocPath   string
	Kind      DocOpKind
	ErrorMsg  string
}

// DocOpKind enumerates the possible outcomes of processing one document
// during an ingest run.
type DocOpKind string

const (
	DocOpCreated   DocOpKind = "created"
	DocOpUpdated   DocOpKind = "updated"
	DocOpUnchanged DocOpKind = "unchanged"
	DocOpRemoved   DocOpKind = "removed"
	DocOpError     DocOpKind = "error"
)
