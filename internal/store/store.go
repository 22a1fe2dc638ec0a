// Package store provides SQLite-backed persistence for documents, chunks,
// entity relations, and the query-log/audit-log/document-operation tables,
// with an FTS5 virtual table kept in lockstep by triggers.
//
// A Store is opened once per process and shared: writes go through a single
// exclusive handle (BEGIN IMMEDIATE) while reads use a pool of read-only
// connections against the WAL snapshot, per the single-writer/many-reader
// discipline described for this system.
//
//	st, err := store.Open(ctx, "ragmcp.db")
//	if err != nil { ... }
//	defer st.Close()
//	if err := st.Migrate(ctx); err != nil { ... }
package store

import (
	"context"
	"time"

	"github.com/dshills/ragmcp/pkg/domain"
)

// Store is the persistence contract used by every other component.
type Store interface {
	// Migrate applies any unapplied migrations in version order.
	Migrate(ctx context.Context) error

	// Transaction runs f inside a single write transaction (BEGIN IMMEDIATE);
	// it rolls back on any error returned by f or any panic.
	Transaction(ctx context.Context, f func(ctx context.Context, tx Tx) error) error

	// Document operations.
	UpsertDocument(ctx context.Context, doc *domain.Document) error
	GetDocumentByPath(ctx context.Context, relPath string) (*domain.Document, error)
	DeleteDocumentByPath(ctx context.Context, relPath string) error
	ListDocumentsByNamespace(ctx context.Context, namespace string) ([]*domain.Document, error)
	ListNamespaces(ctx context.Context) ([]string, error)
	ListDocTypes(ctx context.Context) ([]domain.DocType, error)
	ListAgentNames(ctx context.Context) ([]string, error)
	ExistingHashesByPath(ctx context.Context) (map[string]string, error)
	CountDocuments(ctx context.Context) (int, error)
	// ListStaleDocuments returns documents whose last_modified_at is older
	// than cutoff, oldest first, capped at limit. Used by the explain tool's
	// freshness report.
	ListStaleDocuments(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Document, error)

	// Chunk operations.
	InsertChunk(ctx context.Context, chunk *domain.Chunk) error
	GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error)
	ListChunksByDoc(ctx context.Context, docID string) ([]*domain.Chunk, error)
	DeleteChunksByDoc(ctx context.Context, docID string) error
	ChunksMissingEmbedding(ctx context.Context, limit int) ([]*domain.Chunk, error)
	// ListChunksPage returns up to limit chunks ordered by id, starting
	// strictly after afterID (empty string starts from the beginning). Used
	// by embed_missing's force path, which must walk every chunk once
	// regardless of embedding state.
	ListChunksPage(ctx context.Context, afterID string, limit int) ([]*domain.Chunk, error)
	SetChunkEmbedding(ctx context.Context, chunkID string, vector []float32) error
	// SetChunkEmbeddings writes every (chunkID, vector) pair in vectors
	// inside one transaction, so a page embedded by the Embedder is
	// committed atomically.
	SetChunkEmbeddings(ctx context.Context, vectors map[string][]float32) error
	CountChunks(ctx context.Context) (int, error)
	CountEmbeddings(ctx context.Context) (int, error)

	// Search.
	SearchText(ctx context.Context, query string, filters domain.SearchFilters, k int) ([]domain.RankedChunk, error)
	SearchVector(ctx context.Context, vector []float32, filters domain.SearchFilters, k int) ([]domain.RankedChunk, error)
	HydrateChunks(ctx context.Context, chunkIDs []string) (map[string]*ChunkHydration, error)

	// Entity relations.
	InsertEntityRelation(ctx context.Context, rel *domain.EntityRelation) error
	RelationsFrom(ctx context.Context, entity string, relationTypes []string) ([]*domain.EntityRelation, error)

	// Append-only logs.
	InsertQueryLog(ctx context.Context, log *domain.QueryLog) error
	InsertAuditEntry(ctx context.Context, entry *domain.AuditEntry) error
	InsertDocumentOperation(ctx context.Context, op *domain.DocumentOperation) error

	// Status / health.
	Status(ctx context.Context) (*Status, error)

	Close() error
}

// Tx is a Store bound to a single in-flight write transaction; it exposes
// the same typed access methods as Store but all operations participate in
// the same BEGIN IMMEDIATE … COMMIT.
type Tx interface {
	UpsertDocument(ctx context.Context, doc *domain.Document) error
	DeleteDocumentByPath(ctx context.Context, relPath string) error
	InsertChunk(ctx context.Context, chunk *domain.Chunk) error
	DeleteChunksByDoc(ctx context.Context, docID string) error
	InsertEntityRelation(ctx context.Context, rel *domain.EntityRelation) error
	InsertDocumentOperation(ctx context.Context, op *domain.DocumentOperation) error
}

// ChunkHydration is the joined document+chunk view the Fusion engine needs
// to build a domain.SearchResult without a second round trip.
type ChunkHydration struct {
	ChunkID       string
	DocPath       string
	Namespace     string
	SectionHeader string
	ChunkText     string
}

// Status reports aggregate counts and basic health signals, mirroring the
// teacher's ProjectStatus/HealthStatus shape generalised to a single corpus.
type Status struct {
	DocumentsCount  int
	ChunksCount     int
	EmbeddingsCount int
	NamespaceCounts map[string]int
	IndexSizeMB     float64
	LastIngestAt    time.Time
	Health          HealthStatus
}

// HealthStatus reports whether the database and its derived indexes are in
// a usable state.
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexesBuilt    bool
}
