package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/ragmcp/pkg/domain"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")
)

// sqliteStore implements Store using SQLite's single-writer/many-reader
// discipline: writeDB holds exactly one connection, guarded by writeMu and
// driven through BEGIN IMMEDIATE, so a write never silently interleaves with
// another write; readDB is a pool of connections that read the WAL snapshot
// without contending for writeMu at all.
type sqliteStore struct {
	writeDB *sql.DB
	readDB  *sql.DB
	writeMu sync.Mutex
}

// Open opens (creating if necessary) a SQLite database at path and applies
// any pending migrations.
func Open(ctx context.Context, path string) (Store, error) {
	writeDB, readDB, err := openDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &sqliteStore{writeDB: writeDB, readDB: readDB}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// dsn resolves path to the driver DSN. ":memory:" is rewritten to a
// shared-cache URI so the separate write and read handles below see the
// same in-memory database instead of two independent empty ones.
func dsn(path string) string {
	if path == ":memory:" {
		return "file::memory:?cache=shared"
	}
	return path
}

func openDatabase(path string) (writeDB, readDB *sql.DB, err error) {
	d := dsn(path)

	writeDB, err = sql.Open(DriverName, d)
	if err != nil {
		return nil, nil, err
	}
	if err := pragma(writeDB); err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}
	// Exactly one writer connection: every other write waits on writeMu
	// before it even requests this handle, so BEGIN IMMEDIATE never blocks
	// behind a sibling write inside the driver's own pool.
	writeDB.SetMaxOpenConns(1)
	writeDB.SetMaxIdleConns(1)
	writeDB.SetConnMaxLifetime(0)

	readDB, err = sql.Open(DriverName, d)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, err
	}
	if err := pragma(readDB); err != nil {
		_ = writeDB.Close()
		_ = readDB.Close()
		return nil, nil, err
	}
	// A handful of read-only connections against the WAL snapshot; none of
	// them ever takes writeMu, so reads never wait on a write in flight.
	readDB.SetMaxOpenConns(4)
	readDB.SetMaxIdleConns(4)
	readDB.SetConnMaxLifetime(0)

	return writeDB, readDB, nil
}

func pragma(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	return nil
}

func (s *sqliteStore) Migrate(ctx context.Context) error {
	return applyMigrations(ctx, s.writeDB)
}

func (s *sqliteStore) Close() error {
	writeErr := s.writeDB.Close()
	readErr := s.readDB.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

// querier is implemented by *sql.DB, *sql.Conn, and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// withWriteTx serializes writers in process (writeMu) on top of the
// single-connection writeDB, then drives a real BEGIN IMMEDIATE … COMMIT
// around f, rolling back on error or panic. Every write operation, whether
// a single statement or a caller-supplied Transaction, goes through this.
func (s *sqliteStore) withWriteTx(ctx context.Context, f func(ctx context.Context, q querier) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn, err := s.writeDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire write connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin immediate: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_, _ = conn.ExecContext(ctx, "ROLLBACK")
			panic(p)
		}
	}()

	if err := f(ctx, conn); err != nil {
		_, _ = conn.ExecContext(ctx, "ROLLBACK")
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		_, _ = conn.ExecContext(ctx, "ROLLBACK")
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Transaction runs f inside BEGIN IMMEDIATE … COMMIT, matching the
// single-writer discipline: write operations acquire this exclusive handle
// and roll back atomically on any error or panic.
func (s *sqliteStore) Transaction(ctx context.Context, f func(ctx context.Context, tx Tx) error) error {
	return s.withWriteTx(ctx, func(ctx context.Context, q querier) error {
		return f(ctx, &sqliteTx{q: q})
	})
}

type sqliteTx struct {
	q querier
}

func (t *sqliteTx) querier() querier { return t.q }

func (t *sqliteTx) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	return upsertDocument(ctx, t.querier(), doc)
}
func (t *sqliteTx) DeleteDocumentByPath(ctx context.Context, relPath string) error {
	return deleteDocumentByPath(ctx, t.querier(), relPath)
}
func (t *sqliteTx) InsertChunk(ctx context.Context, chunk *domain.Chunk) error {
	return insertChunk(ctx, t.querier(), chunk)
}
func (t *sqliteTx) DeleteChunksByDoc(ctx context.Context, docID string) error {
	return deleteChunksByDoc(ctx, t.querier(), docID)
}
func (t *sqliteTx) InsertEntityRelation(ctx context.Context, rel *domain.EntityRelation) error {
	return insertEntityRelation(ctx, t.querier(), rel)
}
func (t *sqliteTx) InsertDocumentOperation(ctx context.Context, op *domain.DocumentOperation) error {
	return insertDocumentOperation(ctx, t.querier(), op)
}

// Document operations.

func upsertDocument(ctx context.Context, q querier, doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now()
	query := `
		INSERT INTO documents (id, path, doc_type, namespace, agent_name, content_text, token_count, file_hash, last_modified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			doc_type = excluded.doc_type,
			namespace = excluded.namespace,
			agent_name = excluded.agent_name,
			content_text = excluded.content_text,
			token_count = excluded.token_count,
			file_hash = excluded.file_hash,
			last_modified_at = excluded.last_modified_at,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRowContext(ctx, query,
		doc.ID, doc.Path, string(doc.Type), doc.Namespace, nullableString(doc.AgentName),
		doc.ContentText, doc.TokenCount, doc.FileHash, doc.LastModifiedAt, now, now,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (s *sqliteStore) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	return s.withWriteTx(ctx, func(ctx context.Context, q querier) error {
		return upsertDocument(ctx, q, doc)
	})
}

func scanDocument(row interface{ Scan(...any) error }) (*domain.Document, error) {
	var d domain.Document
	var agentName sql.NullString
	var lastModified sql.NullTime
	err := row.Scan(&d.ID, &d.Path, (*string)(&d.Type), &d.Namespace, &agentName,
		&d.ContentText, &d.TokenCount, &d.FileHash, &lastModified, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if agentName.Valid {
		d.AgentName = agentName.String
	}
	if lastModified.Valid {
		d.LastModifiedAt = lastModified.Time
	}
	return &d, nil
}

func (s *sqliteStore) GetDocumentByPath(ctx context.Context, relPath string) (*domain.Document, error) {
	query := `
		SELECT id, path, doc_type, namespace, agent_name, content_text, token_count, file_hash, last_modified_at, created_at, updated_at
		FROM documents WHERE path = ?
	`
	return scanDocument(s.readDB.QueryRowContext(ctx, query, relPath))
}

func deleteDocumentByPath(ctx context.Context, q querier, relPath string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, relPath)
	return err
}

func (s *sqliteStore) DeleteDocumentByPath(ctx context.Context, relPath string) error {
	return s.withWriteTx(ctx, func(ctx context.Context, q querier) error {
		return deleteDocumentByPath(ctx, q, relPath)
	})
}

func (s *sqliteStore) ListDocumentsByNamespace(ctx context.Context, namespace string) ([]*domain.Document, error) {
	query := `
		SELECT id, path, doc_type, namespace, agent_name, content_text, token_count, file_hash, last_modified_at, created_at, updated_at
		FROM documents WHERE namespace = ? ORDER BY path
	`
	rows, err := s.readDB.QueryContext(ctx, query, namespace)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *sqliteStore) ListStaleDocuments(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Document, error) {
	query := `
		SELECT id, path, doc_type, namespace, agent_name, content_text, token_count, file_hash, last_modified_at, created_at, updated_at
		FROM documents WHERE last_modified_at < ? ORDER BY last_modified_at ASC LIMIT ?
	`
	rows, err := s.readDB.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *sqliteStore) ListNamespaces(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, s.readDB, `SELECT DISTINCT namespace FROM documents ORDER BY namespace`)
}

func (s *sqliteStore) ListDocTypes(ctx context.Context) ([]domain.DocType, error) {
	strs, err := queryStrings(ctx, s.readDB, `SELECT DISTINCT doc_type FROM documents ORDER BY doc_type`)
	if err != nil {
		return nil, err
	}
	types := make([]domain.DocType, len(strs))
	for i, s := range strs {
		types[i] = domain.DocType(s)
	}
	return types, nil
}

func (s *sqliteStore) ListAgentNames(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, s.readDB, `SELECT DISTINCT agent_name FROM documents WHERE agent_name IS NOT NULL AND agent_name != '' ORDER BY agent_name`)
}

func queryStrings(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *sqliteStore) ExistingHashesByPath(ctx context.Context) (map[string]string, error) {
	rows, err := s.readDB.QueryContext(ctx, `SELECT path, file_hash FROM documents`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, err
		}
		out[path] = hash
	}
	return out, rows.Err()
}

func (s *sqliteStore) CountDocuments(ctx context.Context) (int, error) {
	return countRows(ctx, s.readDB, `SELECT COUNT(*) FROM documents`)
}

func countRows(ctx context.Context, q querier, query string, args ...any) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// Chunk operations.

func insertChunk(ctx context.Context, q querier, chunk *domain.Chunk) error {
	if chunk.ID == "" {
		chunk.ID = uuid.NewString()
	}
	now := time.Now()
	var embedding []byte
	var dim any
	if len(chunk.Embedding) > 0 {
		embedding = serializeVector(chunk.Embedding)
		dim = len(chunk.Embedding)
	}
	query := `
		INSERT INTO chunks (id, doc_id, chunk_index, chunk_text, token_count, section_header, chunk_type, embedding, embedding_dim, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		chunk.ID, chunk.DocID, chunk.ChunkIndex, chunk.Text, chunk.TokenCount,
		nullableString(chunk.SectionHeader), nullableString(string(chunk.ChunkType)),
		embedding, dim, now, now)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

func (s *sqliteStore) InsertChunk(ctx context.Context, chunk *domain.Chunk) error {
	return s.withWriteTx(ctx, func(ctx context.Context, q querier) error {
		return insertChunk(ctx, q, chunk)
	})
}

func scanChunk(row interface{ Scan(...any) error }) (*domain.Chunk, error) {
	var c domain.Chunk
	var section, chunkType sql.NullString
	var embedding []byte
	var dim sql.NullInt64
	err := row.Scan(&c.ID, &c.DocID, &c.ChunkIndex, &c.Text, &c.TokenCount, &section, &chunkType, &embedding, &dim)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if section.Valid {
		c.SectionHeader = section.String
	}
	if chunkType.Valid {
		c.ChunkType = domain.ChunkType(chunkType.String)
	}
	if len(embedding) > 0 {
		c.Embedding = deserializeVector(embedding)
	}
	return &c, nil
}

const chunkColumns = `id, doc_id, chunk_index, chunk_text, token_count, section_header, chunk_type, embedding, embedding_dim`

func (s *sqliteStore) GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	row := s.readDB.QueryRowContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, chunkID)
	return scanChunk(row)
}

func (s *sqliteStore) ListChunksByDoc(ctx context.Context, docID string) ([]*domain.Chunk, error) {
	rows, err := s.readDB.QueryContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE doc_id = ? ORDER BY chunk_index`, docID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []*domain.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func deleteChunksByDoc(ctx context.Context, q querier, docID string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, docID)
	return err
}

func (s *sqliteStore) DeleteChunksByDoc(ctx context.Context, docID string) error {
	return s.withWriteTx(ctx, func(ctx context.Context, q querier) error {
		return deleteChunksByDoc(ctx, q, docID)
	})
}

func (s *sqliteStore) ChunksMissingEmbedding(ctx context.Context, limit int) ([]*domain.Chunk, error) {
	rows, err := s.readDB.QueryContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE embedding IS NULL ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []*domain.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *sqliteStore) SetChunkEmbedding(ctx context.Context, chunkID string, vector []float32) error {
	return s.withWriteTx(ctx, func(ctx context.Context, q querier) error {
		_, err := q.ExecContext(ctx, `UPDATE chunks SET embedding = ?, embedding_dim = ?, updated_at = ? WHERE id = ?`,
			serializeVector(vector), len(vector), time.Now(), chunkID)
		return err
	})
}

func (s *sqliteStore) ListChunksPage(ctx context.Context, afterID string, limit int) ([]*domain.Chunk, error) {
	var rows *sql.Rows
	var err error
	if afterID == "" {
		rows, err = s.readDB.QueryContext(ctx, `SELECT `+chunkColumns+` FROM chunks ORDER BY id LIMIT ?`, limit)
	} else {
		rows, err = s.readDB.QueryContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE id > ? ORDER BY id LIMIT ?`, afterID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []*domain.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *sqliteStore) SetChunkEmbeddings(ctx context.Context, vectors map[string][]float32) error {
	return s.withWriteTx(ctx, func(ctx context.Context, q querier) error {
		for chunkID, vector := range vectors {
			if _, err := q.ExecContext(ctx,
				`UPDATE chunks SET embedding = ?, embedding_dim = ?, updated_at = ? WHERE id = ?`,
				serializeVector(vector), len(vector), time.Now(), chunkID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sqliteStore) CountChunks(ctx context.Context) (int, error) {
	return countRows(ctx, s.readDB, `SELECT COUNT(*) FROM chunks`)
}

func (s *sqliteStore) CountEmbeddings(ctx context.Context) (int, error) {
	return countRows(ctx, s.readDB, `SELECT COUNT(*) FROM chunks WHERE embedding IS NOT NULL`)
}

func (s *sqliteStore) HydrateChunks(ctx context.Context, chunkIDs []string) (map[string]*ChunkHydration, error) {
	out := make(map[string]*ChunkHydration)
	if len(chunkIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(chunkIDs))
	args := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := `
		SELECT c.id, d.path, d.namespace, c.section_header, c.chunk_text
		FROM chunks c JOIN documents d ON c.doc_id = d.id
		WHERE c.id IN (` + strings.Join(placeholders, ",") + `)
	`
	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var h ChunkHydration
		var section sql.NullString
		if err := rows.Scan(&h.ChunkID, &h.DocPath, &h.Namespace, &section, &h.ChunkText); err != nil {
			return nil, err
		}
		h.SectionHeader = section.String
		out[h.ChunkID] = &h
	}
	return out, rows.Err()
}

// Entity relations.

func insertEntityRelation(ctx context.Context, q querier, rel *domain.EntityRelation) error {
	if rel.ID == "" {
		rel.ID = uuid.NewString()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO entity_relations (id, source_entity, relation_type, target_entity, source_doc_id, source_chunk_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rel.ID, rel.SourceEntity, rel.RelationType, rel.TargetEntity,
		nullableString(rel.SourceDocID), nullableString(rel.SourceChunkID), time.Now())
	return err
}

func (s *sqliteStore) InsertEntityRelation(ctx context.Context, rel *domain.EntityRelation) error {
	return s.withWriteTx(ctx, func(ctx context.Context, q querier) error {
		return insertEntityRelation(ctx, q, rel)
	})
}

func (s *sqliteStore) RelationsFrom(ctx context.Context, entity string, relationTypes []string) ([]*domain.EntityRelation, error) {
	query := `SELECT id, source_entity, relation_type, target_entity, source_doc_id, source_chunk_id FROM entity_relations WHERE source_entity = ?`
	args := []any{entity}
	if len(relationTypes) > 0 {
		placeholders := make([]string, len(relationTypes))
		for i, rt := range relationTypes {
			placeholders[i] = "?"
			args = append(args, rt)
		}
		query += ` AND relation_type IN (` + strings.Join(placeholders, ",") + `)`
	}
	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rels []*domain.EntityRelation
	for rows.Next() {
		var r domain.EntityRelation
		var docID, chunkID sql.NullString
		if err := rows.Scan(&r.ID, &r.SourceEntity, &r.RelationType, &r.TargetEntity, &docID, &chunkID); err != nil {
			return nil, err
		}
		r.SourceDocID = docID.String
		r.SourceChunkID = chunkID.String
		rels = append(rels, &r)
	}
	return rels, rows.Err()
}

// Logs.

func (s *sqliteStore) InsertQueryLog(ctx context.Context, log *domain.QueryLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	return s.withWriteTx(ctx, func(ctx context.Context, q querier) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO query_logs (id, ts, query_text, namespace, method, result_chunk_ids, latency_ms, result_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, log.ID, log.Timestamp, log.QueryText, log.Namespace, string(log.Method),
			strings.Join(log.ResultChunkIDs, ","), log.LatencyMS, log.ResultCount)
		return err
	})
}

func insertDocumentOperation(ctx context.Context, q querier, op *domain.DocumentOperation) error {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO document_operations (id, ts, doc_path, kind, error_msg)
		VALUES (?, ?, ?, ?, ?)
	`, op.ID, op.Timestamp, op.DocPath, string(op.Kind), nullableString(op.ErrorMsg))
	return err
}

func (s *sqliteStore) InsertDocumentOperation(ctx context.Context, op *domain.DocumentOperation) error {
	return s.withWriteTx(ctx, func(ctx context.Context, q querier) error {
		return insertDocumentOperation(ctx, q, op)
	})
}

func (s *sqliteStore) InsertAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	success := 0
	if entry.Success {
		success = 1
	}
	return s.withWriteTx(ctx, func(ctx context.Context, q querier) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO audit_entries (id, ts, operation, path, success, error_msg)
			VALUES (?, ?, ?, ?, ?, ?)
		`, entry.ID, entry.Timestamp, string(entry.Operation), entry.Path, success, nullableString(entry.ErrorMsg))
		return err
	})
}

// Status.

func (s *sqliteStore) Status(ctx context.Context) (*Status, error) {
	docs, err := s.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}
	chunks, err := s.CountChunks(ctx)
	if err != nil {
		return nil, err
	}
	embeddings, err := s.CountEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	nsCounts := make(map[string]int)
	rows, err := s.readDB.QueryContext(ctx, `SELECT namespace, COUNT(*) FROM documents GROUP BY namespace`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var ns string
		var n int
		if err := rows.Scan(&ns, &n); err != nil {
			_ = rows.Close()
			return nil, err
		}
		nsCounts[ns] = n
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var pageCount, pageSize int
	_ = s.readDB.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	_ = s.readDB.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)

	var lastIngest sql.NullTime
	_ = s.readDB.QueryRowContext(ctx, `SELECT ts FROM document_operations ORDER BY ts DESC LIMIT 1`).Scan(&lastIngest)

	return &Status{
		DocumentsCount:  docs,
		ChunksCount:     chunks,
		EmbeddingsCount: embeddings,
		NamespaceCounts: nsCounts,
		IndexSizeMB:     float64(pageCount*pageSize) / (1024 * 1024),
		LastIngestAt:    lastIngest.Time,
		Health: HealthStatus{
			DatabaseAccessible: true,
			FTSIndexesBuilt:    true,
		},
	}, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
