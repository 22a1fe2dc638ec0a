package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// migration represents one ordered, idempotent schema change, applied at
// startup in version order and recorded in schema_version.
type migration struct {
	Version string
	Up      string
	Down    string
}

// allMigrations enumerates migrations 001-006 referenced by spec.md §6:
// schema_version, documents, chunks with embedding BLOB plus FTS5 chunks_fts
// with sync triggers, entity_relations, query_logs, and
// document_operations plus audit_entries. Each migration creates its own
// indexes.
var allMigrations = []migration{
	{Version: "0.0.1", Up: migration001Up, Down: migration001Down},
	{Version: "0.0.2", Up: migration002Up, Down: migration002Down},
	{Version: "0.0.3", Up: migration003Up, Down: migration003Down},
	{Version: "0.0.4", Up: migration004Up, Down: migration004Down},
	{Version: "0.0.5", Up: migration005Up, Down: migration005Down},
	{Version: "0.0.6", Up: migration006Up, Down: migration006Down},
}

// 001: schema_version bookkeeping table.
const migration001Up = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`
const migration001Down = `DROP TABLE IF EXISTS schema_version;`

// 002: documents table.
const migration002Up = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    doc_type TEXT NOT NULL,
    namespace TEXT NOT NULL,
    agent_name TEXT,
    content_text TEXT NOT NULL,
    token_count INTEGER NOT NULL DEFAULT 0,
    file_hash TEXT NOT NULL,
    last_modified_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_namespace ON documents(namespace);
CREATE INDEX IF NOT EXISTS idx_documents_doc_type ON documents(doc_type);
CREATE INDEX IF NOT EXISTS idx_documents_agent ON documents(agent_name);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(file_hash);
`
const migration002Down = `DROP TABLE IF EXISTS documents;`

// 003: chunks table with embedding BLOB, plus chunks_fts and sync triggers.
const migration003Up = `
CREATE TABLE IF NOT EXISTS chunks (
    id TEXT PRIMARY KEY,
    doc_id TEXT NOT NULL,
    chunk_index INTEGER NOT NULL,
    chunk_text TEXT NOT NULL,
    token_count INTEGER NOT NULL DEFAULT 0,
    section_header TEXT,
    chunk_type TEXT,
    embedding BLOB,
    embedding_dim INTEGER,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (doc_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks(doc_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_chunks_doc_index ON chunks(doc_id, chunk_index);
CREATE INDEX IF NOT EXISTS idx_chunks_embedding_null ON chunks(id) WHERE embedding IS NULL;

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
    chunk_text, section_header,
    tokenize = 'porter unicode61',
    content = 'chunks',
    content_rowid = 'rowid'
);

CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
    INSERT INTO chunks_fts(rowid, chunk_text, section_header)
    VALUES (new.rowid, new.chunk_text, new.section_header);
END;

CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, chunk_text, section_header)
    VALUES ('delete', old.rowid, old.chunk_text, old.section_header);
END;

CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, chunk_text, section_header)
    VALUES ('delete', old.rowid, old.chunk_text, old.section_header);
    INSERT INTO chunks_fts(rowid, chunk_text, section_header)
    VALUES (new.rowid, new.chunk_text, new.section_header);
END;
`
const migration003Down = `
DROP TRIGGER IF EXISTS chunks_au;
DROP TRIGGER IF EXISTS chunks_ad;
DROP TRIGGER IF EXISTS chunks_ai;
DROP TABLE IF EXISTS chunks_fts;
DROP TABLE IF EXISTS chunks;
`

// 004: entity_relations (knowledge-graph triples).
const migration004Up = `
CREATE TABLE IF NOT EXISTS entity_relations (
    id TEXT PRIMARY KEY,
    source_entity TEXT NOT NULL,
    relation_type TEXT NOT NULL,
    target_entity TEXT NOT NULL,
    source_doc_id TEXT,
    source_chunk_id TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (source_doc_id) REFERENCES documents(id) ON DELETE CASCADE,
    FOREIGN KEY (source_chunk_id) REFERENCES chunks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_relations_source ON entity_relations(source_entity);
CREATE INDEX IF NOT EXISTS idx_relations_target ON entity_relations(target_entity);
CREATE INDEX IF NOT EXISTS idx_relations_type ON entity_relations(relation_type);
`
const migration004Down = `DROP TABLE IF EXISTS entity_relations;`

// 005: query_logs (append-only retrieval telemetry).
const migration005Up = `
CREATE TABLE IF NOT EXISTS query_logs (
    id TEXT PRIMARY KEY,
    ts TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    query_text TEXT NOT NULL,
    namespace TEXT,
    method TEXT NOT NULL,
    result_chunk_ids TEXT NOT NULL,
    latency_ms INTEGER NOT NULL,
    result_count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_query_logs_ts ON query_logs(ts);
`
const migration005Down = `DROP TABLE IF EXISTS query_logs;`

// 006: document_operations (per-document ingest outcomes) and audit_entries
// (per-write-tool-call audit trail), two distinct append-only logs per
// spec.md §3 and the original_source audit model.
const migration006Up = `
CREATE TABLE IF NOT EXISTS document_operations (
    id TEXT PRIMARY KEY,
    ts TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    doc_path TEXT NOT NULL,
    kind TEXT NOT NULL,
    error_msg TEXT
);

CREATE INDEX IF NOT EXISTS idx_document_operations_ts ON document_operations(ts);

CREATE TABLE IF NOT EXISTS audit_entries (
    id TEXT PRIMARY KEY,
    ts TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    operation TEXT NOT NULL,
    path TEXT NOT NULL,
    success INTEGER NOT NULL,
    error_msg TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_entries_ts ON audit_entries(ts);
`
const migration006Down = `
DROP TABLE IF EXISTS audit_entries;
DROP TABLE IF EXISTS document_operations;
`

// applyMigrations runs all pending migrations, one transaction per
// migration, recording each applied version in schema_version.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	var currentVersion *semver.Version
	switch {
	case err == sql.ErrNoRows:
		currentVersion = semver.MustParse("0.0.0")
	case err != nil:
		return fmt.Errorf("check schema_version table: %w", err)
	default:
		var currentVersionStr string
		err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersionStr)
		switch {
		case err == sql.ErrNoRows || currentVersionStr == "":
			currentVersion = semver.MustParse("0.0.0")
		case err != nil:
			return fmt.Errorf("read schema_version: %w", err)
		default:
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	for _, m := range allMigrations {
		migrationVersion, err := semver.NewVersion(m.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", m.Version, err)
		}
		if !currentVersion.LessThan(migrationVersion) {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version TEXT PRIMARY KEY, applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP)"); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("ensure schema_version table for migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}
