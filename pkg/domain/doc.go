// Package domain provides shared type definitions for the ragmcp retrieval engine.
//
// This package defines the entities persisted by the Store and passed between the
// Ingester, Chunker, Embedder, searchers and Fusion engine: documents, chunks,
// entity relations, and the three append-only log tables (query logs, audit entries,
// document operations).
//
// # Core types
//
// Document is identified by its path relative to the corpus root:
//
//	doc := &domain.Document{
//	    Path:      "Guides/auth.md",
//	    Namespace: "guides",
//	    Type:      domain.DocTypeMarkdown,
//	}
//
// Chunk belongs to exactly one Document and carries an optional dense embedding:
//
//	chunk := &domain.Chunk{
//	    DocID:         doc.ID,
//	    ChunkIndex:    0,
//	    Text:          "Use JWT tokens for authentication.",
//	    SectionHeader: "Authentication",
//	}
package domain
