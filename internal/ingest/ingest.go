package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/ragmcp/internal/apperr"
	"github.com/dshills/ragmcp/internal/chunker"
	"github.com/dshills/ragmcp/internal/graph"
	"github.com/dshills/ragmcp/internal/parsers"
	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

// DefaultExtensions is the allow-list of file extensions the corpus walk
// considers, matching the parser formats internal/parsers understands.
// Kept in sync with the writable allow-list internal/pathvalidator enforces
// for write tools.
var DefaultExtensions = []string{".md", ".markdown", ".txt", ".yaml", ".yml", ".json", ".xml"}

// Config is the static, per-corpus configuration for an Ingester.
type Config struct {
	Root       string
	Extensions []string
	Workers    int
}

// Options controls one Run invocation.
type Options struct {
	Force   bool
	Cleanup bool
}

// Report summarises one Run invocation, matching the ingest contract's
// IngestReport shape.
type Report struct {
	Scanned       int
	Created       int
	Updated       int
	Unchanged     int
	Removed       int
	Errors        int
	ErrorMessages []string
}

// Ingester walks a corpus root, parses and chunks each candidate document,
// and writes the result to the Store one document at a time.
type Ingester struct {
	Store   store.Store
	Parsers *parsers.Registry
	Chunker *chunker.Chunker
	Config  Config

	lock Lock
}

// New builds an Ingester over st, applying DefaultExtensions when cfg omits
// an extension allow-list.
func New(st store.Store, cfg Config) *Ingester {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Ingester{
		Store:   st,
		Parsers: parsers.NewRegistry(),
		Chunker: chunker.New(),
		Config:  cfg,
	}
}

// Run walks Config.Root, incrementally ingesting every candidate document
// and, when opts.Cleanup is set, deleting documents whose path no longer
// exists on disk. Only one Run of this Ingester may be in flight at a time;
// a second concurrent call fails at once.
func (ig *Ingester) Run(ctx context.Context, opts Options) (*Report, error) {
	if !ig.lock.TryAcquire() {
		return nil, apperr.New(apperr.Internal, "an ingest run is already in progress")
	}
	defer ig.lock.Release()

	files, err := ig.discoverFiles()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "walk corpus root", err)
	}

	existingHashes, err := ig.Store.ExistingHashesByPath(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreError, "load existing document hashes", err)
	}

	report := &Report{Scanned: len(files)}
	var mu sync.Mutex

	workers := ig.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	semaphore := make(chan struct{}, workers)
	group, gctx := errgroup.WithContext(ctx)

	for _, relPath := range files {
		relPath := relPath
		group.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			kind, procErr := ig.processCandidate(gctx, relPath, existingHashes, opts.Force)

			mu.Lock()
			defer mu.Unlock()
			if procErr != nil {
				if appErr, ok := apperr.As(procErr); ok && appErr.Code == apperr.StoreError {
					return procErr
				}
				report.Errors++
				report.ErrorMessages = append(report.ErrorMessages, fmt.Sprintf("%s: %v", relPath, procErr))
				return nil
			}
			switch kind {
			case domain.DocOpCreated:
				report.Created++
			case domain.DocOpUpdated:
				report.Updated++
			case domain.DocOpUnchanged:
				report.Unchanged++
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return report, apperr.Wrap(apperr.StoreError, "ingest run", err)
	}

	if opts.Cleanup {
		removed, err := ig.cleanupRemoved(ctx, existingHashes, files)
		if err != nil {
			return report, apperr.Wrap(apperr.StoreError, "cleanup removed documents", err)
		}
		report.Removed = removed
	}

	return report, nil
}

// discoverFiles walks Config.Root, skipping hidden directories, and returns
// every candidate path (relative to Root) whose extension is in
// Config.Extensions. Binary files are filtered later, once their content
// has actually been read.
func (ig *Ingester) discoverFiles() ([]string, error) {
	allow := make(map[string]bool, len(ig.Config.Extensions))
	for _, ext := range ig.Config.Extensions {
		allow[strings.ToLower(ext)] = true
	}

	var files []string
	err := filepath.WalkDir(ig.Config.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != ig.Config.Root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !allow[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		rel, err := filepath.Rel(ig.Config.Root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}

// processCandidate reads, hashes, and (if needed) parses, chunks, and
// writes one candidate document. A hash match against an unforced run
// yields DocOpUnchanged without touching the Store.
func (ig *Ingester) processCandidate(ctx context.Context, relPath string, existingHashes map[string]string, force bool) (domain.DocOpKind, error) {
	absPath := filepath.Join(ig.Config.Root, filepath.FromSlash(relPath))
	content, err := os.ReadFile(absPath)
	if err != nil {
		return domain.DocOpError, fmt.Errorf("read %s: %w", relPath, err)
	}
	if parsers.LooksBinary(content) {
		return "", nil
	}

	hash := hashContent(content)
	existingHash, existed := existingHashes[relPath]
	if existed && existingHash == hash && !force {
		return domain.DocOpUnchanged, nil
	}

	kind := domain.DocOpCreated
	if existed {
		kind = domain.DocOpUpdated
	}

	if err := ig.writeDocument(ctx, relPath, content, hash, kind, ""); err != nil {
		return domain.DocOpError, err
	}
	return kind, nil
}

// ProcessOptions customizes a single ProcessDocument call.
type ProcessOptions struct {
	// DocTypeOverride, if non-empty and one of the recognised DocType
	// values, replaces the extension-derived type (the create_doc tool's
	// optional doc_type argument).
	DocTypeOverride domain.DocType
}

// ProcessDocument runs the full parse -> chunk -> store -> relation-extract
// pipeline for a single document outside of a corpus walk, so a write
// tool's freshly written content is immediately searchable. It does not
// acquire Lock: a single-document write is expected to race safely with an
// in-flight Run, each operating on a disjoint document.
func (ig *Ingester) ProcessDocument(ctx context.Context, relPath string, content []byte, opts ProcessOptions) (domain.DocOpKind, error) {
	if parsers.LooksBinary(content) {
		return domain.DocOpError, apperr.New(apperr.InvalidInput, "document content looks binary")
	}

	hash := hashContent(content)
	existing, err := ig.Store.GetDocumentByPath(ctx, relPath)
	existed := true
	if errors.Is(err, store.ErrNotFound) {
		existed = false
	} else if err != nil {
		return domain.DocOpError, apperr.Wrap(apperr.StoreError, "look up existing document", err)
	}

	kind := domain.DocOpCreated
	if existed {
		if existing.FileHash == hash {
			return domain.DocOpUnchanged, nil
		}
		kind = domain.DocOpUpdated
	}

	if err := ig.writeDocument(ctx, relPath, content, hash, kind, opts.DocTypeOverride); err != nil {
		return domain.DocOpError, err
	}
	return kind, nil
}

// writeDocument parses, chunks, and commits one document's content inside a
// single write transaction: the document row, its full chunk set (old
// chunks cascade-deleted first), any extracted entity relations, and the
// document-operation audit record.
func (ig *Ingester) writeDocument(ctx context.Context, relPath string, content []byte, hash string, kind domain.DocOpKind, docTypeOverride domain.DocType) error {
	text := string(content)
	ext := filepath.Ext(relPath)
	parsed, err := ig.Parsers.Parse(text, relPath, ext)
	if err != nil {
		return apperr.Wrap(apperr.ParseError, "parse "+relPath, err)
	}
	chunks := ig.Chunker.ChunkDocument(parsed)

	docType := domain.TypeForExtension(ext)
	if docTypeOverride != "" {
		docType = docTypeOverride
	}

	doc := &domain.Document{
		Path:           relPath,
		Type:           docType,
		Namespace:      domain.NamespaceFor(relPath),
		AgentName:      domain.AgentNameFor(relPath),
		ContentText:    text,
		TokenCount:     domain.EstimateTokenCount(text),
		FileHash:       hash,
		LastModifiedAt: time.Now(),
	}

	err = ig.Store.Transaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.UpsertDocument(ctx, doc); err != nil {
			return fmt.Errorf("upsert document: %w", err)
		}
		if err := tx.DeleteChunksByDoc(ctx, doc.ID); err != nil {
			return fmt.Errorf("delete stale chunks: %w", err)
		}
		for _, chunk := range chunks {
			chunk.DocID = doc.ID
			if err := tx.InsertChunk(ctx, chunk); err != nil {
				return fmt.Errorf("insert chunk: %w", err)
			}
			for _, rel := range graph.ExtractFromChunk(doc.ID, chunk) {
				rel := rel
				if err := tx.InsertEntityRelation(ctx, &rel); err != nil {
					return fmt.Errorf("insert entity relation: %w", err)
				}
			}
		}
		return tx.InsertDocumentOperation(ctx, &domain.DocumentOperation{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			DocPath:   relPath,
			Kind:      kind,
		})
	})
	if err != nil {
		// Store-layer failures are fatal to the run, unlike a parser error
		// on a single document; the caller distinguishes by apperr.Code.
		return apperr.Wrap(apperr.StoreError, "write document "+relPath, err)
	}
	return nil
}

// cleanupRemoved deletes every document whose path is in existingHashes but
// absent from the current walk, one document per transaction.
func (ig *Ingester) cleanupRemoved(ctx context.Context, existingHashes map[string]string, files []string) (int, error) {
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}

	removed := 0
	for relPath := range existingHashes {
		if present[relPath] {
			continue
		}
		err := ig.Store.Transaction(ctx, func(ctx context.Context, tx store.Tx) error {
			if err := tx.DeleteDocumentByPath(ctx, relPath); err != nil {
				return err
			}
			return tx.InsertDocumentOperation(ctx, &domain.DocumentOperation{
				ID:        uuid.NewString(),
				Timestamp: time.Now(),
				DocPath:   relPath,
				Kind:      domain.DocOpRemoved,
			})
		})
		if err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
