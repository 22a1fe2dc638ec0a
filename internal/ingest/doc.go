// Package ingest walks a corpus root, parses and chunks every candidate
// document, and writes the result to the Store one document at a time so
// the index stays crash-consistent at document granularity.
//
// A single-document path (ProcessDocument) is exported separately from the
// batch walk (Ingester.Run) so the dispatcher's create_doc/update_doc tools
// can run the same parse -> chunk -> store -> relation-extract pipeline
// inline, immediately after a write, without going through a full corpus
// walk.
//
//	ig := ingest.New(st, ingest.Config{Root: "/corpus"})
//	report, err := ig.Run(ctx, ingest.Options{Force: false, Cleanup: true})
package ingest
