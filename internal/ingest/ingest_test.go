package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ragmcp/internal/store"
	"github.com/dshills/ragmcp/pkg/domain"
)

func setupIngestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func writeCorpusFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	abs := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func TestRun_CreatesNewDocumentsAndChunks(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "guides/auth.md", "# Authentication\n\nUse JWT tokens for authentication.")
	writeCorpusFile(t, root, "readme.md", "Top level readme content.")

	st := setupIngestStore(t)
	ig := New(st, Config{Root: root})

	report, err := ig.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 2, report.Created)
	assert.Zero(t, report.Errors)

	count, err := st.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	doc, err := st.GetDocumentByPath(context.Background(), "guides/auth.md")
	require.NoError(t, err)
	assert.Equal(t, "guides", doc.Namespace)
	assert.True(t, doc.VerifyFileHash())
}

func TestRun_SecondRunSkipsUnchangedFiles(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "notes.md", "unchanged content")

	st := setupIngestStore(t)
	ig := New(st, Config{Root: root})

	_, err := ig.Run(context.Background(), Options{})
	require.NoError(t, err)

	report, err := ig.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Unchanged)
	assert.Zero(t, report.Created)
}

func TestRun_ForceReprocessesUnchangedFiles(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "notes.md", "unchanged content")

	st := setupIngestStore(t)
	ig := New(st, Config{Root: root})

	_, err := ig.Run(context.Background(), Options{})
	require.NoError(t, err)

	report, err := ig.Run(context.Background(), Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
}

func TestRun_ChangedFileReplacesChunks(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "notes.md", "first version of the content")

	st := setupIngestStore(t)
	ig := New(st, Config{Root: root})

	_, err := ig.Run(context.Background(), Options{})
	require.NoError(t, err)
	doc, err := st.GetDocumentByPath(context.Background(), "notes.md")
	require.NoError(t, err)
	chunksBefore, err := st.ListChunksByDoc(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, chunksBefore, 1)

	writeCorpusFile(t, root, "notes.md", "a substantially different second version")
	report, err := ig.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	chunksAfter, err := st.ListChunksByDoc(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, chunksAfter, 1)
	assert.Contains(t, chunksAfter[0].Text, "substantially different")
}

func TestRun_CleanupRemovesDeletedFiles(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "stale.md", "will be deleted from disk")

	st := setupIngestStore(t)
	ig := New(st, Config{Root: root})

	_, err := ig.Run(context.Background(), Options{})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "stale.md")))

	report, err := ig.Run(context.Background(), Options{Cleanup: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Removed)

	count, err := st.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRun_WithoutCleanupKeepsDeletedFiles(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "stale.md", "will be deleted from disk")

	st := setupIngestStore(t)
	ig := New(st, Config{Root: root})

	_, err := ig.Run(context.Background(), Options{})
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, "stale.md")))

	report, err := ig.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Zero(t, report.Removed)

	count, err := st.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRun_SkipsBinaryFilesSilently(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "data.json", `{"a": 1}`)
	abs := filepath.Join(root, "binary.json")
	require.NoError(t, os.WriteFile(abs, []byte{0x00, 0x01, 0x02, 0x7b}, 0o644))

	st := setupIngestStore(t)
	ig := New(st, Config{Root: root})

	report, err := ig.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Created)

	count, err := st.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRun_ZeroContentDocumentStillPersistsWithoutChunks(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "empty.md", "   \n\n  ")

	st := setupIngestStore(t)
	ig := New(st, Config{Root: root})

	report, err := ig.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	doc, err := st.GetDocumentByPath(context.Background(), "empty.md")
	require.NoError(t, err)
	chunks, err := st.ListChunksByDoc(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestProcessDocument_CreatesThenUpdatesInline(t *testing.T) {
	st := setupIngestStore(t)
	ig := New(st, Config{Root: t.TempDir()})

	kind, err := ig.ProcessDocument(context.Background(), "inline/doc.md", []byte("initial content here"), ProcessOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.DocOpCreated, kind)

	kind, err = ig.ProcessDocument(context.Background(), "inline/doc.md", []byte("initial content here"), ProcessOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.DocOpUnchanged, kind)

	kind, err = ig.ProcessDocument(context.Background(), "inline/doc.md", []byte("revised content here"), ProcessOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.DocOpUpdated, kind)
}

func TestProcessDocument_DerivesAgentNameFromSecondSegment(t *testing.T) {
	st := setupIngestStore(t)
	ig := New(st, Config{Root: t.TempDir()})

	_, err := ig.ProcessDocument(context.Background(), "agents/router/prompt.md", []byte("route to the billing agent"), ProcessOptions{})
	require.NoError(t, err)

	doc, err := st.GetDocumentByPath(context.Background(), "agents/router/prompt.md")
	require.NoError(t, err)
	assert.Equal(t, "router", doc.AgentName)
	assert.Equal(t, "agents", doc.Namespace)
}

func TestProcessDocument_DocTypeOverrideReplacesExtensionInference(t *testing.T) {
	st := setupIngestStore(t)
	ig := New(st, Config{Root: t.TempDir()})

	_, err := ig.ProcessDocument(context.Background(), "notes/plain.txt", []byte("some content"), ProcessOptions{DocTypeOverride: domain.DocTypeMarkdown})
	require.NoError(t, err)

	doc, err := st.GetDocumentByPath(context.Background(), "notes/plain.txt")
	require.NoError(t, err)
	assert.Equal(t, domain.DocTypeMarkdown, doc.Type)
}

func TestRun_ConcurrentLockRejectsOverlappingRun(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "a.md", "content a")

	st := setupIngestStore(t)
	ig := New(st, Config{Root: root})
	require.True(t, ig.lock.TryAcquire())
	defer ig.lock.Release()

	_, err := ig.Run(context.Background(), Options{})
	require.Error(t, err)
}
