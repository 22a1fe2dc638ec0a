package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ragmcp/internal/ingest"
	"github.com/dshills/ragmcp/internal/store"
)

func setupWatcherStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestWatcherReIngestsOnFileCreate(t *testing.T) {
	root := t.TempDir()
	st := setupWatcherStore(t)
	ig := ingest.New(st, ingest.Config{Root: root})

	w, err := New(root, ig, 50*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "note.md"), []byte("# hello"), 0o644))

	require.Eventually(t, func() bool {
		count, err := st.CountDocuments(context.Background())
		return err == nil && count == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcherWatchesNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	st := setupWatcherStore(t)
	ig := ingest.New(st, ingest.Config{Root: root})

	w, err := New(root, ig, 50*time.Millisecond)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	sub := filepath.Join(root, "guides")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(100 * time.Millisecond) // let the watcher pick up the new directory
	require.NoError(t, os.WriteFile(filepath.Join(sub, "auth.md"), []byte("# Auth"), 0o644))

	require.Eventually(t, func() bool {
		count, err := st.CountDocuments(context.Background())
		return err == nil && count == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestDefaultDebounceUsedWhenNonPositive(t *testing.T) {
	root := t.TempDir()
	st := setupWatcherStore(t)
	ig := ingest.New(st, ingest.Config{Root: root})

	w, err := New(root, ig, 0)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	assert.Equal(t, DefaultDebounce, w.Debounce)
}
