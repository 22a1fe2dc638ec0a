//go:build purego || !sqlite_vec

package store

// This file is compiled when building without the sqlite_vec tag or with
// the purego tag.
// Vector similarity falls back to a full-scan cosine loop in vector_ops.go.
//
// Build command:
//   CGO_ENABLED=0 go build -tags "purego" ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use.
	DriverName = "sqlite"

	// VectorExtensionAvailable indicates the sqlite-vec extension was loaded.
	VectorExtensionAvailable = false

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
