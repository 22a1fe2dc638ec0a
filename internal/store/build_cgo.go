//go:build sqlite_vec

package store

// This file is compiled when building with CGO and the sqlite_vec tag. It
// registers the sqlite-vec extension with the driver; vector similarity
// search still uses the same full-scan cosine loop in vector_ops.go as the
// purego build.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_vec,fts5" ./...
//
// Driver used: github.com/mattn/go-sqlite3
// Vector extension: github.com/asg017/sqlite-vec-go-bindings/cgo

import (
	_ "github.com/mattn/go-sqlite3"
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

const (
	// DriverName is the SQLite driver to use.
	DriverName = "sqlite3"

	// VectorExtensionAvailable indicates the sqlite-vec extension was loaded.
	VectorExtensionAvailable = true

	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)

func init() {
	sqlite_vec.Auto()
}
