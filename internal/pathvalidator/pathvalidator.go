// Package pathvalidator confines every tool-driven write to a single
// corpus root, rejecting traversal and disallowed extensions before any
// file-system or database mutation happens.
package pathvalidator

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/dshills/ragmcp/internal/apperr"
)

// DefaultWritableExtensions is the allow-list of extensions a create_doc or
// update_doc call may target.
var DefaultWritableExtensions = []string{".md", ".markdown", ".txt", ".yaml", ".yml", ".json", ".xml"}

// Validator confines relative paths to a corpus root and a writable
// extension allow-list.
type Validator struct {
	Root               string
	WritableExtensions map[string]bool
}

// New builds a Validator rooted at root, using DefaultWritableExtensions
// unless extensions is non-empty.
func New(root string, extensions []string) (*Validator, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "resolve corpus root", err)
	}
	if len(extensions) == 0 {
		extensions = DefaultWritableExtensions
	}
	allow := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allow[strings.ToLower(ext)] = true
	}
	return &Validator{Root: absRoot, WritableExtensions: allow}, nil
}

// Result is the canonical (absolute filesystem path, relative index path)
// pair a validated write operation acts on.
type Result struct {
	AbsPath string
	RelPath string
}

// Validate rejects absolute paths, ".." segments, paths that escape Root
// after canonicalisation, and disallowed extensions. Failure is a hard
// error; there is no fallback path.
func (v *Validator) Validate(relPath string) (*Result, error) {
	if relPath == "" {
		return nil, apperr.New(apperr.InvalidInput, "path must not be empty")
	}
	if path.IsAbs(relPath) || filepath.IsAbs(relPath) {
		return nil, apperr.New(apperr.PathForbidden, "path must be relative to the corpus root")
	}

	clean := path.Clean(filepath.ToSlash(relPath))
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." {
			return nil, apperr.New(apperr.PathForbidden, "path must not contain \"..\" segments")
		}
	}

	absPath := filepath.Join(v.Root, filepath.FromSlash(clean))
	absPath, err := filepath.Abs(absPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "resolve absolute path", err)
	}
	if absPath != v.Root && !strings.HasPrefix(absPath, v.Root+string(filepath.Separator)) {
		return nil, apperr.New(apperr.PathForbidden, "path escapes the corpus root")
	}

	ext := strings.ToLower(filepath.Ext(clean))
	if !v.WritableExtensions[ext] {
		return nil, apperr.New(apperr.PathForbidden, "extension is not in the writable allow-list: "+ext)
	}

	return &Result{AbsPath: absPath, RelPath: clean}, nil
}
