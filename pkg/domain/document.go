package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"
	"time"
)

// DocType tags a document by its parsed format, inferred from file extension.
type DocType string

const (
	DocTypeMarkdown  DocType = "markdown"
	DocTypeXML       DocType = "xml"
	DocTypeYAML      DocType = "yaml"
	DocTypeJSON      DocType = "json"
	DocTypePlainText DocType = "plaintext"
)

// NamespaceAll is the sentinel namespace for root-level documents.
const NamespaceAll = "all"

// Document is the unit of ingestion: one file under the corpus root.
//
// Identity is the path relative to the corpus root, which must be unique.
type Document struct {
	ID            string
	Path          string // relative to corpus root, canonical, no ".." or leading "/"
	Type          DocType
	Namespace     string
	AgentName     string // heuristic, derived from path; empty if none
	ContentText   string
	TokenCount    int
	FileHash      string // hex-encoded SHA-256 of ContentText
	LastModifiedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidatePath checks that Path is relative and canonical.
func (d *Document) ValidatePath() error {
	if d.Path == "" {
		return errors.New("document path cannot be empty")
	}
	if strings.HasPrefix(d.Path, "/") {
		return errors.New("document path must be relative")
	}
	clean := path.Clean(d.Path)
	if clean != d.Path {
		return errors.New("document path must be canonical")
	}
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." {
			return errors.New("document path must not contain ..")
		}
	}
	return nil
}

// ComputeFileHash sets FileHash to the hex-encoded SHA-256 of ContentText.
func (d *Document) ComputeFileHash() string {
	sum := sha256.Sum256([]byte(d.ContentText))
	d.FileHash = hex.EncodeToString(sum[:])
	return d.FileHash
}

// VerifyFileHash reports whether FileHash matches the current ContentText.
func (d *Document) VerifyFileHash() bool {
	sum := sha256.Sum256([]byte(d.ContentText))
	return d.FileHash == hex.EncodeToString(sum[:])
}

// Validate performs comprehensive validation of the document.
func (d *Document) Validate() error {
	if err := d.ValidatePath(); err != nil {
		return err
	}
	if err := d.ValidateType(); err != nil {
		return err
	}
	if d.Namespace == "" {
		return errors.New("namespace is required")
	}
	return nil
}

// ValidateType checks that Type is one of the recognised parser formats.
func (d *Document) ValidateType() error {
	switch d.Type {
	case DocTypeMarkdown, DocTypeXML, DocTypeYAML, DocTypeJSON, DocTypePlainText:
		return nil
	default:
		return errors.New("invalid document type")
	}
}

// NamespaceFor derives the namespace from a relative path: the first path
// segment, lowercased, or NamespaceAll for root-level files.
func NamespaceFor(relPath string) string {
	clean := path.Clean(relPath)
	idx := strings.IndexByte(clean, '/')
	if idx < 0 {
		return NamespaceAll
	}
	return strings.ToLower(clean[:idx])
}

// AgentNameFor derives the optional agent name from a relative path: the
// second path segment, for any path nested at least three segments deep
// ("top/sub/file.ext" -> "sub"). Returns "" when the path has fewer than
// two directory levels; the name is informational and not tied to any
// particular top-level directory.
func AgentNameFor(relPath string) string {
	normalized := strings.ReplaceAll(relPath, "\\", "/")
	segments := strings.Split(normalized, "/")
	filtered := segments[:0:0]
	for _, s := range segments {
		if s != "" {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) < 3 {
		return ""
	}
	return strings.TrimSpace(filtered[1])
}

// TypeForExtension infers a DocType from a file extension (including the dot).
func TypeForExtension(ext string) DocType {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return DocTypeMarkdown
	case ".xml":
		return DocTypeXML
	case ".yaml", ".yml":
		return DocTypeYAML
	case ".json":
		return DocTypeJSON
	default:
		return DocTypePlainText
	}
}
