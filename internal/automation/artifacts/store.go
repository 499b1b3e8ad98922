// Package artifacts persists generated drafts and packages under the
// /<namespace>/<submissionId>/<category>/<fileName> path convention.
package artifacts

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned by Read for a path that was never written.
var ErrNotFound = errors.New("artifact not found")

// Categories separate user-facing output from internal working files.
const (
	CategoryDrafts   = "drafts"
	CategoryForms    = "forms"
	CategoryInternal = "internal"
	CategoryPackage  = "package"
)

// Store is the artifact storage collaborator. Writes overwrite silently;
// concurrent writers to one path race and the last write wins.
type Store interface {
	// Write stores data at p and returns the stored reference.
	Write(ctx context.Context, p string, data []byte) (string, error)
	// Read returns the bytes at p, or ErrNotFound.
	Read(ctx context.Context, p string) ([]byte, error)
	// Exists reports whether p has been written.
	Exists(ctx context.Context, p string) (bool, error)
}

// Path builds an artifact path from its four segments.
func Path(namespace, submissionID, category, fileName string) string {
	return "/" + strings.Join([]string{namespace, submissionID, category, fileName}, "/")
}

// FileName builds the {submissionId}_{name}.{ext} convention.
func FileName(submissionID, name, ext string) string {
	return submissionID + "_" + name + "." + strings.TrimPrefix(ext, ".")
}

// PackagePath is where the bundled filing package for a submission lives.
func PackagePath(namespace, submissionID string) string {
	return Path(namespace, submissionID, CategoryPackage, submissionID+"_package.zip")
}

// clean normalizes p to an absolute slash path.
func clean(p string) string {
	return path.Clean("/" + p)
}
