// Package source defines how Dockerfiles are located, read and how the
// resulting notebooks are persisted. Backends report a missing path as a
// not_found ConvertError so the CLI can show "Could not find path" instead of
// a raw I/O error.
package source

import (
	"context"
	"strings"

	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
	"git.home.luguber.info/inful/dockbook/internal/notebook"
)

// Info describes a resolved path.
type Info struct {
	Path  string
	IsDir bool
	Size  int64
}

// Reader resolves and reads source documents.
type Reader interface {
	// Stat resolves path. Returns a not_found error if it does not exist.
	Stat(ctx context.Context, path string) (Info, error)

	// ReadText returns the full UTF-8 content of path.
	ReadText(ctx context.Context, path string) (string, error)
}

// Writer persists converted notebooks.
type Writer interface {
	WriteDocument(ctx context.Context, path string, doc *notebook.Document) error
}

// Backend is a Reader and Writer sharing one namespace.
type Backend interface {
	Reader
	Writer
	Name() string
}

// dockerfileSuffix is matched case-insensitively against the file name.
const dockerfileSuffix = "dockerfile"

// CheckPath validates a user supplied path before anything is read and
// returns the normalized path.
//
// A trailing slash is trimmed, but then the path must name a directory, and
// directories are never accepted. Files must end in "Dockerfile" (any case),
// so both "Dockerfile" and "api.dockerfile" qualify.
func CheckPath(ctx context.Context, r Reader, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", cerrors.InvalidInputKind(path, "path is empty")
	}

	trailingSlash := path != "/" && strings.HasSuffix(path, "/")
	if trailingSlash {
		path = strings.TrimSuffix(path, "/")
	}

	info, err := r.Stat(ctx, path)
	if err != nil {
		return "", err
	}

	if trailingSlash && !info.IsDir {
		return "", cerrors.InvalidInputKind(path, "Path "+path+"/ is not a directory")
	}
	if info.IsDir {
		return "", cerrors.InvalidInputKind(path, "Path is a directory, not a Dockerfile")
	}
	if !strings.HasSuffix(strings.ToLower(path), dockerfileSuffix) {
		return "", cerrors.InvalidInputKind(path, "File must have extension 'Dockerfile'")
	}

	return path, nil
}

// OutputPath derives the notebook path from the source path.
func OutputPath(path, suffix string) string {
	return path + suffix
}
