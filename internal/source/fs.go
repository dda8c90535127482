package source

import (
	"context"
	"fmt"
	"os"

	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
	"git.home.luguber.info/inful/dockbook/internal/notebook"
)

// FSBackend reads Dockerfiles from and writes notebooks to the local filesystem.
type FSBackend struct {
	indent int
}

// NewFSBackend creates a filesystem backend writing notebooks with the given
// JSON indent (0 for compact output).
func NewFSBackend(indent int) *FSBackend {
	return &FSBackend{indent: indent}
}

func (fs *FSBackend) Name() string { return "fs" }

// Stat resolves path on disk.
func (fs *FSBackend) Stat(ctx context.Context, path string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, cerrors.ResourceNotFound(path, err)
		}
		return Info{}, cerrors.ReadFailed(path, err)
	}
	return Info{Path: path, IsDir: fi.IsDir(), Size: fi.Size()}, nil
}

// ReadText reads the whole file.
func (fs *FSBackend) ReadText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// #nosec G304 - path was validated by CheckPath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", cerrors.ResourceNotFound(path, err)
		}
		return "", cerrors.ReadFailed(path, err)
	}
	return string(data), nil
}

// WriteDocument encodes doc and replaces path with it.
func (fs *FSBackend) WriteDocument(ctx context.Context, path string, doc *notebook.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := notebook.Marshal(doc, fs.indent)
	if err != nil {
		return cerrors.InternalError("encode notebook", err)
	}
	// #nosec G306 - notebooks are meant to be readable by the notebook server
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return cerrors.WriteFailed(path, fmt.Errorf("write file: %w", err))
	}
	return nil
}
