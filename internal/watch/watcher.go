// Package watch re-imports a Dockerfile whenever it changes on disk.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/dockbook/internal/importer"
	"git.home.luguber.info/inful/dockbook/internal/logfields"
)

// DefaultDebounce is used when no debounce interval is configured.
const DefaultDebounce = 500 * time.Millisecond

// Importer is the part of importer.Service the watcher needs.
type Importer interface {
	Import(ctx context.Context, path string, opts importer.Options) (*importer.Result, error)
}

// Watcher monitors one Dockerfile and re-imports it after changes settle.
// Imports run serially on the goroutine calling Run.
type Watcher struct {
	path     string
	importer Importer
	opts     importer.Options
	debounce time.Duration
	onImport func(*importer.Result, error)

	lastHash string
	opened   bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long events must be quiet before an import runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOnImport registers a callback invoked after every import attempt.
func WithOnImport(fn func(*importer.Result, error)) Option {
	return func(w *Watcher) { w.onImport = fn }
}

// New creates a watcher for path. opts.Open only applies to the first
// successful import, later imports refresh the notebook in place.
func New(path string, imp Importer, opts importer.Options, options ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	w := &Watcher{
		path:     absPath,
		importer: imp,
		opts:     opts,
		debounce: DefaultDebounce,
	}
	for _, o := range options {
		o(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run imports the file once, then watches its directory until ctx is
// canceled. An error from the initial import is returned, later ones are
// logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := w.Sync(ctx); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	// Watch the directory, editors often replace files instead of writing them.
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	slog.Info("Watching Dockerfile", logfields.Path(w.path), slog.Duration("debounce", w.debounce))

	name := filepath.Base(w.path)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopped watching", logfields.Path(w.path))
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				slog.Debug("Dockerfile change detected", logfields.Path(event.Name), logfields.Event(event.Op.String()))
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				fire = timer.C
			case event.Has(fsnotify.Remove):
				slog.Warn("Dockerfile removed", logfields.Path(event.Name))
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))

		case <-fire:
			fire = nil
			if _, err := w.Sync(ctx); err != nil {
				slog.Error("Re-import failed", logfields.Path(w.path), logfields.Error(err))
			}
		}
	}
}

// Sync imports the file if its content hash differs from the last
// successful import. It reports whether an import ran.
func (w *Watcher) Sync(ctx context.Context) (bool, error) {
	// #nosec G304 - path is the user's own Dockerfile
	data, err := os.ReadFile(w.path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read %s: %w", w.path, err)
	}
	// A missing file is left to the importer so it reports not found.
	hash := contentHash(data)
	if err == nil && hash == w.lastHash {
		slog.Debug("Dockerfile unchanged, skipping import", logfields.Path(w.path), logfields.Hash(hash))
		return false, nil
	}

	opts := w.opts
	opts.Open = opts.Open && !opts.DryRun && !w.opened
	res, importErr := w.importer.Import(ctx, w.path, opts)
	if w.onImport != nil {
		w.onImport(res, importErr)
	}
	if importErr != nil {
		return true, importErr
	}

	w.lastHash = hash
	if opts.Open {
		w.opened = true
	}
	return true, nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
