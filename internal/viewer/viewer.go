// Package viewer hands a written notebook to an external program.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
	"git.home.luguber.info/inful/dockbook/internal/logfields"
)

// Viewer opens a notebook by path.
type Viewer interface {
	Open(ctx context.Context, path string) error
}

// Noop is a Viewer that does nothing.
type Noop struct{}

func (Noop) Open(context.Context, string) error { return nil }

// Placeholders substituted in viewer command arguments.
const (
	PathPlaceholder = "{path}"
	URLPlaceholder  = "{url}"
)

// StartFunc launches a process without waiting for it.
type StartFunc func(name string, args ...string) error

// CommandViewer runs a configured command for every opened notebook.
type CommandViewer struct {
	command []string
	urlFor  func(path string) string
	start   StartFunc
}

// Option configures a CommandViewer.
type Option func(*CommandViewer)

// WithURLResolver maps notebook paths to URLs, e.g. JupyterLab tree URLs for
// notebooks stored on a server. Without a placeholder the URL is appended
// instead of the path.
func WithURLResolver(fn func(path string) string) Option {
	return func(v *CommandViewer) { v.urlFor = fn }
}

// WithStartFunc replaces process creation (used in tests).
func WithStartFunc(fn StartFunc) Option {
	return func(v *CommandViewer) { v.start = fn }
}

// NewCommandViewer creates a viewer running command. command must not be empty.
func NewCommandViewer(command []string, opts ...Option) (*CommandViewer, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, cerrors.ConfigInvalid("viewer.command", "empty command")
	}
	v := &CommandViewer{
		command: append([]string(nil), command...),
		start:   startDetached,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Args returns the argv used to open path.
func (v *CommandViewer) Args(path string) []string {
	target := path
	url := path
	if v.urlFor != nil {
		url = v.urlFor(path)
		target = url
	}

	args := make([]string, 0, len(v.command)+1)
	substituted := false
	for _, a := range v.command {
		if strings.Contains(a, PathPlaceholder) || strings.Contains(a, URLPlaceholder) {
			substituted = true
			a = strings.ReplaceAll(a, PathPlaceholder, path)
			a = strings.ReplaceAll(a, URLPlaceholder, url)
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, target)
	}
	return args
}

// Open starts the viewer command and returns without waiting for it.
func (v *CommandViewer) Open(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	args := v.Args(path)
	// Arguments may carry a tokenized server URL, so only the program is logged.
	slog.Debug("Opening notebook", logfields.Path(path), slog.String("program", args[0]))
	if err := v.start(args[0], args[1:]...); err != nil {
		return cerrors.ViewerFailed(path, fmt.Errorf("start %s: %w", args[0], err))
	}
	return nil
}

func startDetached(name string, args ...string) error {
	// #nosec G204 - command comes from operator configuration
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
