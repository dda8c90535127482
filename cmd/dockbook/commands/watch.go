package commands

import (
	"fmt"

	"git.home.luguber.info/inful/dockbook/internal/config"
	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
	"git.home.luguber.info/inful/dockbook/internal/importer"
	"git.home.luguber.info/inful/dockbook/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Path string `arg:"" help:"Dockerfile to watch"`
	OpenFlags `embed:""`
}

// Run converts the file once and again after every change until interrupted.
// Watching relies on local filesystem events, so only the fs backend is
// supported.
func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := g.LoadConfig(root)
	if err != nil {
		return err
	}
	if cfg.Backend != config.BackendFS {
		return cerrors.ConfigInvalid("backend", "watch requires the fs backend")
	}
	svc, err := g.NewService(cfg, string(config.BackendFS))
	if err != nil {
		return err
	}

	watcher, err := watch.New(w.Path, svc, importer.Options{Open: w.Resolve(cfg)},
		watch.WithDebounce(cfg.Watch.Debounce),
		watch.WithOnImport(func(res *importer.Result, err error) {
			if err == nil {
				_, _ = fmt.Fprintf(g.out(), "Wrote %s (%s)\n", res.Output, cellSummary(res))
			}
		}),
	)
	if err != nil {
		return err
	}
	return watcher.Run(g.ctx())
}
