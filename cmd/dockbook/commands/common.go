package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/dockbook/internal/config"
	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
	"git.home.luguber.info/inful/dockbook/internal/importer"
	"git.home.luguber.info/inful/dockbook/internal/jupyter"
	"git.home.luguber.info/inful/dockbook/internal/logfields"
	"git.home.luguber.info/inful/dockbook/internal/metrics"
	"git.home.luguber.info/inful/dockbook/internal/observability"
	"git.home.luguber.info/inful/dockbook/internal/retry"
	"git.home.luguber.info/inful/dockbook/internal/source"
	"git.home.luguber.info/inful/dockbook/internal/viewer"
)

// Global carries process-wide state shared by all subcommands.
type Global struct {
	Context context.Context
	Out     io.Writer // command output
	Err     io.Writer // logs and diagnostics
	Logger  *slog.Logger

	// ViewerStart replaces process creation for the viewer (tests).
	ViewerStart viewer.StartFunc

	cfg      *config.Config
	registry *prom.Registry
	recorder metrics.Recorder
}

// NewGlobal returns a Global writing to the process' stdout and stderr.
func NewGlobal(ctx context.Context) *Global {
	return &Global{Context: ctx, Out: os.Stdout, Err: os.Stderr}
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"dockbook.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Convert ConvertCmd `cmd:"" help:"Convert a Dockerfile into a Jupyter notebook"`
	Watch   WatchCmd   `cmd:"" help:"Re-convert a Dockerfile whenever it changes"`
	Inspect InspectCmd `cmd:"" help:"Show the cells a Dockerfile converts into without writing"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; sets up a bootstrap logger until the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := "info"
	if c.Verbose {
		level = "debug"
	}
	g.Logger = observability.NewLogger(g.errWriter(), level, "text")
	slog.SetDefault(g.Logger)
	return nil
}

// LoadConfig loads the configuration once and reconfigures logging and
// metrics from it. A missing default file yields defaults.
func (g *Global) LoadConfig(root *CLI) (*config.Config, error) {
	if g.cfg != nil {
		return g.cfg, nil
	}
	cfg, err := config.LoadOrDefault(root.Config)
	if err != nil {
		return nil, err
	}

	level := string(cfg.Logging.Level)
	if root.Verbose {
		level = string(config.LogLevelDebug)
	}
	g.Logger = observability.NewLogger(g.errWriter(), level, string(cfg.Logging.Format))
	slog.SetDefault(g.Logger)

	if cfg.Metrics.Textfile != "" {
		g.registry = prom.NewRegistry()
		g.recorder = metrics.NewPrometheusRecorder(g.registry)
	}

	g.cfg = cfg
	return cfg, nil
}

// FlushMetrics writes the metrics textfile if metrics are enabled.
func (g *Global) FlushMetrics() error {
	if g.registry == nil || g.cfg == nil {
		return nil
	}
	return metrics.WriteTextfile(g.cfg.Metrics.Textfile, g.registry)
}

// NewService wires an importer for cfg. backendOverride, when set, replaces
// the configured backend.
func (g *Global) NewService(cfg *config.Config, backendOverride string) (*importer.Service, error) {
	backend := cfg.Backend
	if backendOverride != "" {
		b, err := config.ParseBackend(backendOverride)
		if err != nil {
			return nil, cerrors.InvalidInputKind(backendOverride, err.Error())
		}
		backend = b
	}

	var (
		src    source.Backend
		urlFor func(string) string
	)
	switch backend {
	case config.BackendJupyter:
		client, err := jupyter.NewClient(cfg.Jupyter.BaseURL, cfg.Jupyter.Token, cfg.Jupyter.Timeout, cfg.Output.Indent())
		if err != nil {
			return nil, err
		}
		client.WithRetry(retry.FromConfig(cfg.Jupyter.Retry))
		src = client
		urlFor = client.TreeURL
	default:
		src = source.NewFSBackend(cfg.Output.Indent())
	}

	svc := importer.NewService(src).
		WithSuffix(cfg.Output.Suffix).
		WithRecorder(g.metricsRecorder())

	if command := cfg.Viewer.CommandFor(backend); len(command) > 0 {
		var opts []viewer.Option
		if urlFor != nil {
			opts = append(opts, viewer.WithURLResolver(urlFor))
		}
		if g.ViewerStart != nil {
			opts = append(opts, viewer.WithStartFunc(g.ViewerStart))
		}
		v, err := viewer.NewCommandViewer(command, opts...)
		if err != nil {
			return nil, err
		}
		svc.WithViewer(v)
	}

	slog.Debug("Importer ready", logfields.Backend(src.Name()))
	return svc, nil
}

// OpenFlags are shared by commands that can hand the result to a viewer.
type OpenFlags struct {
	Open   bool `help:"Open the notebook in the configured viewer" xor:"open"`
	NoOpen bool `name:"no-open" help:"Do not open the notebook even if viewer.enabled is set" xor:"open"`
}

// Resolve combines the flags with the configured default.
func (f OpenFlags) Resolve(cfg *config.Config) bool {
	if f.NoOpen {
		return false
	}
	return f.Open || cfg.Viewer.Enabled
}

func (g *Global) ctx() context.Context {
	if g.Context == nil {
		return context.Background()
	}
	return g.Context
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) errWriter() io.Writer {
	if g.Err == nil {
		return os.Stderr
	}
	return g.Err
}

func (g *Global) metricsRecorder() metrics.Recorder {
	if g.recorder == nil {
		return metrics.NoopRecorder{}
	}
	return g.recorder
}
