package commands

import (
	"github.com/alecthomas/kong"

	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
	"git.home.luguber.info/inful/dockbook/internal/version"
)

// Execute parses args and runs the selected command. Usage and version
// output go to g.Out; exit requests from kong (--help, --version) are routed
// through exit. Parse errors are reported as invalid input.
func Execute(g *Global, cli *CLI, args []string, exit func(int)) error {
	parser, err := kong.New(cli,
		kong.Name("dockbook"),
		kong.Description("Turn annotated Dockerfiles into Jupyter notebooks"),
		kong.Vars{"version": version.String()},
		kong.Bind(g),
		kong.Writers(g.out(), g.errWriter()),
		kong.Exit(exit),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return cerrors.New(cerrors.CategoryInvalidInput, cerrors.SeverityFatal, err.Error())
	}

	runErr := kctx.Run(cli)
	if err := g.FlushMetrics(); err != nil {
		g.Logger.Warn("Failed to write metrics textfile", "error", err)
	}
	return runErr
}
