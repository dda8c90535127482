package commands

import (
	"fmt"

	"git.home.luguber.info/inful/dockbook/internal/importer"
	"git.home.luguber.info/inful/dockbook/internal/notebook"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	Path    string `arg:"" help:"Dockerfile to convert"`
	Stdout  bool   `help:"Print the notebook to stdout instead of writing it"`
	DryRun  bool   `help:"Convert and report the result without writing"`
	Backend string `help:"Storage backend (fs or jupyter), overrides the configuration"`
	OpenFlags `embed:""`
}

func (c *ConvertCmd) Run(g *Global, root *CLI) error {
	cfg, err := g.LoadConfig(root)
	if err != nil {
		return err
	}
	svc, err := g.NewService(cfg, c.Backend)
	if err != nil {
		return err
	}

	dryRun := c.DryRun || c.Stdout
	res, err := svc.Import(g.ctx(), c.Path, importer.Options{
		DryRun: dryRun,
		Open:   c.Resolve(cfg),
	})
	if err != nil {
		return err
	}

	switch {
	case c.Stdout:
		return notebook.Encode(g.out(), res.Document, cfg.Output.Indent())
	case c.DryRun:
		_, err = fmt.Fprintf(g.out(), "Would write %s (%s)\n", res.Output, cellSummary(res))
	default:
		_, err = fmt.Fprintf(g.out(), "Wrote %s (%s)\n", res.Output, cellSummary(res))
	}
	return err
}

func cellSummary(res *importer.Result) string {
	return fmt.Sprintf("%d cells: %d code, %d markdown",
		len(res.Document.Cells), res.CodeCells, res.MarkdownCells)
}
