package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/dockbook/internal/importer"
	"git.home.luguber.info/inful/dockbook/internal/markdown"
	"git.home.luguber.info/inful/dockbook/internal/notebook"
)

// InspectCmd implements the 'inspect' command.
type InspectCmd struct {
	Path    string `arg:"" help:"Dockerfile to inspect"`
	Format  string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Backend string `help:"Storage backend (fs or jupyter), overrides the configuration"`
}

// CellReport describes one converted cell.
type CellReport struct {
	Index     int                `json:"index"`
	Kind      notebook.CellType  `json:"kind"`
	ID        string             `json:"id"`
	Lines     int                `json:"lines"`
	FirstLine string             `json:"first_line"`
	Headings  []markdown.Heading `json:"headings,omitempty"`
	Links     []markdown.Link    `json:"links,omitempty"`
}

// Report is the inspect output.
type Report struct {
	Source        string       `json:"source"`
	Output        string       `json:"output"`
	CodeCells     int          `json:"code_cells"`
	MarkdownCells int          `json:"markdown_cells"`
	Cells         []CellReport `json:"cells"`
}

func (i *InspectCmd) Run(g *Global, root *CLI) error {
	cfg, err := g.LoadConfig(root)
	if err != nil {
		return err
	}
	svc, err := g.NewService(cfg, i.Backend)
	if err != nil {
		return err
	}
	res, err := svc.Import(g.ctx(), i.Path, importer.Options{DryRun: true})
	if err != nil {
		return err
	}

	report := BuildReport(res)
	if i.Format == "json" {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return writeTextReport(g.out(), report)
}

// BuildReport summarizes an import result cell by cell. Markdown cells also
// list their headings and links.
func BuildReport(res *importer.Result) Report {
	report := Report{
		Source:        res.Source,
		Output:        res.Output,
		CodeCells:     res.CodeCells,
		MarkdownCells: res.MarkdownCells,
		Cells:         make([]CellReport, 0, len(res.Document.Cells)),
	}
	for idx, cell := range res.Document.Cells {
		cr := CellReport{
			Index: idx,
			Kind:  cell.CellType,
			ID:    cell.ID,
			Lines: len(cell.Source),
		}
		if len(cell.Source) > 0 {
			cr.FirstLine = strings.TrimSuffix(cell.Source[0], "\n")
		}
		if cell.CellType == notebook.CellTypeMarkdown {
			summary := markdown.Analyze([]byte(cell.Text()))
			cr.Headings = summary.Headings
			cr.Links = summary.Links
		}
		report.Cells = append(report.Cells, cr)
	}
	return report
}

func writeTextReport(w io.Writer, r Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s: %d cells (%d code, %d markdown)\n",
		r.Source, r.Output, len(r.Cells), r.CodeCells, r.MarkdownCells)
	for _, c := range r.Cells {
		fmt.Fprintf(&b, "  [%d] %-8s %3d lines  %s\n", c.Index, c.Kind, c.Lines, c.FirstLine)
		for _, h := range c.Headings {
			fmt.Fprintf(&b, "        %s %s\n", strings.Repeat("#", h.Level), h.Text)
		}
		for _, l := range c.Links {
			fmt.Fprintf(&b, "        -> %s (%s)\n", l.Destination, l.Kind)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
