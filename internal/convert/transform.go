package convert

import (
	"strings"

	"git.home.luguber.info/inful/dockbook/internal/notebook"
)

// Cell is a classified block with marker prefixes removed.
type Cell struct {
	Kind  notebook.CellType
	ID    string
	Lines []string
}

// Transform classifies a block and strips line markers.
//
// Any line starting with "#md " makes the whole block a markdown cell. Lines
// starting with "#mg " lose the prefix without affecting the kind. Every line
// keeps a trailing newline except the last one.
func Transform(block string, newID func() string) Cell {
	kind := notebook.CellTypeCode
	lines := strings.Split(block, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, MarkdownMarker):
			line = strings.TrimPrefix(line, MarkdownMarker)
			kind = notebook.CellTypeMarkdown
		case strings.HasPrefix(line, MagicMarker):
			line = strings.TrimPrefix(line, MagicMarker)
		}
		out = append(out, line+"\n")
	}

	if last := len(out) - 1; last >= 0 {
		out[last] = strings.TrimSuffix(out[last], "\n")
	}

	return Cell{
		Kind:  kind,
		ID:    newID(),
		Lines: out,
	}
}
