package convert

import (
	"github.com/google/uuid"

	"git.home.luguber.info/inful/dockbook/internal/notebook"
)

// Assemble maps cells 1:1, in order, into a notebook document with the fixed
// Dockerfile kernel metadata.
func Assemble(cells []Cell) *notebook.Document {
	doc := notebook.New()
	doc.Cells = make([]notebook.Cell, 0, len(cells))
	for _, c := range cells {
		doc.Cells = append(doc.Cells, notebook.NewCell(c.Kind, c.ID, c.Lines))
	}
	return doc
}

// Converter runs the full pipeline with a configurable id source.
type Converter struct {
	NewID func() string
}

// NewConverter returns a Converter that assigns random UUIDv4 cell ids.
func NewConverter() *Converter {
	return &Converter{NewID: uuid.NewString}
}

// Convert segments text, transforms every block and assembles the document.
func (c *Converter) Convert(text string) *notebook.Document {
	newID := c.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	blocks := Segment(text)
	cells := make([]Cell, 0, len(blocks))
	for _, b := range blocks {
		cells = append(cells, Transform(b, newID))
	}
	return Assemble(cells)
}

// Convert is a shorthand for NewConverter().Convert(text).
func Convert(text string) *notebook.Document {
	return NewConverter().Convert(text)
}
