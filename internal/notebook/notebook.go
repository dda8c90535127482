// Package notebook models the nbformat 4.5 document written for a converted
// Dockerfile. Field names and ordering match what Jupyter expects on disk.
package notebook

import "strings"

// CellType is the nbformat cell_type value.
type CellType string

const (
	CellTypeCode     CellType = "code"
	CellTypeMarkdown CellType = "markdown"
)

// Format version markers written into every document.
const (
	FormatMajor = 4
	FormatMinor = 5
)

// Document is the top-level notebook structure.
type Document struct {
	Cells         []Cell   `json:"cells"`
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
}

// Cell is a single notebook cell. ExecutionCount is always null for freshly
// converted documents.
type Cell struct {
	CellType       CellType       `json:"cell_type"`
	ExecutionCount *int           `json:"execution_count"`
	ID             string         `json:"id"`
	Metadata       map[string]any `json:"metadata"`
	Outputs        []any          `json:"outputs"`
	Source         []string       `json:"source"`
}

// Metadata names the Docker kernel and the Dockerfile language.
type Metadata struct {
	KernelSpec   KernelSpec   `json:"kernelspec"`
	LanguageInfo LanguageInfo `json:"language_info"`
}

type KernelSpec struct {
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
	Name        string `json:"name"`
}

type LanguageInfo struct {
	FileExtension string `json:"file_extension"`
	MimeType      string `json:"mimetype"`
	Name          string `json:"name"`
}

// DockerMetadata returns the fixed metadata block for Dockerfile notebooks.
func DockerMetadata() Metadata {
	return Metadata{
		KernelSpec: KernelSpec{
			DisplayName: "Dockerfile",
			Language:    "text",
			Name:        "docker",
		},
		LanguageInfo: LanguageInfo{
			FileExtension: ".dockerfile",
			MimeType:      "text/x-dockerfile-config",
			Name:          "docker",
		},
	}
}

// New returns an empty document carrying the fixed metadata and format markers.
func New() *Document {
	return &Document{
		Cells:         []Cell{},
		Metadata:      DockerMetadata(),
		NBFormat:      FormatMajor,
		NBFormatMinor: FormatMinor,
	}
}

// NewCell builds a cell with empty metadata and outputs so both encode as
// {} and [] rather than null.
func NewCell(cellType CellType, id string, source []string) Cell {
	if source == nil {
		source = []string{}
	}
	return Cell{
		CellType: cellType,
		ID:       id,
		Metadata: map[string]any{},
		Outputs:  []any{},
		Source:   source,
	}
}

// Text joins the cell source back into a single string.
func (c Cell) Text() string {
	return strings.Join(c.Source, "")
}

// CountByType returns the number of cells per cell type.
func (d *Document) CountByType() map[CellType]int {
	counts := map[CellType]int{
		CellTypeCode:     0,
		CellTypeMarkdown: 0,
	}
	for _, c := range d.Cells {
		counts[c.CellType]++
	}
	return counts
}
