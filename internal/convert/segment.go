// Package convert turns marked-up Dockerfile text into notebook cells.
//
// The pipeline is Segment -> Transform -> Assemble. It is pure apart from
// cell id generation and never returns an error: unbalanced or nested
// markers are resolved by the split rules below rather than rejected.
package convert

import "strings"

// Block and line markers recognised in Dockerfiles.
const (
	CellStartMarker = "#cellStart\n"
	CellEndMarker   = "\n#cellEnd"

	MarkdownMarker = "#md "
	MagicMarker    = "#mg "

	blankLine = "\n\n"
)

// Segment splits text into raw cell blocks, in order of appearance.
//
// The text is split on the end marker, then on the start marker. A chunk that
// begins or ends with a newline sits next to a marker with blank lines around
// it, so it is further split on blank lines and every non-empty piece becomes
// its own block. Other chunks are kept whole when non-empty.
func Segment(text string) []string {
	var blocks []string
	for _, outer := range strings.Split(text, CellEndMarker) {
		for _, chunk := range strings.Split(outer, CellStartMarker) {
			if strings.HasPrefix(chunk, "\n") || strings.HasSuffix(chunk, "\n") {
				for _, piece := range strings.Split(chunk, blankLine) {
					if piece != "" {
						blocks = append(blocks, piece)
					}
				}
				continue
			}
			// Empty when a marker is first/last in the text or two markers touch.
			if chunk != "" {
				blocks = append(blocks, chunk)
			}
		}
	}
	return blocks
}
