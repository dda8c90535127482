package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Encode writes doc as JSON. indent == 0 produces compact output; a positive
// indent uses that many spaces per level. HTML escaping is disabled so shell
// operators such as && are written literally.
func Encode(w io.Writer, doc *Document, indent int) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode notebook: %w", err)
	}
	return nil
}

// Marshal is Encode into a byte slice.
func Marshal(doc *Document, indent int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a notebook document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	return &doc, nil
}
