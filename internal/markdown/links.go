package markdown

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

type Link struct {
	Kind        LinkKind `json:"kind"`
	Destination string   `json:"destination"`
}

// Heading is an ATX or setext heading with its inline text flattened.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}
