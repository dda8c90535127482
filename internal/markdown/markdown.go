// Package markdown analyses the prose of markdown cells.
package markdown

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Summary is the outline and link inventory of one markdown document.
type Summary struct {
	Headings []Heading
	Links    []Link
}

// Analyze parses source once and collects headings and links in source
// order. Reference definitions follow the links, sorted by label.
func Analyze(source []byte) Summary {
	ctx := parser.NewContext()
	root := goldmark.New().Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	s := Summary{Headings: make([]Heading, 0), Links: make([]Link, 0)}
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			s.Headings = append(s.Headings, Heading{
				Level: node.Level,
				Text:  strings.TrimSpace(inlineText(node, source)),
			})
		case *gmast.AutoLink:
			s.Links = append(s.Links, Link{Kind: LinkKindAuto, Destination: string(node.URL(source))})
		case *gmast.Image:
			s.Links = append(s.Links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			// Reference-style usages resolve to a Link with the definition's destination.
			s.Links = append(s.Links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})

	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		s.Links = append(s.Links, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}
	return s
}

// Outline returns the headings of a markdown document in source order.
func Outline(source []byte) []Heading {
	return Analyze(source).Headings
}

// ExtractLinks returns the links, images, autolinks and reference
// definitions of a markdown document.
func ExtractLinks(source []byte) []Link {
	return Analyze(source).Links
}

func inlineText(n gmast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *gmast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(node.Value)
		case *gmast.AutoLink:
			b.Write(node.Label(source))
		default:
			b.WriteString(inlineText(c, source))
		}
	}
	return b.String()
}
