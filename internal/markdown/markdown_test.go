package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutline(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []Heading
	}{
		{
			name:   "atx levels",
			source: "# Build\n\nsome text\n\n## Dependencies\n### apk\n",
			want: []Heading{
				{Level: 1, Text: "Build"},
				{Level: 2, Text: "Dependencies"},
				{Level: 3, Text: "apk"},
			},
		},
		{
			name:   "setext",
			source: "Runtime image\n=============\n\nPorts\n-----\n",
			want: []Heading{
				{Level: 1, Text: "Runtime image"},
				{Level: 2, Text: "Ports"},
			},
		},
		{
			name:   "inline markup flattened",
			source: "## Install `curl` and *jq*\n",
			want:   []Heading{{Level: 2, Text: "Install curl and jq"}},
		},
		{
			name:   "link text kept",
			source: "# See [Alpine](https://alpinelinux.org)\n",
			want:   []Heading{{Level: 1, Text: "See Alpine"}},
		},
		{
			name:   "no headings",
			source: "FROM alpine\nRUN true",
			want:   []Heading{},
		},
		{
			name:   "hash without space is not a heading",
			source: "#not a heading\n",
			want:   []Heading{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outline([]byte(tt.source)))
		})
	}
}

func TestAnalyze_HeadingsAndLinksInOnePass(t *testing.T) {
	src := "# See [Alpine](https://alpinelinux.org)\n\n![logo](logo.png) and <https://docker.com>\n\n[ref]: https://example.com\n"

	s := Analyze([]byte(src))
	assert.Equal(t, []Heading{{Level: 1, Text: "See Alpine"}}, s.Headings)
	assert.Equal(t, []Link{
		{Kind: LinkKindInline, Destination: "https://alpinelinux.org"},
		{Kind: LinkKindImage, Destination: "logo.png"},
		{Kind: LinkKindAuto, Destination: "https://docker.com"},
		{Kind: LinkKindReferenceDefinition, Destination: "https://example.com"},
	}, s.Links)
	assert.Equal(t, s.Headings, Outline([]byte(src)))
	assert.Equal(t, s.Links, ExtractLinks([]byte(src)))
}
