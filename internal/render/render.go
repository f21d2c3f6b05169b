// Package render turns Markdown post bodies into HTML.
package render

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Options configures a Renderer.
type Options struct {
	// Sanitize runs the rendered HTML through a UGC policy that keeps the
	// highlighting markup but drops scripts, handlers and unknown tags.
	Sanitize bool
}

// Renderer converts Markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var highlightClassRe = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)

// New returns a Renderer with GFM, heading ids and highlighted code blocks.
func New(opts Options) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
				renderer.WithNodeRenderers(util.Prioritized(newCodeBlockRenderer(), 200)),
			),
		),
	}
	if opts.Sanitize {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Matching(highlightClassRe).OnElements("pre", "code", "span")
		r.policy = p
	}
	return r
}

// Render converts a Markdown body to HTML.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render: convert: %w", err)
	}
	if r.policy != nil {
		return string(r.policy.SanitizeBytes(buf.Bytes())), nil
	}
	return buf.String(), nil
}
