package render

import (
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// PlainLanguage is the class suffix used when a code block has no language
// or one the highlighter does not know.
const PlainLanguage = "plaintext"

var langNameRe = regexp.MustCompile(`^[a-z0-9_+#.-]+$`)

// codeBlockRenderer replaces goldmark's fenced code block output with
// <pre><code class="hljs language-X"> and chroma token spans.
type codeBlockRenderer struct{}

func newCodeBlockRenderer() renderer.NodeRenderer {
	return &codeBlockRenderer{}
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	lang, lexer := lookupLexer(string(n.Language(source)))

	_, _ = w.WriteString(`<pre><code class="hljs language-`)
	_, _ = w.WriteString(lang)
	_, _ = w.WriteString(`">`)
	if lexer == nil {
		_, _ = w.Write(util.EscapeHTML([]byte(code.String())))
	} else if err := writeTokens(w, lexer, code.String()); err != nil {
		return ast.WalkStop, err
	}
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}

// lookupLexer resolves a declared language. Unknown or empty names fall back
// to plaintext with a nil lexer.
func lookupLexer(declared string) (string, chroma.Lexer) {
	name := strings.ToLower(strings.TrimSpace(declared))
	if name == "" || name == PlainLanguage || !langNameRe.MatchString(name) {
		return PlainLanguage, nil
	}
	lexer := lexers.Get(name)
	if lexer == nil {
		return PlainLanguage, nil
	}
	return name, chroma.Coalesce(lexer)
}

func writeTokens(w util.BufWriter, lexer chroma.Lexer, code string) error {
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return err
	}
	for tok := it(); tok != chroma.EOF; tok = it() {
		escaped := util.EscapeHTML([]byte(tok.Value))
		class := chroma.StandardTypes[tok.Type]
		if class == "" {
			_, _ = w.Write(escaped)
			continue
		}
		_, _ = w.WriteString(`<span class="`)
		_, _ = w.WriteString(class)
		_, _ = w.WriteString(`">`)
		_, _ = w.Write(escaped)
		_, _ = w.WriteString(`</span>`)
	}
	return nil
}
