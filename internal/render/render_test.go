package render

import (
	"strings"
	"testing"
)

func TestRender_Paragraph(t *testing.T) {
	r := New(Options{})
	out, err := r.Render([]byte("# Title\n\nSome *text*.\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `<h1 id="title">Title</h1>`) {
		t.Errorf("missing heading with id: %q", out)
	}
	if !strings.Contains(out, "<em>text</em>") {
		t.Errorf("missing emphasis: %q", out)
	}
}

func TestRender_KnownLanguageHighlighted(t *testing.T) {
	r := New(Options{})
	out, err := r.Render([]byte("```go\nfunc main() {}\n```\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `<code class="hljs language-go">`) {
		t.Errorf("missing language marker: %q", out)
	}
	if !strings.Contains(out, `<span class="kd">func</span>`) {
		t.Errorf("keyword not highlighted: %q", out)
	}
}

func TestRender_UnknownLanguageFallsBackToPlaintext(t *testing.T) {
	r := New(Options{})
	out, err := r.Render([]byte("```notalanguage\n<b>x</b>\n```\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `<code class="hljs language-plaintext">`) {
		t.Errorf("missing plaintext marker: %q", out)
	}
	if !strings.Contains(out, "&lt;b&gt;x&lt;/b&gt;") {
		t.Errorf("plaintext not escaped: %q", out)
	}
	if strings.Contains(out, "<span") {
		t.Errorf("plaintext should not be tokenized: %q", out)
	}
}

func TestRender_NoLanguage(t *testing.T) {
	r := New(Options{})
	out, err := r.Render([]byte("```\nplain\n```\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `language-plaintext`) {
		t.Errorf("missing plaintext marker: %q", out)
	}
}

func TestRender_RawHTMLPassesThroughUnsanitized(t *testing.T) {
	r := New(Options{})
	out, err := r.Render([]byte("<div class=\"note\">hi</div>\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `<div class="note">hi</div>`) {
		t.Errorf("raw html dropped: %q", out)
	}
}

func TestRender_SanitizeKeepsHighlighting(t *testing.T) {
	r := New(Options{Sanitize: true})
	src := "<script>alert(1)</script>\n\n```go\nfunc main() {}\n```\n"
	out, err := r.Render([]byte(src))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("script survived sanitizing: %q", out)
	}
	if !strings.Contains(out, `class="hljs language-go"`) {
		t.Errorf("language class stripped: %q", out)
	}
	if !strings.Contains(out, `<span class="kd">`) {
		t.Errorf("token class stripped: %q", out)
	}
}

func TestLookupLexer(t *testing.T) {
	cases := map[string]string{
		"go":         "go",
		"Python":     "python",
		"":           PlainLanguage,
		"nope-lang":  PlainLanguage,
		`"><script>`: PlainLanguage,
	}
	for in, want := range cases {
		if got, _ := lookupLexer(in); got != want {
			t.Errorf("lookupLexer(%q) = %q, want %q", in, got, want)
		}
	}
}
