package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/folio/internal/apperr"
)

func TestParse_MetadataAndBody(t *testing.T) {
	input := []byte(`{"date":"2024-01-02","title":"Hello","tags":["go"]}` + "\n---\n# Hello\nBody text.\n")
	r, err := Parse("hello.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID != "hello" {
		t.Errorf("id = %q, want %q", r.ID, "hello")
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !r.Date.Equal(want) {
		t.Errorf("date = %v, want %v", r.Date, want)
	}
	if r.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
	if _, ok := r.Meta["tags"]; !ok {
		t.Errorf("extra field tags missing from meta: %v", r.Meta)
	}
	if _, ok := r.Meta["title"]; ok {
		t.Error("title should not be duplicated in meta")
	}
}

func TestParse_DelimiterWithoutLeadingNewline(t *testing.T) {
	r, err := Parse("a.md", []byte(`{"date":"2024-01-02","title":"A"}---`+"\nbody A"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Body != "body A" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_LaterDelimitersStayInBody(t *testing.T) {
	input := []byte(`{"date":"2024-01-02","title":"A"}` + "\n---\nfirst\n---\nsecond\n")
	r, err := Parse("a.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Body != "first\n---\nsecond\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse("bad.md", []byte("{not json}\n---\nbody"))
	if !errors.Is(err, apperr.ErrMalformedMetadata) {
		t.Fatalf("err = %v, want ErrMalformedMetadata", err)
	}
}

func TestParse_MissingDelimiter(t *testing.T) {
	_, err := Parse("bad.md", []byte(`{"date":"2024-01-02","title":"A"}`))
	if !errors.Is(err, apperr.ErrMalformedMetadata) {
		t.Fatalf("err = %v, want ErrMalformedMetadata", err)
	}
}

func TestParse_NonObjectMetadata(t *testing.T) {
	for _, meta := range []string{"null", "[1,2]", `"text"`} {
		if _, err := Parse("x.md", []byte(meta+"\n---\nbody")); !errors.Is(err, apperr.ErrMalformedMetadata) {
			t.Errorf("meta %s: err = %v, want ErrMalformedMetadata", meta, err)
		}
	}
}

func TestParse_MissingTitle(t *testing.T) {
	_, err := Parse("x.md", []byte(`{"date":"2024-01-02"}`+"\n---\nbody"))
	if !errors.Is(err, apperr.ErrMalformedMetadata) {
		t.Fatalf("err = %v, want ErrMalformedMetadata", err)
	}
}

func TestParse_BadDate(t *testing.T) {
	for _, meta := range []string{
		`{"title":"x"}`,
		`{"title":"x","date":"not a date at all"}`,
		`{"title":"x","date":true}`,
	} {
		if _, err := Parse("x.md", []byte(meta+"\n---\nbody")); !errors.Is(err, apperr.ErrMalformedMetadata) {
			t.Errorf("meta %s: err = %v, want ErrMalformedMetadata", meta, err)
		}
	}
}

func TestParseDate_Formats(t *testing.T) {
	cases := []struct {
		in   any
		want time.Time
	}{
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-01-05T10:30:00Z", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)},
		{"January 5, 2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{float64(1704412800000), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := parseDate(c.in)
		if err != nil {
			t.Errorf("parseDate(%v): %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("parseDate(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestIDFromName(t *testing.T) {
	cases := map[string]string{
		"a.md":           "a",
		"hello-world.md": "hello-world",
		"a.b.md":         "a",
		"noext":          "noext",
	}
	for in, want := range cases {
		if got := IDFromName(in); got != want {
			t.Errorf("IDFromName(%q) = %q, want %q", in, got, want)
		}
	}
}
