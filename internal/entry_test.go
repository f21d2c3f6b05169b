package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/testutil"
)

func testConfig(t *testing.T, files map[string]string) *Config {
	t.Helper()
	dir, _ := testutil.TestPostsDir(t, files)

	profilePath := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(profilePath, []byte("works:\n  - name: X\n    href: https://x.example.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	cfg.Site.Domain = "https://example.com"
	cfg.Posts.Path = dir
	cfg.Profile.Path = profilePath
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "folio.db")
	return cfg
}

var entryPosts = map[string]string{
	"one.md": `{"date":"2024-01-01","title":"One"}` + "\n---\nbody\n",
	"two.md": `{"date":"2024-02-01","title":"Two & more"}` + "\n---\n```rust\nfn main() {}\n```\n",
}

func TestCheck_ReportsCount(t *testing.T) {
	cfg := testConfig(t, entryPosts)
	var out bytes.Buffer
	err := Check(context.Background(), WithConfig(cfg), WithOutput(&out), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !strings.HasPrefix(out.String(), "ok: 2 posts") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCheck_FailsOnMalformedPost(t *testing.T) {
	files := map[string]string{"bad.md": `{"title":"No date"}` + "\n---\nbody"}
	cfg := testConfig(t, files)
	err := Check(context.Background(), WithConfig(cfg), WithOutput(io.Discard), WithLogOutput(io.Discard))
	if !errors.Is(err, apperr.ErrMalformedMetadata) {
		t.Fatalf("err = %v, want ErrMalformedMetadata", err)
	}
}

func TestExportFeed(t *testing.T) {
	cfg := testConfig(t, entryPosts)
	var out bytes.Buffer
	err := ExportFeed(context.Background(), WithConfig(cfg), WithOutput(&out), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("ExportFeed: %v", err)
	}
	doc := out.String()
	if !strings.Contains(doc, "<title>Two &amp; more</title>") {
		t.Errorf("feed = %s", doc)
	}
	if strings.Index(doc, "/blog/two") > strings.Index(doc, "/blog/one") {
		t.Error("feed items not newest first")
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestExportFeed_WritesFile(t *testing.T) {
	cfg := testConfig(t, entryPosts)
	path := filepath.Join(t.TempDir(), "rss.xml")
	if err := os.WriteFile(path, []byte("old feed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ExportFeed(context.Background(), WithConfig(cfg), WithOutputFile(path), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("ExportFeed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<rss") {
		t.Errorf("file = %q, want rss document", data)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %v", entries)
	}
}

func TestExportFeed_MalformedPostKeepsExistingFile(t *testing.T) {
	files := map[string]string{"bad.md": `{"title":"No date"}` + "\n---\nbody"}
	cfg := testConfig(t, files)
	path := filepath.Join(t.TempDir(), "rss.xml")
	if err := os.WriteFile(path, []byte("old feed"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := ExportFeed(context.Background(), WithConfig(cfg), WithOutputFile(path), WithLogOutput(io.Discard))
	if !errors.Is(err, apperr.ErrMalformedMetadata) {
		t.Fatalf("err = %v, want ErrMalformedMetadata", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old feed" {
		t.Errorf("file = %q, want it untouched", data)
	}
}
