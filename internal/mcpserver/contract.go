package mcpserver

// PostFormatURI is the resource URI of the post format description.
const PostFormatURI = "folio://post-format"

// PostFormat describes the content file format so LLM clients can draft
// posts a human then saves into the posts directory.
const PostFormat = `# Post Format

A post is one file in the posts directory. The part of the file name before
the first dot is the post id and its URL slug: ` + "`" + `hello-world.md` + "`" + ` is served
at ` + "`" + `/blog/hello-world` + "`" + `.

## Structure

` + "```" + `
{"title": "Hello world", "date": "2024-01-15"}
---
Markdown body.
` + "```" + `

## Rules

1. The file starts with a JSON object, followed by a line holding only ` + "`" + `---` + "`" + `.
   Everything after the first ` + "`" + `---` + "`" + ` line is the body, including any later
   ` + "`" + `---` + "`" + ` lines.
2. ` + "`" + `title` + "`" + ` is required and must be a non-empty string.
3. ` + "`" + `date` + "`" + ` is required: a date string (` + "`" + `2024-01-15` + "`" + `,
   ` + "`" + `2024-01-15T09:30:00Z` + "`" + `, ` + "`" + `January 15, 2024` + "`" + `; times without a zone are UTC) or a number
   of milliseconds since the Unix epoch.
4. Any other keys (` + "`" + `description` + "`" + `, ` + "`" + `tags` + "`" + `, ` + "`" + `cover` + "`" + `) are kept and returned
   alongside the post.
5. Line endings are LF. Files whose names start with a dot are ignored.
6. Fenced code blocks should name their language (` + "```" + "go" + `) to get highlighting.
   Unknown languages are shown as plain text.
7. Images live in the static directory and are referenced as ` + "`" + `/static/<file>` + "`" + `.

## Example

` + "```" + `
{"title": "Shipping the feed", "date": "2024-03-02", "tags": ["go", "rss"]}
---
# Shipping the feed

The RSS feed is now served from ` + "`" + `/rss.xml` + "`" + `.

![Feed reader](/static/feed-reader.png)
` + "```" + `
`
