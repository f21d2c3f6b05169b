package index

import (
	"strings"
	"unicode/utf8"
)

const snippetRadius = 80

// makeSnippet cuts body around the first case-insensitive occurrence of
// query. Without a match it returns the start of body.
func makeSnippet(body, query string) string {
	body = strings.Join(strings.Fields(body), " ")
	at := strings.Index(strings.ToLower(body), strings.ToLower(query))
	if at < 0 || query == "" {
		return truncate(body, 2*snippetRadius)
	}

	start := at - snippetRadius
	prefix := "..."
	if start <= 0 {
		start, prefix = 0, ""
	}
	for start > 0 && !utf8.RuneStart(body[start]) {
		start--
	}
	end := at + len(query) + snippetRadius
	suffix := "..."
	if end >= len(body) {
		end, suffix = len(body), ""
	}
	for end < len(body) && !utf8.RuneStart(body[end]) {
		end++
	}
	return prefix + body[start:end] + suffix
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
