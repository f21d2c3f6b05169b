// Package feed renders posts as an RSS 2.0 document.
package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/starford/folio/internal/models"
)

// PubDateLayout is RFC 1123 with a literal GMT zone, the form RSS readers
// expect and JavaScript's toUTCString produces.
const PubDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Channel describes the site the feed belongs to.
type Channel struct {
	Domain      string // scheme and host, no trailing slash
	Title       string
	Description string
}

// Permalink returns the public URL of a post.
func (c Channel) Permalink(id string) string {
	return strings.TrimRight(c.Domain, "/") + "/blog/" + id
}

// SelfLink returns the URL the feed itself is served from.
func (c Channel) SelfLink() string {
	return strings.TrimRight(c.Domain, "/") + "/rss.xml"
}

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	AtomLink    atomLink  `xml:"atom:link"`
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	GUID    string `xml:"guid"`
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// Render returns the feed for posts, in the order given. The output only
// depends on its inputs, so equal inputs give byte-identical documents.
func Render(ch Channel, posts []models.Post) ([]byte, error) {
	doc := rss{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			AtomLink: atomLink{
				Href: ch.SelfLink(),
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Title:       ch.Title,
			Link:        strings.TrimRight(ch.Domain, "/"),
			Description: ch.Description,
			Items:       make([]rssItem, 0, len(posts)),
		},
	}
	for _, p := range posts {
		link := ch.Permalink(p.ID)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			GUID:    link,
			Title:   p.Title,
			Link:    link,
			PubDate: FormatPubDate(p.Date),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("feed: encode: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// FormatPubDate formats t in UTC using PubDateLayout.
func FormatPubDate(t time.Time) string {
	return t.UTC().Format(PubDateLayout)
}
