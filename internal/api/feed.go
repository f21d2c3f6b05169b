package api

import (
	"net/http"
	"strconv"
	"strings"
)

// FeedCacheControl lets CDNs keep the feed for an hour while browsers revalidate.
const FeedCacheControl = "max-age=0, s-maxage=3600"

// FeedHandler serves GET /rss.xml.
func FeedHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.Feed(r.Context())
		if err != nil {
			writeError(w, "feed", err)
			return
		}

		w.Header().Set("Content-Type", "application/xml")
		w.Header().Set("Cache-Control", FeedCacheControl)
		w.Header().Set("ETag", doc.ETag)

		if etagMatches(r.Header.Get("If-None-Match"), doc.ETag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(doc.Body)
		}
	}
}

// etagMatches reports whether an If-None-Match header value covers etag.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
