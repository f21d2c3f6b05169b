package index

// PostIndex is the search side of the blog. The catalog stays the source of
// truth; everything here can be rebuilt from the posts directory.
type PostIndex interface {
	UpsertPost(row PostRow, body string) error
	DeletePost(id string) error
	GetChecksum(id string) (string, error)
	AllChecksums() (map[string]string, error)
	Count() (int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

var _ PostIndex = (*DB)(nil)
