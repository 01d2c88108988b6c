package bookmark

import "strings"

// IDPrefix is prepended to the numeric selector nb prints in listings.
const IDPrefix = "bookmark-"

// Stub is a partial bookmark read from a listing line.
type Stub struct {
	ID         string   `json:"id"`
	RawTitle   string   `json:"rawTitle"`
	RawURL     string   `json:"rawUrl"`
	InlineTags []string `json:"inlineTags"`
}

// Selector returns the numeric id nb expects in "show" queries.
func (s Stub) Selector() string {
	return strings.TrimPrefix(s.ID, IDPrefix)
}

// Detail holds the fields read from one item's "show" output. Empty strings
// mean the field was not found.
type Detail struct {
	Tags         []string `json:"tags"`
	DateAdded    string   `json:"dateAdded,omitempty"`
	CanonicalURL string   `json:"canonicalUrl,omitempty"`
}

// Bookmark is the reconciled record handed to consumers.
type Bookmark struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Tags      []string `json:"tags"`
	DateAdded string   `json:"dateAdded"`
	// DateSynthetic is set when DateAdded is the reconciliation time rather
	// than a date reported by nb.
	DateSynthetic bool `json:"dateSynthetic,omitempty"`
}

// Tag is a tag name with the number of bookmarks carrying it.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
