package parser

import (
	"strings"

	"github.com/aryannaik/nb-bookmarks/internal/bookmark"
	"github.com/aryannaik/nb-bookmarks/internal/termtext"
)

// Listing is the result of scanning list output.
type Listing struct {
	Stubs []bookmark.Stub
	// Skipped counts lines that carried the bookmark marker but did not match
	// the listing grammar.
	Skipped int
}

// ParseListing extracts bookmark stubs from "nb bookmarks" style output, in
// the order they appear. Lines that do not match the listing grammar are
// dropped.
func ParseListing(text string) []bookmark.Stub {
	return ScanListing(text).Stubs
}

// ScanListing is ParseListing that also reports how many marker lines were
// dropped.
func ScanListing(text string) Listing {
	var l Listing
	for _, line := range termtext.Lines(text) {
		if strings.TrimSpace(line) == "" || isBanner(line) || !strings.Contains(line, Marker) {
			continue
		}

		stub, ok := parseListingLine(line)
		if !ok {
			l.Skipped++
			continue
		}
		l.Stubs = append(l.Stubs, stub)
	}
	return l
}

func isBanner(line string) bool {
	for _, m := range bannerMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

func parseListingLine(line string) (bookmark.Stub, bool) {
	m := listingLine.FindStringSubmatch(line)
	if m == nil {
		return bookmark.Stub{}, false
	}
	id, title, url := m[1], m[2], m[3]

	tags := []string{}
	var words []string
	for _, part := range strings.Split(title, " ") {
		if strings.HasPrefix(part, "#") {
			if len(part) > 1 {
				tags = append(tags, part[1:])
			}
			continue
		}
		if part != "" {
			words = append(words, part)
		}
	}

	rawTitle := strings.TrimSpace(strings.Join(words, " "))
	if rawTitle == "" {
		rawTitle = "Bookmark " + id
	}

	return bookmark.Stub{
		ID:         bookmark.IDPrefix + id,
		RawTitle:   rawTitle,
		RawURL:     strings.TrimSpace(url),
		InlineTags: tags,
	}, true
}
