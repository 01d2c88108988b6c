// Package parser reads nb's listing, detail and tag output.
//
// Every entry point normalizes its input with termtext before matching, so
// callers may pass raw terminal output.
package parser

import "regexp"

// Marker is the glyph nb prints in front of bookmark titles.
const Marker = "🔖"

var (
	// [12] 🔖 Some title #tag (https://example.com)
	listingLine = regexp.MustCompile(`\[(\d+)\]\s*` + Marker + `\s*(.+?)\s*\(([^)]+)\)`)

	// Listing banners and separators that can contain the marker glyph.
	bannerMarkers = []string{"Add:", "Help:", "---"}

	detailDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	detailURL     = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9+.\-]*://[^>\s]+)>`)
	detailHeading = regexp.MustCompile(`^##+\s*(.*?)\s*$`)
	tagToken      = regexp.MustCompile(`#([A-Za-z0-9_/\-]+)`)
)

const tagsHeading = "tags"
