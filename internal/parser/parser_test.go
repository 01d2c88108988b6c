package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryannaik/nb-bookmarks/internal/bookmark"
)

func TestParseListingInlineTags(t *testing.T) {
	got := ParseListing("[3] 🔖 Great Article #news #tech (http://x.com)")

	want := []bookmark.Stub{{
		ID:         "bookmark-3",
		RawTitle:   "Great Article",
		RawURL:     "http://x.com",
		InlineTags: []string{"news", "tech"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseListing() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseListingSkipsBannersInOrder(t *testing.T) {
	text := "\x1b[1mHome\x1b[0m\n" +
		"------------------\n" +
		"[1] 🔖 First (https://one.example)\n" +
		"Add: nb <url> Help: nb help bookmark 🔖\n" +
		"\n" +
		"[2] 🔖 \x1b[36mSecond\x1b[0m (https://two.example)\n" +
		"--- 🔖 ---\n" +
		"[10] 🔖 Third (example.com/…)\n" +
		"just some text\n"

	got := ParseListing(text)

	require.Len(t, got, 3)
	assert.Equal(t, "bookmark-1", got[0].ID)
	assert.Equal(t, "Second", got[1].RawTitle)
	assert.Equal(t, "bookmark-10", got[2].ID)
	assert.Equal(t, "example.com/…", got[2].RawURL)
}

func TestParseListingPlaceholderTitle(t *testing.T) {
	got := ParseListing("[8] 🔖 #only #tags (http://t.co)")

	require.Len(t, got, 1)
	assert.Equal(t, "Bookmark 8", got[0].RawTitle)
	assert.Equal(t, []string{"only", "tags"}, got[0].InlineTags)
}

func TestParseListingKeepsDuplicateIDs(t *testing.T) {
	got := ParseListing("[4] 🔖 A (http://a)\n[4] 🔖 B (http://b)\n")

	require.Len(t, got, 2)
	assert.Equal(t, got[0].ID, got[1].ID)
	assert.Equal(t, []string{"A", "B"}, []string{got[0].RawTitle, got[1].RawTitle})
}

func TestParseListingCollapsesTitleSpacing(t *testing.T) {
	got := ParseListing("[5]  🔖   Spaced    out  #x   title   (http://s)")

	require.Len(t, got, 1)
	assert.Equal(t, "Spaced out title", got[0].RawTitle)
}

func TestScanListingCountsSkipped(t *testing.T) {
	l := ScanListing("[1] 🔖 ok (http://ok)\n🔖 no id or url\n[x] 🔖 bad (http://bad)\nplain\n")

	assert.Len(t, l.Stubs, 1)
	assert.Equal(t, 2, l.Skipped)
}

func TestParseListingSurvivesStrayEscapes(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"bare escape on its own line", "\x1b\n[1] 🔖 First (http://a)\n[2] 🔖 Second (http://b)\n"},
		{"bare escape ending a line", "header\x1b\n[1] 🔖 First (http://a)\n[2] 🔖 Second (http://b)\n"},
		{"bare escape mid line", "[1] 🔖 Fi\x1brst (http://a)\n[2] 🔖 Second (http://b)\n"},
		{"unterminated osc", "\x1b]0;nb\n[1] 🔖 First (http://a)\n[2] 🔖 Second (http://b)\n"},
		{"unterminated dcs", "\x1bP\n[1] 🔖 First (http://a)\n[2] 🔖 Second (http://b)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseListing(tt.text)

			require.Len(t, got, 2)
			assert.Equal(t, "bookmark-1", got[0].ID)
			assert.Equal(t, "First", got[0].RawTitle)
			assert.Equal(t, "http://b", got[1].RawURL)
		})
	}
}

func TestParseDetailSurvivesStrayEscapes(t *testing.T) {
	got := ParseDetail("2024-02-11\x1b\n<https://a.example>\n\x1b]0;nb\n## Tags\n#go\n")

	assert.Equal(t, "2024-02-11", got.DateAdded)
	assert.Equal(t, "https://a.example", got.CanonicalURL)
	assert.Equal(t, []string{"go"}, got.Tags)
}

func TestParseListingEmpty(t *testing.T) {
	assert.Empty(t, ParseListing(""))
}

const showOutput = "2024-02-11 08:15:42\n" +
	"\x1b[1m# Go Concurrency Patterns\x1b[0m\n" +
	"\n" +
	"<https://go.dev/talks/2012/concurrency.slide#1>\n" +
	"\n" +
	"## Tags\n" +
	"\n" +
	"#go #concurrency #talks/2012\n" +
	"#go #my_tag-2\n" +
	"\n" +
	"## Content\n" +
	"\n" +
	"#notatag <https://other.example>\n"

func TestParseDetail(t *testing.T) {
	got := ParseDetail(showOutput)

	want := bookmark.Detail{
		Tags:         []string{"go", "concurrency", "talks/2012", "my_tag-2"},
		DateAdded:    "2024-02-11 08:15:42",
		CanonicalURL: "https://go.dev/talks/2012/concurrency.slide#1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDetail() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDetailWithoutTagsSection(t *testing.T) {
	got := ParseDetail("# Title\n\n<http://x.example/a>\n\n#looks-like-a-tag\n")

	assert.Empty(t, got.Tags)
	assert.Empty(t, got.DateAdded)
	assert.Equal(t, "http://x.example/a", got.CanonicalURL)
}

func TestParseDetailTagsAtEndOfText(t *testing.T) {
	got := ParseDetail("## tags\n#a #b #a")

	assert.Equal(t, []string{"a", "b"}, got.Tags)
}

func TestParseDetailIgnoresHeadingsBeforeTags(t *testing.T) {
	got := ParseDetail("## Description\n#skip\n## Tags\n#keep\n## Related\n#skip2\n")

	assert.Equal(t, []string{"keep"}, got.Tags)
}

func TestParseTagNames(t *testing.T) {
	got := ParseTagNames("\x1b[33m#news\x1b[0m\n  #tech  \nnot a tag\n#news\n#\n#dev/go\n")

	assert.Equal(t, []string{"news", "tech", "dev/go"}, got)
}
