package parser

import (
	"strings"

	"github.com/aryannaik/nb-bookmarks/internal/bookmark"
	"github.com/aryannaik/nb-bookmarks/internal/termtext"
)

type detailState int

const (
	scanning detailState = iota
	inTags
	done
)

// ParseDetail extracts tags, the added date and the full URL from "nb show"
// output for a single bookmark.
//
// The first line starting with a YYYY-MM-DD date becomes DateAdded and the
// first <scheme://...> URL becomes CanonicalURL. Tags are read from the
// "## Tags" section up to the next "##" heading.
func ParseDetail(text string) bookmark.Detail {
	var (
		d     bookmark.Detail
		tags  []string
		state = scanning
	)

	for _, line := range termtext.Lines(text) {
		if state == done {
			break
		}

		if d.DateAdded == "" && detailDate.MatchString(line) {
			d.DateAdded = strings.TrimSpace(line)
		}
		if d.CanonicalURL == "" {
			if m := detailURL.FindStringSubmatch(line); m != nil {
				d.CanonicalURL = m[1]
			}
		}

		if heading, ok := headingText(line); ok {
			if strings.EqualFold(heading, tagsHeading) {
				state = inTags
			} else if state == inTags {
				state = done
			}
			continue
		}

		if state == inTags {
			for _, m := range tagToken.FindAllStringSubmatch(line, -1) {
				tags = append(tags, m[1])
			}
		}
	}

	d.Tags = bookmark.UniqueTags(tags)
	return d
}

func headingText(line string) (string, bool) {
	m := detailHeading.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return m[1], true
}
