package ingest

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/aryannaik/nb-bookmarks/internal/bookmark"
)

// CountFunc returns how many bookmarks carry tag.
type CountFunc func(ctx context.Context, tag string) (int, error)

// AggregateTagCounts counts each tag name with countFor and returns the tags
// with a positive count, highest count first and by name within equal counts.
// A counting error counts as zero.
//
// With concurrency <= 1 the names are counted one at a time in the given
// order; otherwise up to concurrency counts run at once.
func AggregateTagCounts(ctx context.Context, names []string, concurrency int, countFor CountFunc) []bookmark.Tag {
	counts := make([]int, len(names))

	count := func(i int) {
		if ctx.Err() != nil {
			return
		}
		n, err := countFor(ctx, names[i])
		if err != nil || n < 0 {
			n = 0
		}
		counts[i] = n
	}

	if concurrency <= 1 {
		for i := range names {
			count(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(concurrency)
		for i := range names {
			g.Go(func() error {
				count(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	tags := make([]bookmark.Tag, 0, len(names))
	for i, name := range names {
		if counts[i] > 0 {
			tags = append(tags, bookmark.Tag{Name: name, Count: counts[i]})
		}
	}

	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})

	return tags
}
