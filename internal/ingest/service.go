package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aryannaik/nb-bookmarks/internal/bookmark"
	"github.com/aryannaik/nb-bookmarks/internal/nb"
	"github.com/aryannaik/nb-bookmarks/internal/parser"
)

// ErrNotFound is returned by Show when no bookmark has the selector.
var ErrNotFound = errors.New("bookmark not found")

// Options tunes the fan-out of a Service.
type Options struct {
	// DetailConcurrency bounds concurrent "show" queries; <= 0 is unbounded.
	DetailConcurrency int
	// TagConcurrency bounds concurrent tag counts; <= 1 counts sequentially.
	TagConcurrency int
}

// Service answers bookmark and tag queries from nb output. It holds no state
// between calls; every call builds a fresh record set.
type Service struct {
	runner nb.Runner
	opts   Options
	logger *zap.Logger
}

func NewService(runner nb.Runner, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		runner: runner,
		opts:   opts,
		logger: logger,
	}
}

// Bookmarks lists every bookmark and enriches each one with its detail.
// It fails when the listing query fails or when ctx ends before every
// detail was fetched.
func (s *Service) Bookmarks(ctx context.Context) ([]bookmark.Bookmark, error) {
	stubs, err := s.listing(ctx, nb.ListBookmarks())
	if err != nil {
		return nil, err
	}
	bookmarks := s.enrich(ctx, stubs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// FilterByTag lists the bookmarks carrying tag. Records come from the
// listing alone and are not enriched.
func (s *Service) FilterByTag(ctx context.Context, tag string) ([]bookmark.Bookmark, error) {
	stubs, err := s.listing(ctx, nb.FilterByTag(tag))
	if err != nil {
		return nil, err
	}
	out := make([]bookmark.Bookmark, len(stubs))
	for i, stub := range stubs {
		out[i] = bookmark.Reconcile(stub, nil)
	}
	return out, nil
}

// Show returns the enriched bookmark with the given numeric selector
// ("12" or "bookmark-12").
func (s *Service) Show(ctx context.Context, selector string) (bookmark.Bookmark, error) {
	selector = strings.TrimPrefix(selector, bookmark.IDPrefix)

	stubs, err := s.listing(ctx, nb.ListBookmarks())
	if err != nil {
		return bookmark.Bookmark{}, err
	}
	for _, stub := range stubs {
		if stub.Selector() == selector {
			b := s.enrich(ctx, []bookmark.Stub{stub})[0]
			if err := ctx.Err(); err != nil {
				return bookmark.Bookmark{}, err
			}
			return b, nil
		}
	}
	return bookmark.Bookmark{}, fmt.Errorf("%w: %s", ErrNotFound, selector)
}

// Tags lists the known tag names and counts the bookmarks carrying each.
// It fails when the tag-name query fails or ctx ends before every tag was
// counted; per-tag failures count as 0.
func (s *Service) Tags(ctx context.Context) ([]bookmark.Tag, error) {
	q := nb.ListTags()
	res := s.runner.Execute(ctx, q)
	if err := res.Error(q); err != nil {
		return nil, err
	}

	names := parser.ParseTagNames(res.Text)
	s.logger.Debug("counting tags", zap.Int("tags", len(names)))

	tags := AggregateTagCounts(ctx, names, s.opts.TagConcurrency, s.countTag)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *Service) listing(ctx context.Context, q nb.Query) ([]bookmark.Stub, error) {
	res := s.runner.Execute(ctx, q)
	if err := res.Error(q); err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.Text) == "" {
		s.logger.Warn("nb returned no output", zap.Stringer("query", q))
		return nil, nil
	}

	l := parser.ScanListing(res.Text)
	if l.Skipped > 0 {
		s.logger.Debug("skipped unparseable listing lines",
			zap.Stringer("query", q),
			zap.Int("skipped", l.Skipped))
	}
	return l.Stubs, nil
}

func (s *Service) enrich(ctx context.Context, stubs []bookmark.Stub) []bookmark.Bookmark {
	return Enrich(ctx, stubs, s.opts.DetailConcurrency, s.fetchDetail, func(stub bookmark.Stub, err error) {
		s.logger.Warn("using listing data only",
			zap.String("bookmark", stub.ID),
			zap.Error(err))
	})
}

func (s *Service) fetchDetail(ctx context.Context, stub bookmark.Stub) (bookmark.Detail, error) {
	q := nb.ShowBookmark(stub.Selector())
	res := s.runner.Execute(ctx, q)
	if err := res.Error(q); err != nil {
		return bookmark.Detail{}, err
	}
	if strings.TrimSpace(res.Text) == "" {
		return bookmark.Detail{}, fmt.Errorf("%s: empty output", q)
	}
	return parser.ParseDetail(res.Text), nil
}

func (s *Service) countTag(ctx context.Context, tag string) (int, error) {
	q := nb.FilterByTag(tag)
	res := s.runner.Execute(ctx, q)
	if err := res.Error(q); err != nil {
		s.logger.Debug("tag count failed", zap.String("tag", tag), zap.Error(err))
		return 0, err
	}
	return len(parser.ParseListing(res.Text)), nil
}
