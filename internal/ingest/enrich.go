// Package ingest runs nb queries and turns their output into bookmark and
// tag records.
package ingest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/aryannaik/nb-bookmarks/internal/bookmark"
)

// DetailFetcher returns the detail record for one stub.
type DetailFetcher func(ctx context.Context, stub bookmark.Stub) (bookmark.Detail, error)

// FailureFunc is told about each stub whose detail could not be fetched.
type FailureFunc func(stub bookmark.Stub, err error)

// Enrich fetches the detail of every stub concurrently, with at most limit
// fetches in flight (limit <= 0 means no bound), and reconciles each stub
// with its detail. Output index i always corresponds to stubs[i].
//
// A failed or panicking fetch degrades that record to Reconcile(stub, nil);
// the batch itself never fails.
func Enrich(ctx context.Context, stubs []bookmark.Stub, limit int, fetch DetailFetcher, onFailure FailureFunc) []bookmark.Bookmark {
	out := make([]bookmark.Bookmark, len(stubs))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, stub := range stubs {
		g.Go(func() error {
			detail, err := fetchSafely(ctx, fetch, stub)
			if err != nil {
				if onFailure != nil {
					onFailure(stub, err)
				}
				out[i] = bookmark.Reconcile(stub, nil)
				return nil
			}
			out[i] = bookmark.Reconcile(stub, &detail)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func fetchSafely(ctx context.Context, fetch DetailFetcher, stub bookmark.Stub) (d bookmark.Detail, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detail for %s: panic: %v", stub.ID, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return bookmark.Detail{}, err
	}
	return fetch(ctx, stub)
}
