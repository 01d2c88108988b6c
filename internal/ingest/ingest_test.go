package ingest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aryannaik/nb-bookmarks/internal/bookmark"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func stubs(n int) []bookmark.Stub {
	out := make([]bookmark.Stub, n)
	for i := range out {
		out[i] = bookmark.Stub{
			ID:         fmt.Sprintf("bookmark-%d", i+1),
			RawTitle:   fmt.Sprintf("Title %d", i+1),
			RawURL:     fmt.Sprintf("http://s/%d", i+1),
			InlineTags: []string{"inline"},
		}
	}
	return out
}

func TestEnrichPreservesOrder(t *testing.T) {
	in := stubs(5)
	fetch := func(ctx context.Context, s bookmark.Stub) (bookmark.Detail, error) {
		time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond)
		return bookmark.Detail{CanonicalURL: "http://full/" + s.Selector(), DateAdded: "2024-01-01"}, nil
	}

	for range 10 {
		got := Enrich(context.Background(), in, 0, fetch, nil)

		require.Len(t, got, len(in))
		for i := range in {
			assert.Equal(t, in[i].ID, got[i].ID)
			assert.Equal(t, "http://full/"+in[i].Selector(), got[i].URL)
			assert.False(t, got[i].DateSynthetic)
		}
	}
}

func TestEnrichDegradesFailedFetches(t *testing.T) {
	in := stubs(4)
	var failed []string
	var mu sync.Mutex

	fetch := func(ctx context.Context, s bookmark.Stub) (bookmark.Detail, error) {
		switch s.Selector() {
		case "2":
			return bookmark.Detail{}, errors.New("nb exploded")
		case "3":
			panic("bad output")
		}
		return bookmark.Detail{Tags: []string{"detail"}}, nil
	}
	onFailure := func(s bookmark.Stub, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, s.ID)
	}

	got := Enrich(context.Background(), in, 2, fetch, onFailure)

	require.Len(t, got, 4)
	assert.Equal(t, []string{"detail"}, got[0].Tags)
	assert.Equal(t, []string{"inline"}, got[1].Tags)
	assert.True(t, got[1].DateSynthetic)
	assert.Equal(t, []string{"inline"}, got[2].Tags)
	assert.Equal(t, []string{"detail"}, got[3].Tags)
	assert.ElementsMatch(t, []string{"bookmark-2", "bookmark-3"}, failed)
}

func TestEnrichRespectsLimit(t *testing.T) {
	const limit = 3
	var inFlight, peak atomic.Int32

	fetch := func(ctx context.Context, s bookmark.Stub) (bookmark.Detail, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return bookmark.Detail{}, nil
	}

	got := Enrich(context.Background(), stubs(12), limit, fetch, nil)

	assert.Len(t, got, 12)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

func TestEnrichCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	got := Enrich(ctx, stubs(2), 0, func(context.Context, bookmark.Stub) (bookmark.Detail, error) {
		called = true
		return bookmark.Detail{}, nil
	}, nil)

	assert.False(t, called)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"inline"}, got[0].Tags)
}

func TestEnrichEmpty(t *testing.T) {
	assert.Empty(t, Enrich(context.Background(), nil, 4, nil, nil))
}

func TestAggregateTagCounts(t *testing.T) {
	counts := map[string]int{"a": 3, "b": 0, "c": 5}
	countFor := func(ctx context.Context, tag string) (int, error) { return counts[tag], nil }

	got := AggregateTagCounts(context.Background(), []string{"a", "b", "c"}, 1, countFor)

	assert.Equal(t, []bookmark.Tag{{Name: "c", Count: 5}, {Name: "a", Count: 3}}, got)
}

func TestAggregateTagCountsFailuresAndTies(t *testing.T) {
	countFor := func(ctx context.Context, tag string) (int, error) {
		switch tag {
		case "broken":
			return 7, errors.New("filter failed")
		case "zeta", "alpha", "mid":
			return 2, nil
		}
		return 1, nil
	}
	names := []string{"zeta", "broken", "one", "alpha", "mid"}

	for _, concurrency := range []int{1, 4} {
		got := AggregateTagCounts(context.Background(), names, concurrency, countFor)

		assert.Equal(t, []bookmark.Tag{
			{Name: "alpha", Count: 2},
			{Name: "mid", Count: 2},
			{Name: "zeta", Count: 2},
			{Name: "one", Count: 1},
		}, got, "concurrency %d", concurrency)
	}
}

func TestAggregateTagCountsSequentialOrder(t *testing.T) {
	var seen []string
	countFor := func(ctx context.Context, tag string) (int, error) {
		seen = append(seen, tag)
		return 1, nil
	}

	AggregateTagCounts(context.Background(), []string{"c", "a", "b"}, 0, countFor)

	assert.Equal(t, []string{"c", "a", "b"}, seen)
}
