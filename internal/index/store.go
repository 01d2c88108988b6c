// Package index holds the most recent reconciled bookmark set in memory and
// answers keyword and tag lookups against it.
package index

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aryannaik/nb-bookmarks/internal/bookmark"
)

// Store keeps one snapshot at a time. Replace swaps the whole snapshot; the
// records themselves are never modified.
type Store struct {
	mu        sync.RWMutex
	entries   []bookmark.Bookmark
	byID      map[string]int
	updatedAt time.Time
}

func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Replace discards the current snapshot and installs bookmarks.
func (s *Store) Replace(bookmarks []bookmark.Bookmark) {
	entries := make([]bookmark.Bookmark, len(bookmarks))
	copy(entries, bookmarks)

	byID := make(map[string]int, len(entries))
	for i, b := range entries {
		// Listings can repeat an id; keep the first.
		if _, ok := byID[b.ID]; !ok {
			byID[b.ID] = i
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.byID = byID
	s.updatedAt = time.Now()
}

// All returns a copy of the snapshot in listing order.
func (s *Store) All() []bookmark.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]bookmark.Bookmark, len(s.entries))
	copy(out, s.entries)
	return out
}

// Count returns the number of bookmarks in the snapshot.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// UpdatedAt returns when the snapshot was installed, or the zero time.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// GetByID returns the bookmark with the given id.
func (s *Store) GetByID(id string) (bookmark.Bookmark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return bookmark.Bookmark{}, false
	}
	return s.entries[i], true
}

// ByTag returns the bookmarks carrying tag, compared case-insensitively.
func (s *Store) ByTag(tag string) []bookmark.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []bookmark.Bookmark
	for _, b := range s.entries {
		for _, t := range b.Tags {
			if strings.EqualFold(t, tag) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// SearchResult is a scored bookmark from a search.
type SearchResult struct {
	Bookmark bookmark.Bookmark `json:"bookmark"`
	Score    float32           `json:"score"`
}

const (
	titleWeight = 0.6
	tagWeight   = 0.3
	urlWeight   = 0.1
)

// Search ranks bookmarks by the fraction of query terms found in their title,
// tags and URL. Bookmarks matching no term are left out.
func (s *Store) Search(query string, limit int) []SearchResult {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(s.entries))
	for _, b := range s.entries {
		score := keywordScore(b, terms)
		if score == 0 {
			continue
		}
		results = append(results, SearchResult{Bookmark: b, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	return results
}

// keywordScore returns 0-1 from the weighted share of terms present in each
// field.
func keywordScore(b bookmark.Bookmark, terms []string) float32 {
	title := strings.ToLower(b.Title)
	tags := strings.ToLower(strings.Join(b.Tags, " "))
	url := strings.ToLower(b.URL)

	var score float32
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += titleWeight
		}
		if strings.Contains(tags, term) {
			score += tagWeight
		}
		if strings.Contains(url, term) {
			score += urlWeight
		}
	}
	return score / float32(len(terms))
}

// tokenize splits a query into lowercase terms, filtering short ones. A
// leading "#" is dropped so "#go" matches the tag "go".
func tokenize(s string) []string {
	words := strings.Fields(strings.ToLower(s))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimPrefix(w, "#")
		if len(w) >= 2 {
			terms = append(terms, w)
		}
	}
	return terms
}
