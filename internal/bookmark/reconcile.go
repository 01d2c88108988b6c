// Package bookmark defines the bookmark records and merges listing stubs
// with detail output into canonical records.
package bookmark

import "time"

// SyntheticDateLayout is the ISO-8601 layout used for fallback dates.
const SyntheticDateLayout = "2006-01-02T15:04:05.000Z"

// Reconcile merges a stub with its detail record. A nil detail means the
// detail fetch failed or was never made; the result then carries the stub's
// inline tags and a synthetic date.
func Reconcile(stub Stub, detail *Detail) Bookmark {
	return ReconcileAt(stub, detail, time.Now())
}

// ReconcileAt is Reconcile with an explicit clock for the synthetic date.
func ReconcileAt(stub Stub, detail *Detail, now time.Time) Bookmark {
	b := Bookmark{
		ID:    stub.ID,
		Title: stub.RawTitle,
		URL:   stub.RawURL,
		Tags:  UniqueTags(stub.InlineTags),
	}

	if detail != nil {
		b.Tags = UniqueTags(detail.Tags)
		if detail.CanonicalURL != "" {
			b.URL = detail.CanonicalURL
		}
		b.DateAdded = detail.DateAdded
	}

	if b.DateAdded == "" {
		b.DateAdded = now.UTC().Format(SyntheticDateLayout)
		b.DateSynthetic = true
	}

	return b
}

// UniqueTags returns tags with exact duplicates removed, keeping first-seen
// order. The result is never nil.
func UniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
