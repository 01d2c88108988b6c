package nb

import "fmt"

// Kind identifies one of the queries issued against nb.
type Kind string

const (
	KindListBookmarks Kind = "list-bookmarks"
	KindListTags      Kind = "list-tags"
	KindFilterByTag   Kind = "filter-by-tag"
	KindShowBookmark  Kind = "show-bookmark"
)

// Query is a request for nb output. Arg holds the tag name or bookmark
// selector for the kinds that take one.
type Query struct {
	Kind Kind
	Arg  string
}

// ListBookmarks lists every bookmark.
func ListBookmarks() Query { return Query{Kind: KindListBookmarks} }

// ListTags lists every known tag name.
func ListTags() Query { return Query{Kind: KindListTags} }

// FilterByTag lists the bookmarks carrying tag.
func FilterByTag(tag string) Query { return Query{Kind: KindFilterByTag, Arg: tag} }

// ShowBookmark shows one bookmark by its numeric selector.
func ShowBookmark(selector string) Query { return Query{Kind: KindShowBookmark, Arg: selector} }

// Args returns the nb arguments for q. Arg is passed as a single argv entry,
// never through a shell.
func (q Query) Args() ([]string, error) {
	switch q.Kind {
	case KindListBookmarks:
		return []string{"bookmarks"}, nil
	case KindListTags:
		return []string{"--tags"}, nil
	case KindFilterByTag:
		if q.Arg == "" {
			return nil, fmt.Errorf("filter query: tag name is required")
		}
		return []string{"--tags", q.Arg}, nil
	case KindShowBookmark:
		if q.Arg == "" {
			return nil, fmt.Errorf("show query: bookmark selector is required")
		}
		return []string{"show", q.Arg}, nil
	default:
		return nil, fmt.Errorf("unknown query kind %q", q.Kind)
	}
}

func (q Query) String() string {
	if q.Arg == "" {
		return string(q.Kind)
	}
	return fmt.Sprintf("%s(%s)", q.Kind, q.Arg)
}

// Result is the outcome of running a query. Text holds raw stdout when OK is
// true; Err holds the failure message otherwise.
type Result struct {
	OK   bool
	Text string
	Err  string
}

// Success builds an OK result.
func Success(text string) Result { return Result{OK: true, Text: text} }

// Failure builds a failed result.
func Failure(msg string) Result { return Result{Err: msg} }
