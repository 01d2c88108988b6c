package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aryannaik/nb-bookmarks/internal/bookmark"
	"github.com/aryannaik/nb-bookmarks/internal/config"
	"github.com/aryannaik/nb-bookmarks/internal/index"
	"github.com/aryannaik/nb-bookmarks/internal/nb"
)

var cannedNB = map[string]nb.Result{
	nb.ListBookmarks().String():     nb.Success("[1] 🔖 Go Blog #go (go.dev/blog)\n[2] 🔖 Notes (notes.example)\n"),
	nb.ShowBookmark("1").String():   nb.Success("2024-03-01\n<https://go.dev/blog/>\n## Tags\n#go #blog\n"),
	nb.ShowBookmark("2").String():   nb.Failure("exit status 1"),
	nb.ListTags().String():          nb.Success("#go\n#blog\n"),
	nb.FilterByTag("go").String():   nb.Success("[1] 🔖 Go Blog (go.dev/blog)\n"),
	nb.FilterByTag("blog").String(): nb.Failure("boom"),
}

// runCLI executes the root command against canned nb output and returns
// stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	orig := newRunner
	newRunner = func(config.Config, *zap.Logger) nb.Runner {
		return nb.RunnerFunc(func(ctx context.Context, q nb.Query) nb.Result {
			if r, ok := cannedNB[q.String()]; ok {
				return r
			}
			return nb.Failure("unexpected query " + q.String())
		})
	}
	t.Cleanup(func() { newRunner = orig })
	t.Chdir(t.TempDir())

	resetFlags(rootCmd.PersistentFlags())
	for _, c := range rootCmd.Commands() {
		resetFlags(c.Flags())
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags undoes flag values left over from a previous Execute.
func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestBookmarksCmd(t *testing.T) {
	out, err := runCLI(t, "bookmarks", "--concurrency", "1")
	require.NoError(t, err)

	var got []bookmark.Bookmark
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "https://go.dev/blog/", got[0].URL)
	assert.Equal(t, []string{"go", "blog"}, got[0].Tags)
	assert.Equal(t, "notes.example", got[1].URL)
	assert.True(t, got[1].DateSynthetic)
	assert.Equal(t, 1, cfg.DetailConcurrency)
}

func TestTagsCmd(t *testing.T) {
	out, err := runCLI(t, "tags")
	require.NoError(t, err)

	var got []bookmark.Tag
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []bookmark.Tag{{Name: "go", Count: 1}}, got)
}

func TestFilterCmd(t *testing.T) {
	out, err := runCLI(t, "filter", "go")
	require.NoError(t, err)

	var got []bookmark.Bookmark
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Go Blog", got[0].Title)
}

func TestFilterCmdFailure(t *testing.T) {
	_, err := runCLI(t, "filter", "blog")
	assert.ErrorIs(t, err, nb.ErrCollaborator)
}

func TestShowCmd(t *testing.T) {
	out, err := runCLI(t, "show", "1")
	require.NoError(t, err)

	var got bookmark.Bookmark
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "2024-03-01", got.DateAdded)
}

func TestSearchCmd(t *testing.T) {
	out, err := runCLI(t, "search", "go", "--limit", "5")
	require.NoError(t, err)

	var got []index.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "bookmark-1", got[0].Bookmark.ID)
}

func TestTimeoutFlagValidated(t *testing.T) {
	_, err := runCLI(t, "tags", "--timeout", "-1s")
	assert.ErrorContains(t, err, "query timeout")
}
