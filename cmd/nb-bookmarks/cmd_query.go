package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aryannaik/nb-bookmarks/internal/index"
)

var searchLimit int

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List every bookmark with tags, date and full URL",
	Args:  cobra.NoArgs,
	RunE:  runBookmarks,
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags with the number of bookmarks using each",
	Args:  cobra.NoArgs,
	RunE:  runTags,
}

var filterCmd = &cobra.Command{
	Use:   "filter [tag]",
	Short: "List the bookmarks carrying a tag",
	Long: `Lists the bookmarks nb reports for a tag. Records come from the listing
alone, so tags and dates are not looked up per bookmark.`,
	Args: cobra.ExactArgs(1),
	RunE: runFilter,
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one bookmark by its nb id",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Keyword search over titles, tags and URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results")
}

func runBookmarks(cmd *cobra.Command, args []string) error {
	bookmarks, err := newService().Bookmarks(cmd.Context())
	if err != nil {
		return err
	}
	logger.Debug("listed bookmarks", zap.Int("count", len(bookmarks)))
	return printJSON(cmd.OutOrStdout(), bookmarks)
}

func runTags(cmd *cobra.Command, args []string) error {
	tags, err := newService().Tags(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), tags)
}

func runFilter(cmd *cobra.Command, args []string) error {
	bookmarks, err := newService().FilterByTag(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), bookmarks)
}

func runShow(cmd *cobra.Command, args []string) error {
	b, err := newService().Show(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), b)
}

func runSearch(cmd *cobra.Command, args []string) error {
	bookmarks, err := newService().Bookmarks(cmd.Context())
	if err != nil {
		return err
	}

	store := index.NewStore()
	store.Replace(bookmarks)

	query := args[0]
	for _, a := range args[1:] {
		query += " " + a
	}
	return printJSON(cmd.OutOrStdout(), store.Search(query, searchLimit))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
