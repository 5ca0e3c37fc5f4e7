package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cotovicz/dasein/cmd/dasein/output"
	"github.com/cotovicz/dasein/cmd/dasein/tui"
	"github.com/cotovicz/dasein/pkg/document"
	"github.com/cotovicz/dasein/pkg/feed"
	"github.com/cotovicz/dasein/pkg/live"
	"github.com/cotovicz/dasein/pkg/model"
	"github.com/spf13/cobra"
)

var (
	// Feed flags
	feedQuery   string
	feedTags    []string
	interactive bool
)

// feedCmd shows the feed
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the post feed",
	Long: `Show the post feed, newest first, optionally filtered by free text
and tags. Text matches case-insensitively against title, body, and author
name; multiple tags combine with OR.

Examples:
  dasein feed                              # Full feed
  dasein feed --query dunes                # Text filter
  dasein feed --tag travel --tag photo     # Posts tagged travel OR photo
  dasein feed --interactive                # Live TUI browser`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeed()
	},
}

// tagsCmd manages the configured tag list
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the available tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTagsList()
	},
}

// tagsSetCmd replaces the configured tag list
var tagsSetCmd = &cobra.Command{
	Use:   "set <tag>...",
	Short: "Replace the available tag list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTagsSet(args)
	},
}

func init() {
	rootCmd.AddCommand(feedCmd, tagsCmd)
	tagsCmd.AddCommand(tagsSetCmd)

	feedCmd.Flags().StringVarP(&feedQuery, "query", "q", "", "Free-text filter")
	feedCmd.Flags().StringArrayVar(&feedTags, "tag", nil, "Tag filter (repeatable, OR semantics)")
	feedCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the live feed in a TUI")
}

func runFeed() error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if interactive {
		tags, err := a.social.AvailableTags(ctx)
		if err != nil {
			a.logger.Debug("no tag configuration", "error", err)
		}
		return tui.RunFeedUI(ctx, a.store, tags)
	}

	q := document.NewQuery(model.CollectionCreations).
		OrderBy(model.FieldTimestamp, document.Descending)
	base, err := live.FetchOnce(ctx, a.store, q, model.DecodeCreation, a.logger)
	if err != nil {
		return fmt.Errorf("failed to load feed: %w", err)
	}

	selected := make(map[string]struct{}, len(feedTags))
	for _, t := range feedTags {
		selected[t] = struct{}{}
	}
	creations := feed.Filter(base, feedQuery, selected)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(creations)
	}

	if len(creations) == 0 {
		output.Info("No posts match")
		return nil
	}
	printCreationTable(creations)
	return nil
}

func runTagsList() error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tags, err := a.social.AvailableTags(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tags)
	}
	for _, t := range tags {
		fmt.Println(output.Tag(t))
	}
	return nil
}

func runTagsSet(tags []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireUser(); err != nil {
		return err
	}

	fields := map[string]any{model.FieldAvailableTags: tags}
	if err := a.store.Set(ctx, model.CollectionConfig, model.ConfigTagsDocID, fields); err != nil {
		return fmt.Errorf("failed to store tag list: %w", err)
	}
	output.Success("Tag list updated (%d tags)", len(tags))
	return nil
}
