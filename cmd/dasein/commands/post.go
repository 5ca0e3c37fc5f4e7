package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cotovicz/dasein/cmd/dasein/output"
	"github.com/cotovicz/dasein/pkg/document"
	"github.com/cotovicz/dasein/pkg/live"
	"github.com/cotovicz/dasein/pkg/model"
	"github.com/cotovicz/dasein/pkg/thread"
	"github.com/spf13/cobra"
)

var (
	// Post flags
	postTitle    string
	postBody     string
	postTags     []string
	postImage    string
	removeImage  bool
)

// postCmd represents the post command
var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish and manage posts",
	Long: `Publish and manage posts.

Subcommands:
  create  - Publish a new post
  edit    - Edit an existing post
  delete  - Delete a post and its comments
  show    - Show a post with its comment thread`,
}

// postCreateCmd publishes a new post
var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a new post",
	Long: `Publish a new post.

Examples:
  dasein post create --title "First light" --body "hello"
  dasein post create --title "Dunes" --image ./dunes.jpg --tag travel --tag photo`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPostCreate()
	},
}

// postEditCmd edits an existing post
var postEditCmd = &cobra.Command{
	Use:   "edit <post-id>",
	Short: "Edit an existing post",
	Long: `Edit an existing post. The title, body, and tags are replaced with the
given values; a new image replaces the old one, --remove-image clears it.

Examples:
  dasein post edit 01ARZ3... --title "First light, revised" --body "hello again"
  dasein post edit 01ARZ3... --title "Dunes" --remove-image`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPostEdit(args[0])
	},
}

// postDeleteCmd deletes a post together with its comments
var postDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete a post and all of its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPostDelete(args[0])
	},
}

// postShowCmd shows a post with its comment thread
var postShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post with its comment thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPostShow(args[0])
	},
}

func init() {
	rootCmd.AddCommand(postCmd)
	postCmd.AddCommand(postCreateCmd, postEditCmd, postDeleteCmd, postShowCmd)

	for _, c := range []*cobra.Command{postCreateCmd, postEditCmd} {
		c.Flags().StringVar(&postTitle, "title", "", "Post title (required)")
		c.Flags().StringVar(&postBody, "body", "", "Post body text")
		c.Flags().StringArrayVar(&postTags, "tag", nil, "Tag (repeatable)")
	}
	postCreateCmd.Flags().StringVar(&postImage, "image", "", "Local image file to attach")
	postEditCmd.Flags().StringVar(&postImage, "image", "", "Local image file replacing the current one")
	postEditCmd.Flags().BoolVar(&removeImage, "remove-image", false, "Clear the attached image")
}

func runPostCreate() error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireUser(); err != nil {
		return err
	}

	in := model.NewCreation{
		Title:     postTitle,
		Body:      postBody,
		Tags:      postTags,
		ImagePath: postImage,
	}
	if err := a.social.Create(ctx, in); err != nil {
		return err
	}
	output.Success("Post published")
	return nil
}

func runPostEdit(postID string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireUser(); err != nil {
		return err
	}

	in := model.CreationEdit{
		Title:        postTitle,
		Body:         postBody,
		Tags:         postTags,
		NewImagePath: postImage,
		ImageRemoved: removeImage,
	}
	if err := a.social.Update(ctx, postID, in); err != nil {
		return err
	}
	output.Success("Post updated")
	return nil
}

func runPostDelete(postID string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireUser(); err != nil {
		return err
	}

	if err := a.social.Delete(ctx, postID); err != nil {
		return err
	}
	output.Success("Post deleted")
	return nil
}

func runPostShow(postID string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	q := document.NewQuery(model.CollectionCreations).WhereID(postID)
	creations, err := live.FetchOnce(ctx, a.store, q, model.DecodeCreation, a.logger)
	if err != nil {
		return fmt.Errorf("failed to load post: %w", err)
	}
	if len(creations) == 0 {
		return fmt.Errorf("post %s not found", postID)
	}
	creation := creations[0]

	cq := document.NewQuery(model.CollectionComments).
		WhereEq(model.FieldCreationID, postID).
		OrderBy(model.FieldTimestamp, document.Ascending)
	comments, err := live.FetchOnce(ctx, a.store, cq, model.DecodeComment, a.logger)
	if err != nil {
		return fmt.Errorf("failed to load comments: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Post     model.Creation  `json:"post"`
			Comments []model.Comment `json:"comments"`
		}{creation, comments})
	}

	output.Primary("%s", creation.Title)
	output.Muted("%s · %s · %d comment(s)", creation.AuthorName,
		creation.Timestamp.Format("2006-01-02 15:04"), creation.CommentCount)
	if len(creation.Tags) > 0 {
		tags := make([]string, len(creation.Tags))
		for i, t := range creation.Tags {
			tags[i] = output.Tag(t)
		}
		fmt.Println(strings.Join(tags, " "))
	}
	if creation.Body != "" {
		fmt.Println()
		fmt.Println(creation.Body)
	}
	if creation.ImageURL != "" {
		output.Muted("image: %s", creation.ImageURL)
	}

	if len(comments) > 0 {
		output.Section("Comments")
		ix := thread.Build(comments)
		ix.Walk(func(c model.Comment, depth int) {
			indent := strings.Repeat("    ", depth)
			fmt.Printf("%s%s  [%s]\n", indent, c.AuthorName, c.ID)
			fmt.Printf("%s%s\n", indent, c.Text)
		})
	}
	return nil
}
