package commands

import (
	"context"

	"github.com/cotovicz/dasein/cmd/dasein/output"
	"github.com/cotovicz/dasein/pkg/model"
	"github.com/spf13/cobra"
)

var (
	// Comment flags
	commentText   string
	commentParent string
)

// commentCmd represents the comment command
var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Add and manage comments",
	Long: `Add and manage comments on posts.

Subcommands:
  add     - Comment on a post
  edit    - Edit a comment's text
  delete  - Delete a comment`,
}

// commentAddCmd posts a comment
var commentAddCmd = &cobra.Command{
	Use:   "add <post-id>",
	Short: "Comment on a post",
	Long: `Comment on a post. Pass --parent to reply to another comment on the
same post.

Examples:
  dasein comment add 01ARZ3... --text "love this"
  dasein comment add 01ARZ3... --text "same" --parent 01BX5Z...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommentAdd(args[0])
	},
}

// commentEditCmd edits a comment's text
var commentEditCmd = &cobra.Command{
	Use:   "edit <comment-id>",
	Short: "Edit a comment's text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommentEdit(args[0])
	},
}

// commentDeleteCmd deletes a comment
var commentDeleteCmd = &cobra.Command{
	Use:   "delete <post-id> <comment-id>",
	Short: "Delete a comment from a post",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommentDelete(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(commentCmd)
	commentCmd.AddCommand(commentAddCmd, commentEditCmd, commentDeleteCmd)

	commentAddCmd.Flags().StringVar(&commentText, "text", "", "Comment text (required)")
	commentAddCmd.Flags().StringVar(&commentParent, "parent", "", "Id of the comment being replied to")
	commentEditCmd.Flags().StringVar(&commentText, "text", "", "Replacement text (required)")
}

func runCommentAdd(postID string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireUser(); err != nil {
		return err
	}

	in := model.NewComment{Text: commentText, ParentID: commentParent}
	if err := a.social.AddComment(ctx, postID, in); err != nil {
		return err
	}
	output.Success("Comment posted")
	return nil
}

func runCommentEdit(commentID string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireUser(); err != nil {
		return err
	}

	if err := a.social.UpdateComment(ctx, commentID, commentText); err != nil {
		return err
	}
	output.Success("Comment updated")
	return nil
}

func runCommentDelete(postID, commentID string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireUser(); err != nil {
		return err
	}

	if err := a.social.DeleteComment(ctx, commentID, postID); err != nil {
		return err
	}
	output.Success("Comment deleted")
	return nil
}
