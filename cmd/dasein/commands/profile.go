package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cotovicz/dasein/cmd/dasein/output"
	"github.com/cotovicz/dasein/pkg/model"
	"github.com/spf13/cobra"
)

var (
	// Profile flags
	profileName string
	profileBio  string
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and edit your profile",
	Long: `Show and edit your profile.

Subcommands:
  show  - Show a profile
  edit  - Edit your display name and bio`,
}

// profileShowCmd shows a profile
var profileShowCmd = &cobra.Command{
	Use:   "show [user-id]",
	Short: "Show a profile (yours when no id is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid := ""
		if len(args) == 1 {
			uid = args[0]
		}
		return runProfileShow(uid)
	},
}

// profileEditCmd edits the signed-in user's profile
var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit your display name and bio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProfileEdit()
	},
}

// saveCmd toggles a post's saved state
var saveCmd = &cobra.Command{
	Use:   "save <post-id>",
	Short: "Save a post, or un-save it when already saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSaveToggle(args[0])
	},
}

// savedCmd lists the saved posts
var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List your saved posts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSavedList()
	},
}

func init() {
	rootCmd.AddCommand(profileCmd, saveCmd, savedCmd)
	profileCmd.AddCommand(profileShowCmd, profileEditCmd)

	profileEditCmd.Flags().StringVar(&profileName, "name", "", "Display name (required)")
	profileEditCmd.Flags().StringVar(&profileBio, "bio", "", "Short bio")
}

func runProfileShow(uid string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if uid == "" {
		user, err := a.requireUser()
		if err != nil {
			return err
		}
		uid = user.UID
	}

	p, err := a.profiles.Get(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to load profile %s: %w", uid, err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	output.Primary("%s", p.DisplayName)
	output.Muted("uid: %s", p.UID)
	if p.Bio != "" {
		fmt.Println(p.Bio)
	}
	output.Muted("%d saved post(s)", len(p.SavedPostIDs))
	return nil
}

func runProfileEdit() error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.requireUser()
	if err != nil {
		return err
	}

	in := model.ProfileEdit{DisplayName: profileName, Bio: profileBio}
	if _, err := a.profiles.Update(ctx, user.UID, in); err != nil {
		return err
	}
	output.Success("Profile updated")
	return nil
}

func runSaveToggle(postID string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.requireUser()
	if err != nil {
		return err
	}

	p, err := a.profiles.Ensure(ctx, user.UID, user.Email)
	if err != nil {
		return err
	}

	wasSaved := p.HasSaved(postID)
	if _, err := a.profiles.ToggleSave(ctx, user.UID, postID, wasSaved); err != nil {
		return err
	}
	if wasSaved {
		output.Success("Removed from saved posts")
	} else {
		output.Success("Saved")
	}
	return nil
}

func runSavedList() error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.requireUser()
	if err != nil {
		return err
	}

	p, err := a.profiles.Ensure(ctx, user.UID, user.Email)
	if err != nil {
		return err
	}

	creations, err := a.social.ResolveSaved(ctx, p.SavedPostIDs)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(creations)
	}

	if len(creations) == 0 {
		output.Info("No saved posts")
		return nil
	}
	printCreationTable(creations)
	return nil
}

func printCreationTable(creations []model.Creation) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCOMMENTS\tPOSTED")
	for _, c := range creations {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			c.ID, c.Title, c.AuthorName, c.CommentCount,
			c.Timestamp.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}
