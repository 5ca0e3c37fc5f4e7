package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cotovicz/dasein/cmd/dasein/output"
	"github.com/spf13/cobra"
)

var password string

// signupCmd creates an account
var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Create an account and sign in",
	Long: `Create an account with an email and password, then sign in.

Examples:
  dasein signup alice@example.com --password hunter22
  dasein signup alice@example.com            # prompts for the password`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSignUp(args[0])
	},
}

// signinCmd signs in to an existing account
var signinCmd = &cobra.Command{
	Use:   "signin <email>",
	Short: "Sign in to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSignIn(args[0])
	},
}

// signoutCmd clears the persisted session
var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out and discard the persisted session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSignOut()
	},
}

func init() {
	rootCmd.AddCommand(signupCmd, signinCmd, signoutCmd)
	signupCmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	signinCmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
}

func runSignUp(email string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pw, err := resolvePassword()
	if err != nil {
		return err
	}

	user, err := a.auth.SignUp(ctx, email, pw)
	if err != nil {
		return err
	}
	if _, err := a.profiles.Ensure(ctx, user.UID, user.Email); err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	output.Success("Account created, signed in as %s", user.Email)
	return nil
}

func runSignIn(email string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pw, err := resolvePassword()
	if err != nil {
		return err
	}

	user, err := a.auth.SignIn(ctx, email, pw)
	if err != nil {
		return err
	}
	if _, err := a.profiles.Ensure(ctx, user.UID, user.Email); err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	output.Success("Signed in as %s", user.Email)
	return nil
}

func runSignOut() error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	a.auth.SignOut()
	a.clearSession()
	output.Success("Signed out")
	return nil
}

func resolvePassword() (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
