package commands

import (
	"context"

	"github.com/cotovicz/dasein/cmd/dasein/output"
	"github.com/cotovicz/dasein/pkg/push"
	"github.com/spf13/cobra"
)

// pushCmd registers a device token for the signed-in user
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Register a device token for push delivery",
	Long: `Record a device's push registration token against the signed-in user.

The token comes from the platform messaging SDK; delivery happens upstream.

Examples:
  dasein push register fcm-token-abc123`,
}

var pushRegisterCmd = &cobra.Command{
	Use:   "register <token>",
	Short: "Register a device token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPushRegister(args[0])
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.AddCommand(pushRegisterCmd)
}

func runPushRegister(token string) error {
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

	reg := push.NewRegistry(a.store, a.logger)
	if err := reg.Register(ctx, user.UID, push.StaticToken(token)); err != nil {
		return err
	}
	output.Success("Device token registered")
	return nil
}
