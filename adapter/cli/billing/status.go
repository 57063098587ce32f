package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nestora/nestora/adapter/cli"
	"github.com/spf13/cobra"
)

var statusUserID string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a user's subscription status",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Container == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Billing status requires database connection.")
			return nil
		}
		if statusUserID == "" {
			return errors.New("user id is required")
		}
		userID, err := uuid.Parse(statusUserID)
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}

		result, err := app.Container.CheckSubscriptionHandler.Handle(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if !result.HasActiveSubscription {
			fmt.Fprintln(cmd.OutOrStdout(), "No active subscription (Basic tier).")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Subscription: %s (%s)\n",
			result.Subscription.Plan, result.Subscription.Status)
		fmt.Fprintf(cmd.OutOrStdout(), "Expires: %s\n",
			result.Subscription.ExpiresAt.Local().Format(time.RFC1123))
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusUserID, "user", "", "user id to check")
}
