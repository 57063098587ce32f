package billing

import "github.com/spf13/cobra"

// Cmd is the billing command group.
var Cmd = &cobra.Command{
	Use:   "billing",
	Short: "Manage subscriptions and billing webhooks",
	Long:  `Inspect subscription status and replay billing provider webhooks.`,
}

func init() {
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(webhookCmd)
}
