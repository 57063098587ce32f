package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/nestora/nestora/adapter/cli"
	"github.com/nestora/nestora/internal/billing/application"
	"github.com/nestora/nestora/internal/shared/infrastructure/crypto"
	"github.com/spf13/cobra"
)

var (
	webhookEventPath string
	webhookSignature string
	webhookSign      bool
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Replay a billing webhook payload",
	Long: `Apply a billing provider webhook payload to the subscription ledger,
exactly as the HTTP endpoint would.

Examples:
  nestora billing webhook --event ./event.json --sign
  nestora billing webhook --event ./event.json --signature <hex hmac>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Container == nil {
			return errors.New("webhook replay requires an initialized container")
		}
		if webhookEventPath == "" {
			return errors.New("event path is required")
		}
		if webhookSign && webhookSignature != "" {
			return errors.New("--sign and --signature are mutually exclusive")
		}

		payload, err := os.ReadFile(webhookEventPath)
		if err != nil {
			return err
		}

		signature := webhookSignature
		if webhookSign {
			signature = crypto.SignPayload(payload, app.Container.Config.BillingWebhookSecret)
		}

		result, err := app.Container.ApplyOrderEventHandler.Handle(cmd.Context(), application.ApplyOrderEventCommand{
			Payload:   payload,
			Signature: signature,
		})
		if err != nil {
			return fmt.Errorf("apply webhook: %w", err)
		}

		if !result.Applied {
			fmt.Fprintf(cmd.OutOrStdout(), "Ignored billing event: %s\n", result.EventName)
			return nil
		}

		out, err := json.MarshalIndent(map[string]any{
			"event":     result.EventName,
			"userId":    result.Subscription.UserID,
			"plan":      result.Subscription.Plan,
			"expiresAt": result.Subscription.ExpiresAt,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied billing event:\n%s\n", out)
		return nil
	},
}

func init() {
	webhookCmd.Flags().StringVar(&webhookEventPath, "event", "", "path to webhook event JSON")
	webhookCmd.Flags().StringVar(&webhookSignature, "signature", "", "hex HMAC signature of the payload")
	webhookCmd.Flags().BoolVar(&webhookSign, "sign", false, "sign the payload with the configured webhook secret")
}
