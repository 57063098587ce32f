package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nestora/nestora/adapter/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the marketplace API server: billing webhooks, subscription
checks, listings and the seller analytics dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliApp := GetApp()
		if cliApp == nil || cliApp.Container == nil {
			return errors.New("serve requires an initialized container")
		}
		container := cliApp.Container

		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = container.Config.HTTPAddr
		serverCfg.Health = container.Health
		if serveAddr != "" {
			serverCfg.Addr = serveAddr
		}

		billingHandler := api.NewBillingHandler(
			container.ApplyOrderEventHandler,
			container.CheckSubscriptionHandler,
			container.Logger,
		)
		listingsHandler := api.NewListingsHandler(api.ListingsHandlerConfig{
			Create:     container.CreateListingHandler,
			TrackClick: container.TrackClickHandler,
			Overview:   container.SellerOverviewHandler,
			Listings:   container.ListingRepo,
			Logger:     container.Logger,
		})

		server := api.NewServer(serverCfg, billingHandler, listingsHandler, container.Logger)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
