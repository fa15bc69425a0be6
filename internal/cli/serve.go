package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamedb-go/internal/api"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API and scheduled sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, appCfg, err := loadApp(cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			logger := app.Logger

			// Handle graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// A failed store is terminal; the server keeps answering with 503
			if outcome := app.Connect(ctx); !outcome.Ready() {
				logger.Error("serving without a store", "error", outcome.Err())
			}

			router := api.NewRouter(api.RouterConfig{
				Logger:     logger,
				Accounts:   app.Accounts,
				Sweeps:     app.Sweeps,
				Stores:     app.Conn,
				AdminToken: appCfg.Server.AdminToken,
			})
			server := api.NewServer(router, appCfg.Server, logger)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			// Wait for shutdown or error
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("shutdown signal received")
			}

			return server.Shutdown(context.Background())
		},
	}
}
