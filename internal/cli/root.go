package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamedb-go/internal/config"
	"github.com/mcoot/gamedb-go/internal/factory"
)

var opts *Options

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts = DefaultOptions()

	rootCmd := &cobra.Command{
		Use:   "gamedb",
		Short: "Persistence gateway for the game server",
		Long: `gamedb owns the game server's account and world-state storage.

It serves the account and sweep admin API, and runs the maintenance
sweeps and account administration directly against the configured store.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", opts.ConfigPath, "Config file path (env: GAMEDB_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", opts.Output, "Output format: text, json")
	rootCmd.PersistentFlags().StringVar(&opts.ServerURL, "server", opts.ServerURL, "Admin server URL (env: GAMEDB_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.Token, "token", opts.Token, "Admin token (env: GAMEDB_SERVER_ADMIN_TOKEN)")

	// Add subcommands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(opts.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// loadApp reads the configuration and wires the application. Logs go to
// stderr. The sweep schedule only applies when scheduled is set.
func loadApp(cmd *cobra.Command, scheduled bool) (*factory.App, *config.Config, error) {
	appCfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	sweepCfg := appCfg.Sweep
	if !scheduled {
		sweepCfg.Enabled = false
	}

	app, err := factory.New(factory.Config{
		Logger:     appCfg.NewLogger(cmd.ErrOrStderr()),
		Store:      appCfg.Store,
		Content:    appCfg.Content,
		BcryptCost: appCfg.BcryptCost,
		Sweep:      sweepCfg,
	})
	if err != nil {
		return nil, nil, err
	}
	return app, appCfg, nil
}

// connectApp wires the application and fails unless the store connects
func connectApp(cmd *cobra.Command) (*factory.App, error) {
	app, _, err := loadApp(cmd, false)
	if err != nil {
		return nil, err
	}

	if outcome := app.Connect(cmd.Context()); !outcome.Ready() {
		return nil, outcome.Err()
	}
	return app, nil
}
