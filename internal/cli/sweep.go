package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamedb-go/internal/services/sweep"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run maintenance sweeps against the store",
	}

	cmd.AddCommand(newSweepJobCmd("positions", "Move players to their spawn point",
		(*sweep.Service).ResetPositions))
	cmd.AddCommand(newSweepJobCmd("containers", "Clear disallowed items from inventories, banks and equipment",
		(*sweep.Service).DesanitizeContainers))
	cmd.AddCommand(newSweepAllCmd())

	return cmd
}

type sweepJob func(*sweep.Service, context.Context) (*sweep.Report, error)

func newSweepJobCmd(use, short string, job sweepJob) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := connectApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			report, err := job(app.Sweeps, cmd.Context())
			if err != nil {
				return err
			}

			output(cmd).Print(report)
			return nil
		},
	}
}

func newSweepAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every sweep once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := connectApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			output(cmd).Print(app.Worker.RunOnce(cmd.Context()))
			return nil
		},
	}
}
