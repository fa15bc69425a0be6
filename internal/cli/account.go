package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamedb-go/internal/model"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account administration",
	}

	cmd.AddCommand(newAccountExistsCmd())
	cmd.AddCommand(newAccountRankCmd())
	cmd.AddCommand(newAccountCountCmd())

	return cmd
}

func newAccountExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <username>",
		Short: "Check whether an account exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := connectApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			exists, err := app.Accounts.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			output(cmd).Print(ExistsResult{Username: args[0], Exists: exists})
			return nil
		},
	}
}

func newAccountRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank <username> <rank>",
		Short: "Set an account's rank (player, moderator, admin, banned)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rank, err := model.ParseRank(args[1])
			if err != nil {
				return err
			}

			app, err := connectApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if err := app.Accounts.SetRank(cmd.Context(), args[0], rank); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Rank of %s set to %s", args[0], rank))
			return nil
		},
	}
}

func newAccountCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the number of registered accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := connectApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			count, err := app.Accounts.RegisteredCount(cmd.Context())
			if err != nil {
				return err
			}

			output(cmd).Print(CountResult{Count: count})
			return nil
		},
	}
}
