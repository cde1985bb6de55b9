package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/trashbot/internal/domain"
)

func newPeersCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peers",
		Short: "Manage the blocked and allowed peer lists",
	}

	cmd.AddCommand(
		newPeersListCmd(app),
		newPeersBlockCmd(app),
		newPeersUnblockCmd(app),
		newPeersAllowCmd(app),
	)

	return cmd
}

func newPeersListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the peer roster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster, err := app.roster.List(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), app.rosterRenderer(roster))
			return err
		},
	}
}

func newPeersBlockCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "block <peer-id>",
		Short: "Block a peer from trading with the bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := domain.PeerID(args[0])
			if err := app.roster.Block(cmd.Context(), peer); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Blocked peer %s\n", peer)
			return nil
		},
	}
}

func newPeersUnblockCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <peer-id>",
		Short: "Remove a peer from the block list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := domain.PeerID(args[0])
			if err := app.roster.Unblock(cmd.Context(), peer); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unblocked peer %s\n", peer)
			return nil
		},
	}
}

func newPeersAllowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "allow <peer-id>",
		Short: "Exempt a peer from automatic friend removal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := domain.PeerID(args[0])
			if err := app.roster.Allow(cmd.Context(), peer); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Allowed peer %s\n", peer)
			return nil
		},
	}
}
