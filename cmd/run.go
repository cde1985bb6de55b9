package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/trashbot/internal/version"
)

func newRunCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot daemon until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.cfg.ValidateForRun(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app.log.Info("starting bot", "version", version.Version, "profile", app.cfg.ProfileID)

			err := app.conn.Run(ctx, app.bot)
			app.sessions.Wait()
			app.bot.Offers.Wait()
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			app.log.Info("bot stopped")
			return nil
		},
	}
}
