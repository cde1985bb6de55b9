package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/trashbot/internal/domain"
)

func newExportCmd(app *app) *cobra.Command {
	var out string
	var sessionID string
	var cookies []string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trade history to a CSV file",
		Long:  "export walks the community trade history pages with the given web session and writes one anonymized CSV row per item received or given away.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.cfg.ProfileID == "" {
				return errors.New("profile_id is required")
			}
			if sessionID == "" || len(cookies) == 0 {
				return errors.New("--session-id and at least one --cookie are required")
			}

			app.state.PublishAuth(domain.NewAuthContext(sessionID, cookies))

			rows, err := app.history.ExportFile(cmd.Context(), out)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", rows, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", app.cfg.ExportPath, "Output CSV path")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Community web session id")
	cmd.Flags().StringArrayVar(&cookies, "cookie", nil, "Session cookie in name=value form (repeatable)")

	return cmd
}
