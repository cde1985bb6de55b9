package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trashbot",
		Short:         "trashbot: item donation bot for the Steam community site",
		Long:          "trashbot runs a donation bot against the Steam community site: it accepts trade requests from friends, walks peers through picking items from its inventory by link, and sweeps pending trade offers through a browser sandbox.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(app),
		newPeersCmd(app),
		newExportCmd(app),
	)

	return rootCmd
}
