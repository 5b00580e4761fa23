package commands

import "github.com/spf13/cobra"

func (c *CLI) newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [targets...]",
		Short: "Download and verify source archives (all targets by default)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Fetch(cmd.Context(), args, catalogOptions(cmd))
		},
	}
}
