package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build trees and other work directory state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := app.CleanOptions{CatalogOptions: catalogOptions(cmd)}
			opts.Sources, _ = cmd.Flags().GetBool("sources")
			opts.Builds, _ = cmd.Flags().GetBool("builds")
			opts.Downloads, _ = cmd.Flags().GetBool("downloads")
			opts.Ledger, _ = cmd.Flags().GetBool("ledger")
			if all, _ := cmd.Flags().GetBool("all"); all {
				opts.Sources, opts.Builds, opts.Downloads, opts.Ledger = true, true, true, true
			}
			return c.app.Clean(opts)
		},
	}
	cmd.Flags().Bool("sources", false, "Remove staged sources")
	cmd.Flags().Bool("builds", false, "Remove build trees (the default)")
	cmd.Flags().Bool("downloads", false, "Remove downloaded archives")
	cmd.Flags().Bool("ledger", false, "Forget which targets are installed")
	cmd.Flags().Bool("all", false, "Remove everything above")
	return cmd
}
