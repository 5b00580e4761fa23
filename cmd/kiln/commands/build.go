package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

// addBuildFlags registers the flags shared by build and plan.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("arch", "a", nil, "Architectures to build for, or \"all\" (default host)")
	cmd.Flags().IntP("jobs", "j", 0, "Parallel jobs passed to the build tools (default from the catalog)")
	cmd.Flags().StringArrayP("feature", "f", nil, "Enable a feature such as static-usb (repeatable)")
	cmd.Flags().StringArrayP("set", "D", nil, "Set an option as KEY=VALUE or target:KEY=VALUE (repeatable)")
}

func buildOptions(cmd *cobra.Command) app.BuildOptions {
	opts := app.BuildOptions{CatalogOptions: catalogOptions(cmd)}
	opts.Jobs, _ = cmd.Flags().GetInt("jobs")
	opts.Architectures, _ = cmd.Flags().GetStringSlice("arch")
	opts.Features, _ = cmd.Flags().GetStringArray("feature")
	opts.Overrides, _ = cmd.Flags().GetStringArray("set")
	if cmd.Flags().Lookup("force") != nil {
		opts.Force, _ = cmd.Flags().GetBool("force")
	}
	return opts
}

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build targets and their prerequisites",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			_, err := c.app.Build(cmd.Context(), args, buildOptions(cmd))
			return err
		},
	}
	addBuildFlags(cmd)
	cmd.Flags().Bool("force", false, "Rebuild even when the target is already installed")
	return cmd
}
