package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [targets...]",
		Short: "Print the build order without building anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := c.app.Plan(args, buildOptions(cmd))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, e := range entries {
				archs := make([]string, len(e.Architectures))
				for j, a := range e.Architectures {
					archs[j] = string(a)
				}
				prefix := "per-arch"
				if e.Shared {
					prefix = "shared"
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					i+1, e.Target.Name.String(), e.Target.Version, e.Target.Kind, strings.Join(archs, ","), prefix)
			}
			return w.Flush()
		},
	}
	addBuildFlags(cmd)
	return cmd
}
