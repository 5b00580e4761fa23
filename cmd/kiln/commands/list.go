package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the targets of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets, err := c.app.List(catalogOptions(cmd))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range targets {
				prereqs := make([]string, len(t.Prerequisites))
				for i, p := range t.Prerequisites {
					prereqs[i] = p.String()
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name.String(), t.Version, t.Kind, strings.Join(prereqs, ","))
			}
			return w.Flush()
		},
	}
}
