package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flareader/internal/edge"
)

func newEdgesCommand() *cobra.Command {
	var cubics bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "edges <path-data>",
		Short:       "Decode an XFL edges or cubics string into path commands",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var cmds []edge.Command
			if cubics {
				cmds = edge.DecodeCubics(args[0])
			} else {
				cmds = edge.Decode(args[0])
			}
			if jsonOutput {
				return writeJSON(cmd, cmds)
			}
			out := cmd.OutOrStdout()
			if len(cmds) == 0 {
				fmt.Fprintln(out, "No path commands decoded")
				return nil
			}
			for _, c := range cmds {
				points := make([]string, 0, len(c.Points))
				for _, p := range c.Points {
					points = append(points, fmt.Sprintf("(%s, %s)", formatNumber(p.X), formatNumber(p.Y)))
				}
				fmt.Fprintf(out, "%-12s %s\n", c.Kind, strings.Join(points, " "))
			}
			fmt.Fprintf(out, "Canonical: %s\n", edge.Encode(cmds))
			return nil
		},
	}

	cmd.Flags().BoolVar(&cubics, "cubics", false, "Treat the input as a cubics attribute")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit commands as JSON")
	return cmd
}
