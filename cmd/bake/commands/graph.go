package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/bake/internal/app"
)

func (c *CLI) newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <target>",
		Short: "Print the builder graph of a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bfs, _ := cmd.Flags().GetBool("bfs")
			return c.app.Graph(cmd.Context(), args[0], app.GraphOptions{BreadthFirst: bfs})
		},
	}

	cmd.Flags().Bool("bfs", false, "List builders breadth-first instead of depth-first")
	return cmd
}
