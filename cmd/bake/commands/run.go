package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/bake/internal/app"
)

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-cache", false, "Run every builder regardless of its cache entry")
	cmd.Flags().Bool("stats", false, "Print builder store statistics after the run")
}

func runOptions(cmd *cobra.Command) app.RunOptions {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	stats, _ := cmd.Flags().GetBool("stats")
	return app.RunOptions{
		NoCache: noCache,
		Stats:   stats,
	}
}

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Build the specified targets",
		Long: `Build the specified targets.

A target is "all", a module name or "module/project".`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			return c.app.Run(cmd.Context(), args, runOptions(cmd))
		},
	}

	addRunFlags(cmd)
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [targets...]",
		Short: "Build targets and rebuild them when files change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), args, runOptions(cmd))
		},
	}

	addRunFlags(cmd)
	return cmd
}
