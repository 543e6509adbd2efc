// Package cli provides the command-line interface for the task pool.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// GlobalFlags holds flags shared by every subcommand.
type GlobalFlags struct {
	// DataDir overrides the configured data directory.
	DataDir string

	// Verbose lowers the log level to debug.
	Verbose bool

	// Quiet raises the log level to error.
	Quiet bool
}

// Execute builds the root command and runs it.
func Execute(ctx context.Context) error {
	flags := &GlobalFlags{}
	root := newRootCmd(flags)
	return root.ExecuteContext(ctx)
}

// newRootCmd creates the root command for the taskpool CLI. The
// function-based approach avoids package-level command globals.
func newRootCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskpool",
		Short: "taskpool - shared task pool with dependency-aware routing",
		Long: `taskpool coordinates units of work across a fixed set of specialized
workers. Tasks become eligible for execution once their dependencies finish,
routing suggests the best worker by competency overlap, and low-confidence
matches escalate to a human. Periodic jobs archive finished work and report
stale tasks.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&flags.DataDir, "data-dir", "", "data directory (default ~/.taskpool)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "only log errors")

	cmd.AddCommand(
		newCreateCmd(flags),
		newShowCmd(flags),
		newListCmd(flags),
		newSummaryCmd(flags),
		newAssignCmd(flags),
		newStartCmd(flags),
		newCompleteCmd(flags),
		newBlockCmd(flags),
		newUnblockCmd(flags),
		newDepCmd(flags),
		newDeleteCmd(flags),
		newSuggestCmd(flags),
		newEscalateCmd(flags),
		newArchiveCmd(flags),
		newStaleCmd(flags),
		newRunCmd(flags),
	)
	return cmd
}
