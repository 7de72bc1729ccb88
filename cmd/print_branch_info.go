package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/graph"
	"github.com/papapumpkin/stacker/internal/maintenance"
	"github.com/papapumpkin/stacker/internal/ui"
)

var printBranchInfoCmd = &cobra.Command{
	Use:   "print-branch-info [BRANCH]",
	Short: "Print a branch's parent and base revision",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withSession(runPrintBranchInfo),
}

func init() {
	printBranchInfoCmd.Flags().BoolP("null", "z", false, "separate parent and base with a NUL byte")
	rootCmd.AddCommand(printBranchInfoCmd)
}

func runPrintBranchInfo(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	nul, _ := cmd.Flags().GetBool("null")
	branch, err := s.branchOrCurrent(ctx, optionalArg(args))
	if err != nil {
		return err
	}
	var info maintenance.Info
	// Update rather than View: resolving may settle an interrupted rebase.
	if err := s.store.Update(func(g *graph.Graph) error {
		var infoErr error
		info, infoErr = s.ops.Info(ctx, g, branch)
		return infoErr
	}); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, ui.FormatBranchInfo(info, nul))
	return nil
}
