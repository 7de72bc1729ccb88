package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/graph"
	"github.com/papapumpkin/stacker/internal/maintenance"
)

var removeBranchCmd = &cobra.Command{
	Use:     "remove-branch [BRANCH]",
	Aliases: []string{"remove-leaf-branch"},
	Short:   "Delete a branch without children, checking out its parent",
	Args:    cobra.MaximumNArgs(1),
	RunE:    withSession(runRemoveBranch),
}

func init() {
	removeBranchCmd.Flags().BoolP("force", "f", false, "delete even if not merged into its parent (may lose work)")
	rootCmd.AddCommand(removeBranchCmd)
}

func runRemoveBranch(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	force, _ := cmd.Flags().GetBool("force")
	branch, err := s.branchOrCurrent(ctx, optionalArg(args))
	if err != nil {
		return err
	}
	var act maintenance.Action
	if err := s.store.Update(func(g *graph.Graph) error {
		var removeErr error
		act, removeErr = s.ops.RemoveLeaf(ctx, g, branch, force)
		return removeErr
	}); err != nil {
		return err
	}
	s.printer.Actions([]maintenance.Action{act})
	return nil
}
