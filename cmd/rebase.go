package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/graph"
	"github.com/papapumpkin/stacker/internal/rebase"
)

var rebaseCmd = &cobra.Command{
	Use:   "rebase [-- GIT_REBASE_ARGS...]",
	Short: "Rebase a branch onto its parent, optionally with all its descendants",
	Long: "Rebase moves a branch's own commits, those after its recorded base, onto the\n" +
		"current tip of its parent. With --recursive every descendant follows.\n" +
		"After a conflict, resolve it with git, then run the same command again.",
	RunE: withSession(runRebase),
}

func init() {
	rebaseCmd.Flags().BoolP("recursive", "r", false, "also rebase every descendant onto its parent")
	rebaseCmd.Flags().StringP("branch", "b", "", "the branch to rebase (default: current branch)")
	rootCmd.AddCommand(rebaseCmd)
}

func runRebase(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	recursive, _ := cmd.Flags().GetBool("recursive")
	name, _ := cmd.Flags().GetString("branch")
	branch, err := s.branchOrCurrent(ctx, name)
	if err != nil {
		return err
	}
	s.coord.ExtraArgs = args

	var steps []rebase.Step
	err = s.store.Update(func(g *graph.Graph) error {
		if recursive {
			var treeErr error
			steps, treeErr = s.coord.RebaseTree(ctx, g, branch)
			return treeErr
		}
		parent, ok := g.Parent(branch)
		if !ok {
			return &graph.PreconditionError{Branch: branch, Err: graph.ErrNoParent, Hint: "use --recursive to rebase its children"}
		}
		out, err := s.coord.Rebase(ctx, g, parent, branch)
		if err != nil {
			return err
		}
		steps = append(steps, rebase.Step{Branch: branch, Parent: parent, Outcome: out})
		return nil
	})
	s.printer.RebaseSteps(steps)
	if err != nil {
		return err
	}
	// Rebasing checks out each branch in turn; return to where we started.
	return s.git.Checkout(ctx, branch)
}
