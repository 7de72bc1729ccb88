package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/graph"
)

var arcDiffCmd = &cobra.Command{
	Use:   "arc-diff [-- ARC_DIFF_ARGS...]",
	Short: "Run arc diff for the current branch against its base",
	RunE:  withSession(runArcDiff),
}

var arcLandCmd = &cobra.Command{
	Use:   "arc-land [-- ARC_LAND_ARGS...]",
	Short: "Run arc land onto the parent, then collapse the branch out of the tree",
	RunE:  withSession(runArcLand),
}

func init() {
	arcLandCmd.Flags().BoolP("yes", "y", false, "land onto a non-trunk parent without asking")
	rootCmd.AddCommand(arcDiffCmd)
	rootCmd.AddCommand(arcLandCmd)
}

func runArcDiff(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	branch, err := s.branchOrCurrent(ctx, "")
	if err != nil {
		return err
	}
	if err := s.review.Validate(); err != nil {
		return err
	}
	return s.store.Update(func(g *graph.Graph) error {
		return s.ops.Diff(ctx, g, branch, args)
	})
}

func runArcLand(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	yes, _ := cmd.Flags().GetBool("yes")
	branch, err := s.branchOrCurrent(ctx, "")
	if err != nil {
		return err
	}
	if err := s.review.Validate(); err != nil {
		return err
	}
	if yes {
		s.ops.Confirm = func(string) bool { return true }
	}
	if err := s.store.Update(func(g *graph.Graph) error {
		return s.ops.Land(ctx, g, branch, args)
	}); err != nil {
		return err
	}
	s.printer.Success(fmt.Sprintf("landed %s", branch))
	return nil
}
