package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/graph"
)

var makeBranchCmd = &cobra.Command{
	Use:     "make-branch NAME",
	Aliases: []string{"create-child-branch"},
	Short:   "Create a child of the current branch and check it out",
	Args:    cobra.ExactArgs(1),
	RunE:    withSession(runMakeBranch),
}

func init() {
	makeBranchCmd.Flags().StringP("revision", "r", "", "start the branch at this revision instead of the current tip")
	rootCmd.AddCommand(makeBranchCmd)
}

func runMakeBranch(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	revision, _ := cmd.Flags().GetString("revision")
	parent, err := s.branchOrCurrent(ctx, "")
	if err != nil {
		return err
	}
	name := args[0]
	if err := s.store.Update(func(g *graph.Graph) error {
		return s.ops.MakeChild(ctx, g, parent, name, revision)
	}); err != nil {
		return err
	}
	s.printer.Success(fmt.Sprintf("created %s on top of %s", name, parent))
	return nil
}
