package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/graph"
)

var changeParentCmd = &cobra.Command{
	Use:   "change-parent NEW_PARENT",
	Short: "Declare a different parent for a branch",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runChangeParent),
}

func init() {
	changeParentCmd.Flags().StringP("branch", "b", "", "the branch to reparent (default: current branch)")
	rootCmd.AddCommand(changeParentCmd)
}

func runChangeParent(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	name, _ := cmd.Flags().GetString("branch")
	branch, err := s.branchOrCurrent(ctx, name)
	if err != nil {
		return err
	}
	newParent := args[0]
	if err := s.store.Update(func(g *graph.Graph) error {
		return s.ops.ChangeParent(g, branch, newParent)
	}); err != nil {
		return err
	}
	s.printer.Success(fmt.Sprintf("%s now has parent %s", branch, newParent))
	s.printer.Info("You may want to rebase on top of the new parent to make sure its changes are visible in this branch.")
	return nil
}
