package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/graph"
)

var renameCmd = &cobra.Command{
	Use:     "rename NEW_NAME",
	Aliases: []string{"rename-branch"},
	Short:   "Rename the current branch, keeping its place in the tree",
	Args:    cobra.ExactArgs(1),
	RunE:    withSession(runRename),
}

func init() {
	renameCmd.Flags().BoolP("force", "f", false, "delete the old ref even if git considers it unmerged")
	rootCmd.AddCommand(renameCmd)
}

func runRename(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	force, _ := cmd.Flags().GetBool("force")
	oldName, err := s.branchOrCurrent(ctx, "")
	if err != nil {
		return err
	}
	newName := args[0]
	if err := s.store.Update(func(g *graph.Graph) error {
		return s.ops.Rename(ctx, g, oldName, newName, force)
	}); err != nil {
		return err
	}
	s.printer.Success(fmt.Sprintf("renamed %s to %s", oldName, newName))
	return nil
}
