package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/graph"
)

var setArchivedCmd = &cobra.Command{
	Use:   "set-archived [BRANCH]",
	Short: "Hide a branch from print-structure, or show it again with --unarchive",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withSession(runSetArchived),
}

func init() {
	setArchivedCmd.Flags().BoolP("unarchive", "u", false, "clear the archived flag instead")
	rootCmd.AddCommand(setArchivedCmd)
}

func runSetArchived(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	unarchive, _ := cmd.Flags().GetBool("unarchive")
	branch, err := s.branchOrCurrent(ctx, optionalArg(args))
	if err != nil {
		return err
	}
	return s.store.Update(func(g *graph.Graph) error {
		return s.ops.SetArchived(g, branch, !unarchive)
	})
}
