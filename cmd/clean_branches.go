package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/graph"
	"github.com/papapumpkin/stacker/internal/maintenance"
)

var cleanBranchesCmd = &cobra.Command{
	Use:   "clean-branches",
	Short: "Delete or archive tracked branches whose git refs are gone",
	Args:  cobra.NoArgs,
	RunE:  withSession(runCleanBranches),
}

func init() {
	cleanBranchesCmd.Flags().Bool("archive", false, "archive invalid branches instead of deleting them")
	cleanBranchesCmd.Flags().Bool("delete", false, "delete invalid branches (default)")
	cleanBranchesCmd.Flags().Bool("upstream", false, "keep branches that still exist on a remote")
	cleanBranchesCmd.MarkFlagsMutuallyExclusive("archive", "delete")
	rootCmd.AddCommand(cleanBranchesCmd)
}

func runCleanBranches(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	archive, _ := cmd.Flags().GetBool("archive")
	upstream, _ := cmd.Flags().GetBool("upstream")
	mode := maintenance.PruneDelete
	if archive {
		mode = maintenance.PruneArchive
	}

	var actions []maintenance.Action
	err := s.store.Update(func(g *graph.Graph) error {
		var pruneErr error
		actions, pruneErr = s.ops.PruneInvalid(ctx, g, mode, upstream)
		return pruneErr
	})
	s.printer.Actions(actions)
	return err
}
