package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/graph"
	"github.com/papapumpkin/stacker/internal/maintenance"
)

var deleteArchivedCmd = &cobra.Command{
	Use:   "delete-archived",
	Short: "Stop tracking archived branches that have no children",
	Args:  cobra.NoArgs,
	RunE:  withSession(runDeleteArchived),
}

func init() {
	rootCmd.AddCommand(deleteArchivedCmd)
}

func runDeleteArchived(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	var actions []maintenance.Action
	if err := s.store.Update(func(g *graph.Graph) error {
		actions = s.ops.DeleteArchived(g)
		return nil
	}); err != nil {
		return err
	}
	s.printer.Actions(actions)
	return nil
}
