package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/ansi"
	"github.com/papapumpkin/stacker/internal/graph"
	"github.com/papapumpkin/stacker/internal/ui"
	"github.com/papapumpkin/stacker/internal/watch"
)

var printStructureCmd = &cobra.Command{
	Use:   "print-structure",
	Short: "Print the tree of tracked branches",
	Args:  cobra.NoArgs,
	RunE:  withSession(runPrintStructure),
}

func init() {
	printStructureCmd.Flags().BoolP("all", "a", false, "include archived branches")
	printStructureCmd.Flags().String("format", ui.FormatText, "output format: text, json or toml")
	printStructureCmd.Flags().BoolP("watch", "w", false, "redraw whenever the branch store changes")
	rootCmd.AddCommand(printStructureCmd)
}

func runPrintStructure(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
	all, _ := cmd.Flags().GetBool("all")
	format, _ := cmd.Flags().GetString("format")
	watching, _ := cmd.Flags().GetBool("watch")

	draw := func(w io.Writer) error {
		// Detached HEAD just means nothing is highlighted.
		cur, _ := s.branchOrCurrent(ctx, "")
		opts := ui.StructureOptions{Current: cur, All: all, Color: s.color && format == ui.FormatText}
		return s.store.View(func(g *graph.Graph) error {
			return ui.WriteStructure(w, g, format, opts)
		})
	}
	if !watching {
		return draw(os.Stdout)
	}

	w, err := watch.New(s.store.Path)
	if err != nil {
		return fmt.Errorf("watching %s: %w", s.store.Path, err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watching %s: %w", s.store.Path, err)
	}
	defer w.Stop()

	for {
		fmt.Fprint(os.Stdout, ansi.ClearScreen)
		if err := draw(os.Stdout); err != nil {
			s.printer.Error(err.Error())
		}
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
		}
	}
}
