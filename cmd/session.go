package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/stacker/internal/ansi"
	"github.com/papapumpkin/stacker/internal/config"
	"github.com/papapumpkin/stacker/internal/git"
	"github.com/papapumpkin/stacker/internal/journal"
	"github.com/papapumpkin/stacker/internal/maintenance"
	"github.com/papapumpkin/stacker/internal/rebase"
	"github.com/papapumpkin/stacker/internal/review"
	"github.com/papapumpkin/stacker/internal/store"
	"github.com/papapumpkin/stacker/internal/ui"
)

// errDetached is returned when a command needs the current branch but HEAD
// is detached.
var errDetached = errors.New("not on a branch (HEAD is detached); check out a branch or pass one explicitly")

// session bundles the collaborators every subcommand works with.
type session struct {
	cfg     config.Config
	git     *git.Git
	store   *store.Store
	journal *journal.Emitter
	review  *review.Invoker
	ops     *maintenance.Ops
	coord   *rebase.Coordinator
	printer *ui.Printer
	color   bool
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	g, err := git.Open(ctx, cfg.WorkDir, cfg.GitPath)
	if err != nil {
		return nil, err
	}
	gitDir, err := g.GitDir(ctx)
	if err != nil {
		return nil, err
	}
	storePath := cfg.StorePath(gitDir)
	if err := os.MkdirAll(filepath.Dir(storePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(storePath), err)
	}

	var j *journal.Emitter
	if cfg.Journal {
		j, err = journal.Open(cfg.JournalPath(gitDir))
		if err != nil {
			log.Warn().Err(err).Msg("journal disabled")
			j = nil
		}
	}

	color := ansi.Enabled(cfg.Color, os.Stdout)
	rv := review.New(cfg.WorkDir, cfg.ReviewPath)
	ops := maintenance.New(g, rv, j, cfg.Trunk)
	ops.Confirm = func(prompt string) bool {
		return ui.Confirm(os.Stdin, os.Stderr, prompt)
	}

	return &session{
		cfg:     cfg,
		git:     g,
		store:   store.New(storePath),
		journal: j,
		review:  rv,
		ops:     ops,
		coord:   rebase.NewCoordinator(g, j),
		printer: ui.New(ansi.Enabled(cfg.Color, os.Stderr)),
		color:   color,
	}, nil
}

func (s *session) Close() {
	if err := s.journal.Close(); err != nil {
		log.Warn().Err(err).Msg("closing journal")
	}
}

// branchOrCurrent returns name, or the checked-out branch when name is empty.
func (s *session) branchOrCurrent(ctx context.Context, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	cur, err := s.git.CurrentBranch(ctx)
	if err != nil {
		return "", err
	}
	if cur == "HEAD" {
		return "", errDetached
	}
	return cur, nil
}

// withSession adapts fn into a cobra RunE, opening and closing a session
// around it.
func withSession(fn func(ctx context.Context, cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(ctx, cmd, args, s)
	}
}

// optionalArg returns args[0], or "" when no argument was given.
func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
