package rebase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/papapumpkin/stacker/internal/graph"
	"github.com/papapumpkin/stacker/internal/journal"
)

// Outcome is the result of one rebase step.
type Outcome int

const (
	// Skipped means the branch already rested on its parent's tip.
	Skipped Outcome = iota
	// Rebased means the branch was moved onto its parent's tip.
	Rebased
	// Archived means the branch is archived and was not visited, nor were
	// its descendants.
	Archived
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "up to date"
	case Rebased:
		return "rebased"
	case Archived:
		return "archived"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Step records what happened to one branch during a rebase run.
type Step struct {
	Branch  string
	Parent  string
	Outcome Outcome
}

// Coordinator rebases branches onto their parents' current tips. Every
// mutation happens on the graph passed in; persisting it is the caller's
// job, and the caller must persist even when a call fails so a pending
// base survives.
type Coordinator struct {
	vcs      VCS
	resolver *Resolver
	journal  *journal.Emitter

	// ExtraArgs is passed through to every rebase invocation.
	ExtraArgs []string
}

// NewCoordinator returns a Coordinator. j may be nil.
func NewCoordinator(vcs VCS, j *journal.Emitter) *Coordinator {
	return &Coordinator{
		vcs:      vcs,
		resolver: NewResolver(vcs, j),
		journal:  j,
	}
}

// Resolver returns the base resolver the coordinator uses.
func (c *Coordinator) Resolver() *Resolver {
	return c.resolver
}

// Rebase moves child onto parent's current tip. Calling it again once
// child is up to date is a no-op that returns Skipped.
func (c *Coordinator) Rebase(ctx context.Context, g *graph.Graph, parent, child string) (Outcome, error) {
	base, err := c.resolver.Resolve(ctx, g, child)
	if err != nil {
		return Skipped, err
	}
	tip, err := c.vcs.CurrentRevision(ctx, parent)
	if err != nil {
		return Skipped, fmt.Errorf("resolving %s: %w", parent, err)
	}
	if base == tip {
		log.Debug().Str("branch", child).Str("parent", parent).Msg("already up to date")
		return Skipped, nil
	}

	if err := g.StartRebase(child, tip); err != nil {
		return Skipped, err
	}
	c.journal.Record(journal.Event{Kind: journal.KindRebaseStart, Branch: child, Parent: parent, From: base, Onto: tip})

	if err := c.vcs.RebaseOnto(ctx, tip, base, child, c.ExtraArgs); err != nil {
		c.journal.Record(journal.Event{
			Kind: journal.KindRebaseFailed, Branch: child, Parent: parent, From: base, Onto: tip, Detail: err.Error(),
		})
		return Skipped, &RebaseError{Branch: child, From: base, Onto: tip, Err: err}
	}

	if err := g.FinishRebase(child, tip); err != nil {
		return Skipped, err
	}
	c.journal.Record(journal.Event{Kind: journal.KindRebaseFinish, Branch: child, Parent: parent, Onto: tip})
	return Rebased, nil
}

// RebaseTree rebases branch onto its parent, when it has one, and then
// every descendant onto its own parent, breadth first with siblings in
// name order. A parent is always settled before its children are visited.
// The first failure stops the walk; the steps taken so far are returned
// alongside the error. Archived branches and their subtrees are skipped.
func (c *Coordinator) RebaseTree(ctx context.Context, g *graph.Graph, branch string) ([]Step, error) {
	var steps []Step

	if parent, ok := g.Parent(branch); ok {
		if g.IsArchived(branch) {
			return []Step{{Branch: branch, Parent: parent, Outcome: Archived}}, nil
		}
		out, err := c.Rebase(ctx, g, parent, branch)
		if err != nil {
			return steps, err
		}
		steps = append(steps, Step{Branch: branch, Parent: parent, Outcome: out})
	}

	queue := []string{branch}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		parent := queue[0]
		queue = queue[1:]
		for _, child := range g.Children(parent) {
			if g.IsArchived(child) {
				steps = append(steps, Step{Branch: child, Parent: parent, Outcome: Archived})
				continue
			}
			out, err := c.Rebase(ctx, g, parent, child)
			if err != nil {
				return steps, err
			}
			steps = append(steps, Step{Branch: child, Parent: parent, Outcome: out})
			queue = append(queue, child)
		}
	}
	return steps, nil
}
