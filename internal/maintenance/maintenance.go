// Package maintenance implements the compound branch operations built on
// the graph primitives: creating, renaming and reparenting branches,
// landing a branch into its parent, and removing, archiving or pruning
// branches whose refs are gone.
//
// Every operation mutates the graph it is given. Callers load and save it
// through the store, saving even when an operation fails part-way.
package maintenance

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/papapumpkin/stacker/internal/graph"
	"github.com/papapumpkin/stacker/internal/journal"
	"github.com/papapumpkin/stacker/internal/rebase"
)

// VCS is the version-control surface the operations need.
type VCS interface {
	rebase.VCS
	CurrentBranch(ctx context.Context) (string, error)
	Checkout(ctx context.Context, ref string) error
	CreateBranch(ctx context.Context, name, at string) error
	DeleteBranch(ctx context.Context, name string, force bool) error
	IsMergedInto(ctx context.Context, branch, target string) (bool, error)
	BranchExists(ctx context.Context, name string, includeRemote bool) (bool, error)
}

// Reviewer is the code-review tool surface the operations need.
type Reviewer interface {
	Diff(ctx context.Context, base string, extra []string) error
	Land(ctx context.Context, onto string, extra []string) error
}

// Ops runs maintenance operations against a repository.
type Ops struct {
	vcs      VCS
	review   Reviewer
	resolver *rebase.Resolver
	journal  *journal.Emitter

	// Trunk is the branch that can be landed onto without confirmation.
	Trunk string
	// Confirm asks the user a yes/no question. A nil Confirm declines.
	Confirm func(prompt string) bool
}

// New returns Ops. j may be nil.
func New(vcs VCS, review Reviewer, j *journal.Emitter, trunk string) *Ops {
	return &Ops{
		vcs:      vcs,
		review:   review,
		resolver: rebase.NewResolver(vcs, j),
		journal:  j,
		Trunk:    trunk,
	}
}

// Info describes where a branch sits in the tree.
type Info struct {
	Parent string
	Base   string
}

// MakeChild creates name under parent and checks it out. Without a
// revision the branch starts at parent's tip, which is also its base. With
// one, the branch starts at revision and its base is the merge base of
// parent and revision.
func (o *Ops) MakeChild(ctx context.Context, g *graph.Graph, parent, name, revision string) error {
	var base, at string
	var err error
	if revision == "" {
		at = parent
		base, err = o.vcs.CurrentRevision(ctx, parent)
	} else {
		at = revision
		base, err = o.vcs.MergeBase(ctx, parent, revision)
	}
	if err != nil {
		return fmt.Errorf("resolving base for %s: %w", name, err)
	}

	if err := g.AddChild(parent, name, base); err != nil {
		return err
	}
	if err := o.vcs.CreateBranch(ctx, name, at); err != nil {
		// The branch never existed; don't leave a record pointing at nothing.
		_ = g.RemoveChildLeaf(name)
		return fmt.Errorf("creating %s: %w", name, err)
	}
	return nil
}

// ChangeParent declares newParent as branch's parent. The branch keeps its
// base, so the next rebase moves exactly its own commits.
func (o *Ops) ChangeParent(g *graph.Graph, branch, newParent string) error {
	return g.SetParent(branch, newParent)
}

// Rename gives oldName's ref and graph position to newName, leaving
// newName checked out. Without force git refuses to drop an unmerged ref.
func (o *Ops) Rename(ctx context.Context, g *graph.Graph, oldName, newName string, force bool) error {
	if g.Contains(newName) {
		return &graph.PreconditionError{Branch: newName, Err: graph.ErrBranchExists, Hint: "pick a different branch name"}
	}
	if err := o.vcs.CreateBranch(ctx, newName, oldName); err != nil {
		return fmt.Errorf("creating %s: %w", newName, err)
	}
	if err := o.vcs.DeleteBranch(ctx, oldName, force); err != nil {
		return fmt.Errorf("deleting %s: %w", oldName, err)
	}
	if !g.Contains(oldName) {
		return nil
	}
	if err := g.RenameBranch(oldName, newName); err != nil {
		return err
	}
	o.journal.Record(journal.Event{Kind: journal.KindRename, Branch: newName, Detail: oldName})
	return nil
}

// Info returns branch's parent and resolved base.
func (o *Ops) Info(ctx context.Context, g *graph.Graph, branch string) (Info, error) {
	parent, ok := g.Parent(branch)
	if !ok {
		return Info{}, &graph.PreconditionError{Branch: branch, Err: graph.ErrNoParent}
	}
	base, err := o.resolver.Resolve(ctx, g, branch)
	if err != nil {
		return Info{}, err
	}
	return Info{Parent: parent, Base: base}, nil
}

// Diff uploads branch's own changes, those since its base, for review.
func (o *Ops) Diff(ctx context.Context, g *graph.Graph, branch string, extra []string) error {
	if !g.HasParent(branch) {
		return &graph.PreconditionError{Branch: branch, Err: graph.ErrNoParent}
	}
	base, err := o.resolver.Resolve(ctx, g, branch)
	if err != nil {
		return err
	}
	return o.review.Diff(ctx, base, extra)
}

// Land lands branch onto its parent and collapses it out of the tree, its
// children moving up to the parent. The branch must rest exactly on the
// parent's tip.
func (o *Ops) Land(ctx context.Context, g *graph.Graph, branch string, extra []string) error {
	parent, ok := g.Parent(branch)
	if !ok {
		return &graph.PreconditionError{Branch: branch, Err: graph.ErrNoParent, Hint: "only branches with a parent can be landed"}
	}
	if err := o.checkRebased(ctx, g, parent, branch); err != nil {
		return err
	}
	if parent != o.Trunk {
		prompt := fmt.Sprintf("Are you sure you want to land onto non-%s branch '%s'?", o.Trunk, parent)
		if o.Confirm == nil || !o.Confirm(prompt) {
			return ErrAborted
		}
	}

	if err := o.review.Land(ctx, parent, extra); err != nil {
		return err
	}
	if err := g.CollapseAndRemoveParent(branch); err != nil {
		return err
	}
	o.journal.Record(journal.Event{Kind: journal.KindLand, Branch: branch, Parent: parent})
	return nil
}

func (o *Ops) checkRebased(ctx context.Context, g *graph.Graph, parent, branch string) error {
	notRebased := &graph.PreconditionError{Branch: branch, Err: ErrNotRebased, Hint: "rebase it onto " + parent + " first"}
	b := g.Base(branch)
	if b.IsZero() || b.IsPending() {
		return notRebased
	}
	tip, err := o.vcs.CurrentRevision(ctx, parent)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", parent, err)
	}
	if b.From() != tip {
		return notRebased
	}
	return nil
}

// RemoveLeaf deletes a childless branch's ref and record. A branch with
// commits its parent lacks is refused unless force is set. If the branch is
// checked out its parent is checked out first. When the ref is already gone
// only force removes the record.
func (o *Ops) RemoveLeaf(ctx context.Context, g *graph.Graph, branch string, force bool) (Action, error) {
	if n := len(g.Children(branch)); n > 0 {
		return Action{}, &graph.PreconditionError{
			Branch: branch, Err: graph.ErrHasChildren,
			Hint: fmt.Sprintf("%d child(ren); change their parent first", n),
		}
	}
	parent, ok := g.Parent(branch)
	if !ok {
		return Action{}, &graph.PreconditionError{Branch: branch, Err: graph.ErrNoParent}
	}
	exists, err := o.vcs.BranchExists(ctx, branch, false)
	if err != nil {
		return Action{}, err
	}
	if !exists {
		if !force {
			return Action{}, &graph.PreconditionError{
				Branch: branch, Err: ErrBranchGone,
				Hint: "run clean-branches, or re-run with --force to drop its record",
			}
		}
		if err := g.RemoveChildLeaf(branch); err != nil {
			return Action{}, err
		}
		o.journal.Record(journal.Event{Kind: journal.KindRemove, Branch: branch, Parent: parent, Detail: "ref gone"})
		return Action{Kind: ActionDeleted, Branch: branch, Detail: "ref already gone"}, nil
	}

	rev, err := o.vcs.CurrentRevision(ctx, branch)
	if err != nil {
		return Action{}, fmt.Errorf("resolving %s: %w", branch, err)
	}
	merged, err := o.vcs.IsMergedInto(ctx, branch, parent)
	if err != nil {
		return Action{}, err
	}
	if !merged && !force {
		return Action{}, &graph.PreconditionError{
			Branch: branch, Err: ErrNotMerged,
			Hint: "re-run with --force to delete it anyway; this may lose work",
		}
	}

	cur, err := o.vcs.CurrentBranch(ctx)
	if err != nil {
		return Action{}, err
	}
	if cur == branch {
		if err := o.vcs.Checkout(ctx, parent); err != nil {
			return Action{}, err
		}
	}
	if err := o.vcs.DeleteBranch(ctx, branch, force); err != nil {
		return Action{}, err
	}
	if err := g.RemoveChildLeaf(branch); err != nil {
		return Action{}, err
	}
	o.journal.Record(journal.Event{Kind: journal.KindRemove, Branch: branch, Parent: parent, From: rev})

	detail := "merged"
	if !merged {
		detail = "unmerged"
	}
	return Action{Kind: ActionDeleted, Branch: branch, Detail: fmt.Sprintf("%s, was at commit %s", detail, rev)}, nil
}

// SetArchived sets or clears branch's archived flag.
func (o *Ops) SetArchived(g *graph.Graph, branch string, archived bool) error {
	if err := g.SetArchived(branch, archived); err != nil {
		return err
	}
	kind := journal.KindArchive
	if !archived {
		kind = journal.KindUnarchive
	}
	o.journal.Record(journal.Event{Kind: kind, Branch: branch})
	return nil
}

// PruneInvalid archives or removes every tracked, unarchived branch whose
// ref no longer exists. With upstream, a branch that still exists on a
// remote is kept. A branch with children cannot be removed and is skipped.
func (o *Ops) PruneInvalid(ctx context.Context, g *graph.Graph, mode PruneMode, upstream bool) ([]Action, error) {
	var actions []Action
	for _, branch := range g.Linearized() {
		if !g.IsTracked(branch) || g.IsArchived(branch) {
			continue
		}
		exists, err := o.vcs.BranchExists(ctx, branch, upstream)
		if err != nil {
			return actions, err
		}
		if exists {
			continue
		}

		if mode == PruneArchive {
			if err := o.SetArchived(g, branch, true); err != nil {
				return actions, err
			}
			actions = append(actions, Action{Kind: ActionArchived, Branch: branch, Detail: "invalid"})
			continue
		}
		actions = append(actions, o.removeRecord(g, branch, "invalid"))
	}
	return actions, nil
}

// DeleteArchived drops the records of archived branches. Descendants are
// handled before ancestors, so a chain of archived branches goes in one
// pass. Archived branches that still have live children are skipped.
func (o *Ops) DeleteArchived(g *graph.Graph) []Action {
	var actions []Action
	for _, branch := range g.Linearized() {
		if g.IsTracked(branch) && g.IsArchived(branch) {
			actions = append(actions, o.removeRecord(g, branch, "archived"))
		}
	}
	return actions
}

func (o *Ops) removeRecord(g *graph.Graph, branch, why string) Action {
	if kids := g.Children(branch); len(kids) > 0 {
		return Action{Kind: ActionSkipped, Branch: branch, Detail: why, Children: kids}
	}
	parent, _ := g.Parent(branch)
	if err := g.RemoveChildLeaf(branch); err != nil {
		log.Warn().Err(err).Str("branch", branch).Msg("removing record")
		return Action{Kind: ActionSkipped, Branch: branch, Detail: err.Error()}
	}
	o.journal.Record(journal.Event{Kind: journal.KindRemove, Branch: branch, Parent: parent, Detail: why})
	return Action{Kind: ActionDeleted, Branch: branch, Detail: why}
}
